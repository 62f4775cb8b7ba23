package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Schema creates the persons table if it does not exist yet.
const Schema = `
	CREATE TABLE IF NOT EXISTS persons (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) UNIQUE NOT NULL,
		phone VARCHAR(20),
		address TEXT,
		age INT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

// EnsureSchema creates the persons table. It can be called on every start.
func EnsureSchema(ctx context.Context, db sqlx.ExecerContext) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("could not create persons table: %w", err)
	}
	return nil
}

// ExecScript executes the SQL statements read from script. Statements may span several lines and
// end at a line containing ';'. It returns the number of executed statements.
func ExecScript(ctx context.Context, db sqlx.ExecerContext, script io.Reader) (int, error) {
	scanner := bufio.NewScanner(script)
	scanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	executed := 0
	for scanner.Scan() {
		line := scanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			statement := builder.String()
			if _, err := db.ExecContext(ctx, statement); err != nil {
				return executed, fmt.Errorf("statement %d failed: %w", executed+1, err)
			}
			executed++
			builder = strings.Builder{}
		}
	}
	if err := scanner.Err(); err != nil {
		return executed, fmt.Errorf("could not read script: %w", err)
	}
	return executed, nil
}
