// Package store persists person records in MySQL.
//
// Every operation checks out exactly one connection from the pool and returns it before the
// operation returns, on success and on every error path. Update and Delete run their existence
// check and their mutation on that same connection.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/persons-service/internal/credentials"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
)

// ErrNotFound is returned when no person with the requested id exists.
var ErrNotFound = errors.New("person not found")

// ErrDuplicateEmail is returned when an insert or update would store an email twice.
var ErrDuplicateEmail = errors.New("email already exists")

// mysqlDuplicateEntry is the MySQL server error number ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

const (
	insertPerson = `
		INSERT INTO persons (name, email, phone, address, age)
		VALUES (?, ?, ?, ?, ?)`
	selectAllPersons = `
		SELECT id, name, email, phone, address, age, created_at
		FROM persons
		ORDER BY created_at DESC, id DESC`
	selectPersonWhereId = `
		SELECT id, name, email, phone, address, age, created_at
		FROM persons
		WHERE id = ?`
	selectIdWhereId = `
		SELECT id FROM persons WHERE id = ?`
	updatePersonWhereId = `
		UPDATE persons
		SET name = ?, email = ?, phone = ?, address = ?, age = ?
		WHERE id = ?`
	deletePersonWhereId = `
		DELETE FROM persons WHERE id = ?`
)

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open creates the connection pool for the given credentials. No connection is made until the
// pool is first used.
func Open(creds credentials.Credentials, pool PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", creds.DSN())
	if err != nil {
		return nil, fmt.Errorf("could not open database %s: %w", creds, err)
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	return db, nil
}

// PersonStore runs the person queries against a database handle. The handle can be a real
// database for production use or a mock database within unit tests.
type PersonStore struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *PersonStore {
	return &PersonStore{db: db}
}

// withConn borrows one connection for the duration of fn.
func (s *PersonStore) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("could not acquire database connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// Create inserts a person and returns the id assigned by the database.
func (s *PersonStore) Create(ctx context.Context, in model.PersonInput) (int64, error) {
	var id int64
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		result, err := conn.ExecContext(ctx, insertPerson, in.Name, in.Email, in.Phone, in.Address, in.Age)
		if err != nil {
			return classify(err, "could not insert person")
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("could not read id of new person: %w", err)
		}
		return nil
	})
	return id, err
}

// List returns all persons, most recently created first. Persons created within the same second
// are ordered by descending id. The result is never nil.
func (s *PersonStore) List(ctx context.Context) ([]model.Person, error) {
	persons := []model.Person{}
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		if err := conn.SelectContext(ctx, &persons, selectAllPersons); err != nil {
			return fmt.Errorf("could not list persons: %w", err)
		}
		return nil
	})
	return persons, err
}

// Get returns the person with the given id or ErrNotFound.
func (s *PersonStore) Get(ctx context.Context, id int64) (model.Person, error) {
	var person model.Person
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		err := conn.GetContext(ctx, &person, selectPersonWhereId, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("could not select person %d: %w", id, err)
		}
		return nil
	})
	return person, err
}

// Update overwrites all mutable fields of the person with the given id. Fields are not merged
// with the stored values.
func (s *PersonStore) Update(ctx context.Context, id int64, in model.PersonInput) error {
	return s.withConn(ctx, func(conn *sqlx.Conn) error {
		if err := exists(ctx, conn, id); err != nil {
			return err
		}
		_, err := conn.ExecContext(ctx, updatePersonWhereId, in.Name, in.Email, in.Phone, in.Address, in.Age, id)
		if err != nil {
			return classify(err, fmt.Sprintf("could not update person %d", id))
		}
		return nil
	})
}

// Delete removes the person with the given id or returns ErrNotFound.
func (s *PersonStore) Delete(ctx context.Context, id int64) error {
	return s.withConn(ctx, func(conn *sqlx.Conn) error {
		if err := exists(ctx, conn, id); err != nil {
			return err
		}
		if _, err := conn.ExecContext(ctx, deletePersonWhereId, id); err != nil {
			return fmt.Errorf("could not delete person %d: %w", id, err)
		}
		return nil
	})
}

// Ping checks that the database can be reached.
func (s *PersonStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// exists returns nil if a person with the given id exists and ErrNotFound otherwise.
func exists(ctx context.Context, conn *sqlx.Conn, id int64) error {
	var found int64
	err := conn.GetContext(ctx, &found, selectIdWhereId, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("could not look up person %d: %w", id, err)
	}
	return nil
}

// classify turns a unique key violation into ErrDuplicateEmail and wraps everything else.
func classify(err error, message string) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, mysqlErr.Message)
	}
	return fmt.Errorf("%s: %w", message, err)
}
