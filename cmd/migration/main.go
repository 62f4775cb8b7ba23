package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"
	"gitlab.com/dirk.krummacker/persons-service/internal/config"
	"gitlab.com/dirk.krummacker/persons-service/internal/credentials"
	"gitlab.com/dirk.krummacker/persons-service/internal/store"
)

// Without -file, the persons table is created if it does not exist. With -file, the statements of
// that SQL file are executed instead.
//
// Usage example on the command line:
// > CREDENTIALS_SOURCE=env DB_HOST=localhost DB_PORT=3306 DB_USER=dirk DB_PASSWORD=bullo92 DB_NAME=test go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "", "the sql file to execute")
	envPtr := flag.String("env", ".env", "optional file with environment variables")
	flag.Parse()

	cfg, err := config.Load(*envPtr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	ctx := context.Background()
	provider, err := credentials.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create credentials provider")
	}
	creds, err := provider.Resolve(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("provider", provider.Name()).Msg("Failed to resolve database credentials")
	}
	db, err := store.Open(creds, store.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if *filePtr == "" {
		if err := store.EnsureSchema(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to create schema")
		}
		log.Info().Msg("Table 'persons' ready")
		return
	}

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open sql file")
	}
	defer readFile.Close()

	executed, err := store.ExecScript(ctx, db, readFile)
	if err != nil {
		log.Fatal().Err(err).Int("executed", executed).Str("file", *filePtr).Msg("Failed to execute sql file")
	}
	log.Info().Int("executed", executed).Str("file", *filePtr).Msg("SQL file executed")
}
