package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/dirk.krummacker/persons-service/internal/config"
	"gitlab.com/dirk.krummacker/persons-service/internal/credentials"
	"gitlab.com/dirk.krummacker/persons-service/internal/service"
	"gitlab.com/dirk.krummacker/persons-service/internal/store"
)

// Usage example on the command line:
// > PORT=8080 CREDENTIALS_SOURCE=env DB_HOST=localhost DB_PORT=3306 DB_USER=dirk DB_PASSWORD=bullo92 DB_NAME=test GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	envFile := flag.String("env", ".env", "optional file with environment variables")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	provider, err := credentials.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create credentials provider")
	}
	creds, err := provider.Resolve(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("provider", provider.Name()).Msg("Failed to resolve database credentials")
	}
	log.Info().Str("provider", provider.Name()).Stringer("database", creds).Msg("Database credentials resolved")

	db, err := store.Open(creds, store.PoolConfig{
		MaxOpenConns:    cfg.Pool.MaxOpenConns,
		MaxIdleConns:    cfg.Pool.MaxIdleConns,
		ConnMaxLifetime: cfg.Pool.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	// A failure here is logged but not fatal; requests will report the database error.
	if err := store.EnsureSchema(ctx, db); err != nil {
		log.Error().Err(err).Msg("Error initializing database")
	} else {
		log.Info().Msg("Database initialized, table 'persons' ready")
	}
	cancel()

	router := service.New(store.New(db), cfg.RequestLogging).Router()
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh
	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", "persons-service").Logger()
}
