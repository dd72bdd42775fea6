// Command server runs the HTTP API.
//
// It loads configuration from the environment (optionally seeded from a .env
// file), opens the SQLite database, connects the object store and the GitHub
// commit fetcher, wires the Gin router, and serves until SIGINT/SIGTERM with
// a graceful drain.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/growlog/til-backend/internal/config"
	"github.com/growlog/til-backend/internal/github"
	httpapi "github.com/growlog/til-backend/internal/http"
	"github.com/growlog/til-backend/internal/observability"
	"github.com/growlog/til-backend/internal/repo"
	"github.com/growlog/til-backend/internal/storage"
	"github.com/growlog/til-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Tracing (no-op unless OTEL_ENABLED).
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(sctx)
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing unavailable")
		}
	}

	if cfg.Storage.Bucket == "" {
		log.Fatal().Msg("STORAGE_BUCKET is required for the API server")
	}
	store, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket, cfg.Storage.CDNDomain)
	if err != nil {
		log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("object store init failed")
	}
	defer store.Close()

	fetcher := github.NewClient(cfg.Github.GraphQLURL)
	fetcher.HTTPClient = &http.Client{Timeout: cfg.Github.HTTPTimeout}

	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, store, fetcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
