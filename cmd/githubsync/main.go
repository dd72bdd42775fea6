// Command githubsync runs one commit-sync pass over every GitHub-linked user.
//
// It is designed to be invoked by an external scheduler (cron, Cloud
// Scheduler): it connects, syncs, logs a summary, and exits. New commits since
// each user's last snapshot mint coins; today's snapshot is upserted either
// way.
//
// Flags:
//
//	-init   record baselines instead of syncing (first-run mode)
//	-user   sync a single user id instead of all linked users
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/growlog/til-backend/internal/config"
	"github.com/growlog/til-backend/internal/github"
	"github.com/growlog/til-backend/internal/repo"
	"github.com/growlog/til-backend/internal/services"
	"github.com/growlog/til-backend/internal/sysutil"
)

func main() {
	initMode := flag.Bool("init", false, "record commit baselines instead of syncing")
	userFlag := flag.String("user", "", "sync only this user id")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run deadline")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	fetcher := github.NewClient(cfg.Github.GraphQLURL)
	fetcher.HTTPClient = &http.Client{Timeout: cfg.Github.HTTPTimeout}

	svc := &services.GithubService{DB: db, Fetcher: fetcher}

	if *initMode && *userFlag == "" {
		log.Fatal().Msg("-init requires -user")
	}

	start := time.Now()
	switch {
	case *userFlag != "" && *initMode:
		okInit, err := svc.SetInitial(ctx, *userFlag)
		if err != nil {
			log.Fatal().Err(err).Str("user_id", *userFlag).Msg("init failed")
		}
		log.Info().Str("user_id", *userFlag).Bool("recorded", okInit).Msg("baseline run complete")

	case *userFlag != "":
		snap, err := svc.Sync(ctx, *userFlag)
		if err != nil {
			log.Fatal().Err(err).Str("user_id", *userFlag).Msg("sync failed")
		}
		log.Info().Str("user_id", *userFlag).Bool("synced", snap != nil).Msg("sync run complete")

	default:
		updated, err := svc.SyncAll(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("sync-all failed")
		}
		log.Info().
			Int("users_updated", updated).
			Dur("elapsed", time.Since(start)).
			Msg("sync-all complete")
	}
}
