// Package services – GithubService
//
// This file implements the GitHub commit sync job. The job is driven
// externally (a scheduler hits the internal endpoints or runs the batch
// binary); nothing in this service schedules itself. Two entry points exist:
// SetInitial records a user's baseline without minting anything, and Sync
// performs the steady-state update that converts positive commit deltas into
// coins and experience inside a single transaction.
//
// A failed fetch from the GitHub API is logged and surfaced as absence of
// data, never as a request-ending error: the scheduler simply tries again on
// its next tick.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/github"
	"github.com/growlog/til-backend/internal/repo"
)

// GithubService runs the per-user commit sync.
type GithubService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Fetcher queries the GitHub GraphQL API for commit totals.
	Fetcher github.CommitFetcher
}

// linked reports whether the user can be synced at all.
func linked(u *domain.User) bool {
	return u.GithubAccessToken != "" && u.Username != ""
}

// fetch wraps the commit fetch with the log-and-absorb error policy shared
// by both entry points. The bool reports whether a total was obtained.
func (s *GithubService) fetch(ctx context.Context, u *domain.User) (int, bool) {
	total, err := s.Fetcher.TotalCommits(ctx, u.Username, u.GithubAccessToken)
	if err != nil {
		log.Warn().
			Str("user_id", u.ID).
			Str("username", u.Username).
			Err(err).
			Msg("github commit fetch failed")
		return 0, false
	}
	return total, true
}

// SetInitial records the user's current commit total as their baseline and
// writes the first snapshot row. No coins are minted on initialization.
//
// Returns (false, nil) when the fetch yielded no data; the caller should try
// again later. Returns ErrGithubNotLinked when the user has no token or
// username.
func (s *GithubService) SetInitial(ctx context.Context, userID string) (bool, error) {
	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if !linked(user) {
		return false, ErrGithubNotLinked
	}

	total, ok := s.fetch(ctx, user)
	if !ok {
		return false, nil
	}

	day := domain.DateOf(time.Now())
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.GithubInitialCommits = total
		user.GithubInitialDate = &day
		if err := repo.SaveUser(ctx, tx, user); err != nil {
			return err
		}
		_, err := repo.UpsertSnapshot(ctx, tx, user.ID, day, total)
		return err
	})
	if err != nil {
		return false, err
	}

	log.Info().
		Str("user_id", user.ID).
		Int("commits", total).
		Msg("github baseline recorded")
	return true, nil
}

// Sync performs the steady-state update for one user:
//
//  1. Fetch the current commit total (absence → (nil, nil), logged).
//  2. In one transaction: find the most recent prior snapshot, compute the
//     delta, and for a positive delta mint a "github" coin entry, bump the
//     denormalized coin total, and grow experience by the same amount
//     (which may promote the user's tier).
//  3. Upsert today's snapshot to the fetched total regardless of the delta.
//
// A delta <= 0 mints nothing; commits are monotonic in practice and a
// decrease is tolerated as a no-op. A user with no prior snapshot gets
// today's snapshot written and nothing minted, matching initialization.
func (s *GithubService) Sync(ctx context.Context, userID string) (*domain.GithubSnapshot, error) {
	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !linked(user) {
		return nil, ErrGithubNotLinked
	}

	total, ok := s.fetch(ctx, user)
	if !ok {
		return nil, nil
	}

	now := time.Now().UTC()
	var snap *domain.GithubSnapshot

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prev, err := repo.LatestSnapshot(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		if prev != nil {
			if diff := total - prev.CommitNum; diff > 0 {
				if _, err := repo.CreateCoin(ctx, tx, user.ID, domain.CoinVerbGithub, diff, now); err != nil {
					return err
				}
				user.TotalCoins += diff
				user.IncreaseExp(diff)
				if err := repo.SaveUser(ctx, tx, user); err != nil {
					return err
				}
				log.Info().
					Str("user_id", user.ID).
					Int("coins", diff).
					Str("tier", user.Tier).
					Msg("coins minted for github commits")
			}
		}

		snap, err = repo.UpsertSnapshot(ctx, tx, user.ID, now, total)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID).
		Int("commits", total).
		Msg("github commit count updated")
	return snap, nil
}

// SyncAll runs Sync for every user with a linked GitHub account and returns
// the number of users successfully updated. Per-user failures are logged and
// skipped so one bad account cannot stall the batch.
func (s *GithubService) SyncAll(ctx context.Context) (int, error) {
	users, err := repo.ListGithubLinkedUsers(ctx, s.DB)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range users {
		snap, err := s.Sync(ctx, users[i].ID)
		if err != nil {
			log.Error().
				Str("user_id", users[i].ID).
				Err(err).
				Msg("github sync failed")
			continue
		}
		if snap != nil {
			updated++
		}
	}
	return updated, nil
}
