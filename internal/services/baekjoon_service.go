// Package services – BaekjoonService
//
// Read-only access to problem-solving snapshots and the challenge catalogue.
// Both are written outside this application; the API only serializes them.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/repo"
)

// ErrBaekjoonNotFound indicates the user has no problem-solving snapshot yet.
var ErrBaekjoonNotFound = errors.New("baekjoon snapshot not found")

// BaekjoonService serves problem-solving progress reads.
type BaekjoonService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Latest returns the user's newest problem-solving snapshot.
func (s *BaekjoonService) Latest(ctx context.Context, userID string) (*domain.Baekjoon, error) {
	b, err := repo.LatestBaekjoon(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBaekjoonNotFound
		}
		return nil, err
	}
	return b, nil
}

// Challenges lists the challenge catalogue, optionally filtered by status.
func (s *BaekjoonService) Challenges(ctx context.Context, status string) ([]domain.Challenge, error) {
	return repo.ListChallenges(ctx, s.DB, status)
}
