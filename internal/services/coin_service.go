// Package services – CoinService
//
// This file implements the read side of the coin ledger: the denormalized
// per-user total and the paginated earning history. The page size is a fixed
// policy, not a caller knob.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/repo"
)

// CoinPageSize is the fixed number of ledger entries per history page.
const CoinPageSize = 20

// CoinService exposes coin reads. Minting happens in GithubService, inside
// its sync transaction; this service never writes.
type CoinService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Total returns the user's denormalized running coin total.
func (s *CoinService) Total(ctx context.Context, userID string) (int, error) {
	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.TotalCoins, nil
}

// LogPage returns one page of the user's ledger, newest first, along with
// the total entry count. Pages are CoinPageSize entries; page values < 1
// default to the first page.
func (s *CoinService) LogPage(ctx context.Context, userID string, page int) ([]domain.Coin, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * CoinPageSize

	total, err := repo.CountCoins(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Coin{}, 0, nil
	}

	items, err := repo.ListCoinsPage(ctx, s.DB, userID, offset, CoinPageSize)
	return items, total, err
}
