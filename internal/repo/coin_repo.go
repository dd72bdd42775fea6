// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Coin
// ledger. The ledger is append-only: there is deliberately no update or
// delete here.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
)

// CreateCoin appends a ledger entry for userID with the given verb and
// signed coin delta. The timestamp is recorded as passed in so that callers
// inside a transaction share a single notion of "now".
func CreateCoin(ctx context.Context, db *gorm.DB, userID, verb string, coins int, at time.Time) (*domain.Coin, error) {
	c := &domain.Coin{
		ID:        uuid.NewString(),
		UserID:    userID,
		Verb:      verb,
		Coins:     coins,
		Timestamp: at,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// CountCoins returns the total number of ledger entries for userID.
func CountCoins(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Coin{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListCoinsPage returns a page of ledger entries for userID ordered by
// timestamp descending (newest first).
func ListCoinsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Coin, error) {
	var out []domain.Coin
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CoinStats returns aggregate metadata for a user's ledger: the total number
// of rows and the maximum Timestamp among those rows. Used for ETag
// generation on the coin history endpoint. When the user has no entries, the
// returned count is 0 and maxTimestamp is nil.
func CoinStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxTimestamp *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Coin{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest timestamp (avoid MAX() -> TEXT in SQLite)
	var row struct {
		Timestamp time.Time
	}
	if err = q.Select("timestamp").Order("timestamp DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.Timestamp, nil
}
