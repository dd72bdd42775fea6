// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// GithubSnapshot model used by the commit sync job.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
)

// LatestSnapshot returns the most recent snapshot for userID, ordered by
// (date desc, id desc) so that same-day rows resolve to the newest insert.
// It returns (nil, nil) when the user has no snapshots at all.
func LatestSnapshot(ctx context.Context, db *gorm.DB, userID string) (*domain.GithubSnapshot, error) {
	var snap domain.GithubSnapshot
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, id desc").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// UpsertSnapshot writes the snapshot for (userID, date): the existing row is
// updated when present, otherwise a new one is inserted. The date is
// normalized to its UTC calendar day before the lookup, matching the unique
// index on (user_id, date).
func UpsertSnapshot(ctx context.Context, db *gorm.DB, userID string, date time.Time, commitNum int) (*domain.GithubSnapshot, error) {
	day := domain.DateOf(date)

	var snap domain.GithubSnapshot
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, day).
		First(&snap).Error
	switch {
	case err == nil:
		snap.CommitNum = commitNum
		if err := db.WithContext(ctx).Save(&snap).Error; err != nil {
			return nil, err
		}
		return &snap, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		snap = domain.GithubSnapshot{UserID: userID, Date: day, CommitNum: commitNum}
		if err := db.WithContext(ctx).Create(&snap).Error; err != nil {
			return nil, err
		}
		return &snap, nil
	default:
		return nil, err
	}
}
