// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-only queries for Baekjoon
// problem-solving snapshots (written by an external collector) and for the
// Challenge catalogue.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
)

// LatestBaekjoon returns the newest problem-solving snapshot for userID,
// or ErrNotFound when the user has none.
func LatestBaekjoon(ctx context.Context, db *gorm.DB, userID string) (*domain.Baekjoon, error) {
	var b domain.Baekjoon
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, id desc").
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListChallenges returns the challenge catalogue, optionally filtered by
// status ("" returns everything), newest first.
func ListChallenges(ctx context.Context, db *gorm.DB, status string) ([]domain.Challenge, error) {
	q := db.WithContext(ctx).Model(&domain.Challenge{}).Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Challenge
	err := q.Find(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.Challenge{}, nil
	}
	return out, err
}
