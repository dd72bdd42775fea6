// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model
// (profile extensions: GitHub linkage, coins, progression).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
)

// GetUser fetches a user by ID, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser persists all fields of an existing user row.
func SaveUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Save(u).Error
}

// ListGithubLinkedUsers returns every user that has both a GitHub access
// token and a username, i.e. the population eligible for the commit sync job.
func ListGithubLinkedUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Where("github_access_token <> '' AND username <> ''").
		Find(&out).Error
	return out, err
}
