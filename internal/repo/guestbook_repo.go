// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Guestbook
// model. Deletion is soft: gorm.DeletedAt keeps the row and every read in
// this file automatically excludes soft-deleted entries.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
)

// CreateGuestbook inserts a new guestbook entry authored by guestID on the
// profile of hostID.
func CreateGuestbook(ctx context.Context, db *gorm.DB, guestID, hostID, content string) (*domain.Guestbook, error) {
	g := &domain.Guestbook{
		ID:        uuid.NewString(),
		GuestID:   guestID,
		HostID:    hostID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

// GetGuestbook fetches a single (non-deleted) entry by ID.
func GetGuestbook(ctx context.Context, db *gorm.DB, id string) (*domain.Guestbook, error) {
	var g domain.Guestbook
	if err := db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// CountGuestbooks returns the number of visible entries on hostID's profile.
func CountGuestbooks(ctx context.Context, db *gorm.DB, hostID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Guestbook{}).
		Where("host_id = ?", hostID).
		Count(&total).Error
	return total, err
}

// ListGuestbooksPage returns a page of visible entries on hostID's profile,
// newest first.
func ListGuestbooksPage(ctx context.Context, db *gorm.DB, hostID string, offset, limit int) ([]domain.Guestbook, error) {
	var out []domain.Guestbook
	err := db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateGuestbookContent updates the content of an entry identified by id
// and authored by guestID. Returns ErrNotFound when no visible row matches.
func UpdateGuestbookContent(ctx context.Context, db *gorm.DB, id, guestID, content string) error {
	res := db.WithContext(ctx).
		Model(&domain.Guestbook{}).
		Where("id = ? AND guest_id = ?", id, guestID).
		Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteGuestbook marks an entry authored by guestID as deleted. The row
// is retained with deleted_at set; subsequent reads skip it.
func SoftDeleteGuestbook(ctx context.Context, db *gorm.DB, id, guestID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND guest_id = ?", id, guestID).
		Delete(&domain.Guestbook{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
