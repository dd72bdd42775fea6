// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the TIL model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Ownership rules live in the service
// layer; the repository fetches by primary key regardless of requester.
//
// Error semantics:
//   - When a TIL is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateTIL inserts a new TIL row owned by userID with the given content.
// The TIL ID is a randomly generated UUID (string), and CreatedAt is set to UTC.
//
// On success, it returns the persisted TIL. On failure, it returns a DB error.
func CreateTIL(ctx context.Context, db *gorm.DB, userID, content string) (*domain.TIL, error) {
	t := &domain.TIL{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetTIL fetches a single TIL by its ID. If the record does not exist, it
// returns ErrNotFound. On other DB errors, the raw error is returned.
func GetTIL(ctx context.Context, db *gorm.DB, id string) (*domain.TIL, error) {
	var t domain.TIL
	if err := db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTILWithImages fetches a TIL and preloads its attached images.
func GetTILWithImages(ctx context.Context, db *gorm.DB, id string) (*domain.TIL, error) {
	var t domain.TIL
	err := db.WithContext(ctx).
		Preload("Images").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountTILs returns the total number of TILs owned by userID.
func CountTILs(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.TIL{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListTILsPage returns a paginated slice of TILs for userID, ordered by
// creation time descending. Use CountTILs to obtain the total for pagination
// metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListTILsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.TIL, error) {
	var out []domain.TIL
	err := db.WithContext(ctx).
		Preload("Images").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateTILContent updates the content of a TIL identified by id. If no rows
// are affected (TIL missing), it returns ErrNotFound.
func UpdateTILContent(ctx context.Context, db *gorm.DB, id, content string) error {
	res := db.WithContext(ctx).
		Model(&domain.TIL{}).
		Where("id = ?", id).
		Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTIL hard-deletes a TIL row. Attached image rows are removed by the
// cascading foreign key; object-store cleanup is the service's concern and
// must happen before this call.
func DeleteTIL(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.TIL{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
