// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the TILImage
// model, covering the temporary-upload lifecycle and the reconciliation
// queries used when a TIL's image set changes.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
)

// CreateTempImage inserts a new temporary, unattached image row pointing at
// the given public URL. The image ID is a randomly generated UUID.
func CreateTempImage(ctx context.Context, db *gorm.DB, url string) (*domain.TILImage, error) {
	img := &domain.TILImage{
		ID:          uuid.NewString(),
		URL:         url,
		IsTemporary: true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

// GetTempImage fetches an image by ID restricted to rows still flagged
// temporary. Attached images are invisible to this query, so deleting an
// attached image through the temp endpoint yields ErrNotFound.
func GetTempImage(ctx context.Context, db *gorm.DB, id string) (*domain.TILImage, error) {
	var img domain.TILImage
	err := db.WithContext(ctx).
		Where("id = ? AND is_temporary = ?", id, true).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// GetImage fetches an image by ID regardless of its temporary flag.
func GetImage(ctx context.Context, db *gorm.DB, id string) (*domain.TILImage, error) {
	var img domain.TILImage
	if err := db.WithContext(ctx).First(&img, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// ListImagesByTIL returns every image currently linked to tilID.
func ListImagesByTIL(ctx context.Context, db *gorm.DB, tilID string) ([]domain.TILImage, error) {
	var out []domain.TILImage
	err := db.WithContext(ctx).
		Where("til_id = ?", tilID).
		Find(&out).Error
	return out, err
}

// ListImagesToDetach returns the images linked to tilID whose IDs are NOT in
// keepIDs. These are the rows (and objects) to remove when the TIL's image
// set is reconciled. An empty keepIDs returns every linked image.
func ListImagesToDetach(ctx context.Context, db *gorm.DB, tilID string, keepIDs []string) ([]domain.TILImage, error) {
	var out []domain.TILImage
	q := db.WithContext(ctx).Where("til_id = ?", tilID)
	if len(keepIDs) > 0 {
		q = q.Where("id NOT IN ?", keepIDs)
	}
	err := q.Find(&out).Error
	return out, err
}

// SaveImage persists all fields of an existing image row.
func SaveImage(ctx context.Context, db *gorm.DB, img *domain.TILImage) error {
	return db.WithContext(ctx).Save(img).Error
}

// DeleteImage removes an image row by ID. Returns ErrNotFound when the row
// does not exist.
func DeleteImage(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.TILImage{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteImagesByTIL removes every image row linked to tilID. Used by the TIL
// delete path after the object-store entries have been removed.
func DeleteImagesByTIL(ctx context.Context, db *gorm.DB, tilID string) error {
	return db.WithContext(ctx).Delete(&domain.TILImage{}, "til_id = ?", tilID).Error
}
