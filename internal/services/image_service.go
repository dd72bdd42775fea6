// Package services – ImageService
//
// This file implements the ImageService, which handles the temporary-image
// half of the TIL image lifecycle: a client uploads an image before the TIL
// exists, receives an id plus public URL, and may delete the upload again as
// long as it has not been attached. Attachment itself is TILService's job.
package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/repo"
	"github.com/growlog/til-backend/internal/storage"
)

// ImageService manages temporary image uploads. Uploads land in the object
// store under a randomized temp/ key and are recorded as temporary rows;
// deletion is only possible while the row is still temporary.
type ImageService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the object store holding the image bytes.
	Store storage.Store
}

// UploadTemp stores the image payload and records a temporary image row.
//
// Validation:
//   - r must be non-nil and filename non-blank; otherwise ErrNoImage and
//     nothing is written anywhere.
//
// On object-store failure the error is returned as-is (the handler surfaces
// it as a server error); no database row is created in that case.
func (s *ImageService) UploadTemp(ctx context.Context, filename string, r io.Reader) (*domain.TILImage, error) {
	filename = strings.TrimSpace(filename)
	if r == nil || filename == "" {
		return nil, ErrNoImage
	}

	key := storage.TempKey(filename)
	url, err := s.Store.Upload(ctx, key, r)
	if err != nil {
		return nil, err
	}

	return repo.CreateTempImage(ctx, s.DB, url)
}

// DeleteTemp removes a still-temporary image: the object-store entry first,
// then the database row. Images that were already attached to a TIL are not
// visible to this operation and yield ErrImageNotFound.
func (s *ImageService) DeleteTemp(ctx context.Context, id string) error {
	img, err := repo.GetTempImage(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	if err := s.Store.Delete(ctx, storage.KeyFromURL(img.URL)); err != nil {
		return err
	}
	return repo.DeleteImage(ctx, s.DB, img.ID)
}
