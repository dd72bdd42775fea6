// Package services – TILService
//
// This file implements the TILService, which owns the TIL lifecycle and the
// reconciliation of each TIL's image set against a requested list of image
// ids. Reconciliation is deliberately best-effort: ids that do not resolve
// to a usable image are skipped and reported as such, never errored, so a
// client racing against its own uploads cannot fail a whole request.
// Ownership is enforced before any mutation on update and delete.
package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/repo"
	"github.com/growlog/til-backend/internal/storage"
)

// AttachOutcome names the per-id result of image reconciliation.
type AttachOutcome string

const (
	// AttachAttached means the image is linked to the TIL after the call.
	AttachAttached AttachOutcome = "attached"
	// AttachSkipped means the id did not resolve to a usable image and was
	// ignored. This is the documented leniency, not a failure.
	AttachSkipped AttachOutcome = "skipped-not-found"
)

// AttachResult reports what happened to a single requested image id.
type AttachResult struct {
	ImageID string        `json:"image_id"`
	Outcome AttachOutcome `json:"outcome"`
}

// TILService provides TIL-level operations: create, read, update, delete,
// and the image-set reconciliation that accompanies create and update.
type TILService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the object store holding image bytes.
	Store storage.Store

	// MaxContentRunes caps TIL content by rune length; <= 0 disables the cap.
	MaxContentRunes int
}

// NewTILService constructs a TILService with a sane default content cap.
func NewTILService(db *gorm.DB, store storage.Store) *TILService {
	return &TILService{DB: db, Store: store, MaxContentRunes: 10000}
}

// validateContent applies the shared content rules for create and update.
func (s *TILService) validateContent(content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return ErrContentTooLong
	}
	return nil
}

// Create inserts a new TIL owned by userID and attaches the referenced
// temporary images. Only images still flagged temporary are eligible on the
// create path; every other id is skipped. No object-store traffic happens
// here — temp uploads keep their keys until the first update moves them.
func (s *TILService) Create(ctx context.Context, userID, content string, imageIDs []string) (*domain.TIL, []AttachResult, error) {
	if err := s.validateContent(content); err != nil {
		return nil, nil, err
	}

	til, err := repo.CreateTIL(ctx, s.DB, userID, content)
	if err != nil {
		return nil, nil, err
	}

	results := make([]AttachResult, 0, len(imageIDs))
	for _, id := range imageIDs {
		img, err := repo.GetTempImage(ctx, s.DB, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				results = append(results, AttachResult{ImageID: id, Outcome: AttachSkipped})
				continue
			}
			return nil, nil, err
		}
		tilID := til.ID
		img.TILID = &tilID
		img.IsTemporary = false
		if err := repo.SaveImage(ctx, s.DB, img); err != nil {
			return nil, nil, err
		}
		results = append(results, AttachResult{ImageID: id, Outcome: AttachAttached})
	}

	full, err := repo.GetTILWithImages(ctx, s.DB, til.ID)
	if err != nil {
		return nil, nil, err
	}
	return full, results, nil
}

// Update rewrites a TIL's content and reconciles its image set against
// imageIDs.
//
// Semantics:
//   - The requester must own the TIL (ErrForbidden, no side effects).
//   - Linked images absent from imageIDs lose their object-store entry and
//     their row.
//   - Ids resolving to an unattached image are attached; the object is moved
//     from its temp key to til/{til_id}/{filename} and the stored URL is
//     rewritten.
//   - Ids resolving to an image owned by a different TIL are re-parented in
//     place; no object move happens in that branch.
//   - Ids that resolve to nothing are skipped.
//
// Object-store failures during reconciliation propagate and abort the
// operation; database and storage state may diverge at that point (a known
// latent inconsistency, tolerated rather than recovered).
func (s *TILService) Update(ctx context.Context, userID, tilID, content string, imageIDs []string) (*domain.TIL, []AttachResult, error) {
	if err := s.validateContent(content); err != nil {
		return nil, nil, err
	}

	til, err := repo.GetTIL(ctx, s.DB, tilID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTILNotFound
		}
		return nil, nil, err
	}
	if til.UserID != userID {
		return nil, nil, ErrForbidden
	}

	if err := repo.UpdateTILContent(ctx, s.DB, tilID, content); err != nil {
		return nil, nil, err
	}

	// Drop images that fell out of the requested set: object first, then row.
	toDetach, err := repo.ListImagesToDetach(ctx, s.DB, tilID, imageIDs)
	if err != nil {
		return nil, nil, err
	}
	for i := range toDetach {
		img := &toDetach[i]
		if err := s.Store.Delete(ctx, storage.KeyFromURL(img.URL)); err != nil {
			return nil, nil, err
		}
		if err := repo.DeleteImage(ctx, s.DB, img.ID); err != nil {
			return nil, nil, err
		}
	}

	results := make([]AttachResult, 0, len(imageIDs))
	for _, id := range imageIDs {
		img, err := repo.GetImage(ctx, s.DB, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				results = append(results, AttachResult{ImageID: id, Outcome: AttachSkipped})
				continue
			}
			return nil, nil, err
		}

		switch {
		case img.TILID == nil:
			// Fresh attachment: relocate the object to its permanent key.
			newKey := storage.TILKey(tilID, storage.Filename(img.URL))
			if err := storage.Move(ctx, s.Store, storage.KeyFromURL(img.URL), newKey); err != nil {
				return nil, nil, err
			}
			owner := tilID
			img.TILID = &owner
			img.IsTemporary = false
			img.URL = s.Store.PublicURL(newKey)
			if err := repo.SaveImage(ctx, s.DB, img); err != nil {
				return nil, nil, err
			}
		case *img.TILID != tilID:
			// Borrowed from another TIL: re-parent only, object stays put.
			owner := tilID
			img.TILID = &owner
			img.IsTemporary = false
			if err := repo.SaveImage(ctx, s.DB, img); err != nil {
				return nil, nil, err
			}
		}
		results = append(results, AttachResult{ImageID: id, Outcome: AttachAttached})
	}

	updated, err := s.Get(ctx, tilID)
	return updated, results, err
}

// Delete removes a TIL after an ownership check: every attached image's
// object-store entry goes first, then the image rows and the TIL row fall in
// one transaction.
func (s *TILService) Delete(ctx context.Context, userID, tilID string) error {
	til, err := repo.GetTIL(ctx, s.DB, tilID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTILNotFound
		}
		return err
	}
	if til.UserID != userID {
		return ErrForbidden
	}

	imgs, err := repo.ListImagesByTIL(ctx, s.DB, tilID)
	if err != nil {
		return err
	}
	for i := range imgs {
		if err := s.Store.Delete(ctx, storage.KeyFromURL(imgs[i].URL)); err != nil {
			return err
		}
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteImagesByTIL(ctx, tx, tilID); err != nil {
			return err
		}
		return repo.DeleteTIL(ctx, tx, tilID)
	})
}

// Get fetches a TIL with its images, mapping a missing row to ErrTILNotFound.
func (s *TILService) Get(ctx context.Context, tilID string) (*domain.TIL, error) {
	til, err := repo.GetTILWithImages(ctx, s.DB, tilID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTILNotFound
		}
		return nil, err
	}
	return til, nil
}

// ListPage returns a page of the user's TILs and the total count.
// It applies defaults for invalid page/pageSize.
func (s *TILService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.TIL, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountTILs(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.TIL{}, 0, nil
	}

	items, err := repo.ListTILsPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}
