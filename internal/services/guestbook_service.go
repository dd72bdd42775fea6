// Package services – GuestbookService
//
// This file implements guestbook messages left by one user (the guest) on
// another user's profile (the host). Entries are soft-deleted and reads skip
// deleted rows. Only the author may edit or remove an entry.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/repo"
)

// GuestbookService manages guestbook entries.
type GuestbookService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// MaxContentRunes caps entry content by rune length; <= 0 disables it.
	MaxContentRunes int
}

// NewGuestbookService constructs a GuestbookService with a default cap.
func NewGuestbookService(db *gorm.DB) *GuestbookService {
	return &GuestbookService{DB: db, MaxContentRunes: 1000}
}

func (s *GuestbookService) validate(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return "", ErrContentTooLong
	}
	return content, nil
}

// Leave creates an entry by guestID on hostID's profile.
func (s *GuestbookService) Leave(ctx context.Context, guestID, hostID, content string) (*domain.Guestbook, error) {
	content, err := s.validate(content)
	if err != nil {
		return nil, err
	}
	return repo.CreateGuestbook(ctx, s.DB, guestID, hostID, content)
}

// ListPage returns one page of visible entries on hostID's profile, newest
// first, and the total count.
func (s *GuestbookService) ListPage(ctx context.Context, hostID string, page, pageSize int) ([]domain.Guestbook, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountGuestbooks(ctx, s.DB, hostID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Guestbook{}, 0, nil
	}

	items, err := repo.ListGuestbooksPage(ctx, s.DB, hostID, offset, pageSize)
	return items, total, err
}

// Update rewrites the content of an entry authored by guestID. A missing,
// deleted, or foreign entry yields ErrGuestbookNotFound.
func (s *GuestbookService) Update(ctx context.Context, guestID, id, content string) error {
	content, err := s.validate(content)
	if err != nil {
		return err
	}
	if err := repo.UpdateGuestbookContent(ctx, s.DB, id, guestID, content); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuestbookNotFound
		}
		return err
	}
	return nil
}

// Remove soft-deletes an entry authored by guestID.
func (s *GuestbookService) Remove(ctx context.Context, guestID, id string) error {
	if err := repo.SoftDeleteGuestbook(ctx, s.DB, id, guestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuestbookNotFound
		}
		return err
	}
	return nil
}
