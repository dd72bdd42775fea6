// Handler wiring and shared service contracts.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Each endpoint group lives in its
// own file (til_handler.go, image_handler.go, coin_handler.go, ...); this file
// holds the service interfaces, the Handlers aggregate, and small helpers
// shared by all of them.
package handlers

import (
	"context"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/services"
	"github.com/growlog/til-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// TILService defines TIL lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TILService interface {
	// Create inserts a TIL for userID and attaches the referenced images.
	Create(ctx context.Context, userID, content string, imageIDs []string) (*domain.TIL, []services.AttachResult, error)
	// Get fetches a TIL with its images.
	Get(ctx context.Context, tilID string) (*domain.TIL, error)
	// ListPage returns a page of the user's TILs and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.TIL, int64, error)
	// Update rewrites content and reconciles the image set (owner only).
	Update(ctx context.Context, userID, tilID, content string, imageIDs []string) (*domain.TIL, []services.AttachResult, error)
	// Delete removes a TIL and its images (owner only).
	Delete(ctx context.Context, userID, tilID string) error
}

// ImageService defines temporary-image operations.
type ImageService interface {
	// UploadTemp stores the payload and records a temporary image row.
	UploadTemp(ctx context.Context, filename string, r io.Reader) (*domain.TILImage, error)
	// DeleteTemp removes a still-temporary image and its stored object.
	DeleteTemp(ctx context.Context, id string) error
}

// CoinService defines ledger reads.
type CoinService interface {
	// Total returns the user's denormalized coin total.
	Total(ctx context.Context, userID string) (int, error)
	// LogPage returns one fixed-size page of the user's ledger, newest first.
	LogPage(ctx context.Context, userID string, page int) ([]domain.Coin, int64, error)
}

// GithubService defines the externally triggered sync operations.
type GithubService interface {
	// SetInitial records the user's commit baseline; false means no data yet.
	SetInitial(ctx context.Context, userID string) (bool, error)
	// Sync runs the steady-state commit update; a nil snapshot means no data.
	Sync(ctx context.Context, userID string) (*domain.GithubSnapshot, error)
}

// GuestbookService defines guestbook operations.
type GuestbookService interface {
	// Leave creates an entry by guestID on hostID's profile.
	Leave(ctx context.Context, guestID, hostID, content string) (*domain.Guestbook, error)
	// ListPage returns a page of visible entries on hostID's profile.
	ListPage(ctx context.Context, hostID string, page, pageSize int) ([]domain.Guestbook, int64, error)
	// Update rewrites an entry's content (author only).
	Update(ctx context.Context, guestID, id, content string) error
	// Remove soft-deletes an entry (author only).
	Remove(ctx context.Context, guestID, id string) error
}

// BaekjoonService defines problem-solving progress reads.
type BaekjoonService interface {
	// Latest returns the user's newest snapshot.
	Latest(ctx context.Context, userID string) (*domain.Baekjoon, error)
	// Challenges lists the challenge catalogue, optionally by status.
	Challenges(ctx context.Context, status string) ([]domain.Challenge, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for every API aggregate. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	tilSvc  TILService
	imgSvc  ImageService
	coinSvc CoinService
	ghSvc   GithubService
	gbSvc   GuestbookService
	bjSvc   BaekjoonService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(tilSvc TILService, imgSvc ImageService, coinSvc CoinService, ghSvc GithubService, gbSvc GuestbookService, bjSvc BaekjoonService) *Handlers {
	return &Handlers{
		tilSvc:  tilSvc,
		imgSvc:  imgSvc,
		coinSvc: coinSvc,
		ghSvc:   ghSvc,
		gbSvc:   gbSvc,
		bjSvc:   bjSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// Shared DTOs and helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// paginationFor computes the metadata block for a page of total items.
func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
