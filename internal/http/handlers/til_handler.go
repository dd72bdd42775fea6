// TIL HTTP handlers.
//
// This file exposes REST endpoints for TIL entries:
//   - POST   /tils        (create an entry and attach uploaded images)
//   - GET    /tils        (list the caller's entries, paginated)
//   - GET    /tils/{id}   (fetch a single entry with its images)
//   - PUT    /tils/{id}   (rewrite content and reconcile the image set)
//   - DELETE /tils/{id}   (remove an entry and its images)
//
// Handlers are transport-thin:
//   - validate & normalize inputs (including newline and length constraints)
//   - delegate to application services (TILService)
//   - implement idempotency semantics for creation
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// creation exists for (user, key), the handler returns that recorded entry and
// sets `Idempotency-Replayed: true`.
package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/http/middleware"
	"github.com/growlog/til-backend/internal/repo"
	"github.com/growlog/til-backend/internal/services"
)

// idemScopeTILs namespaces idempotency keys stored for TIL creation, so the
// same client key can safely be reused on other unsafe endpoints.
const idemScopeTILs = "tils"

//
// DTOs
//

// CreateTILRequest is the JSON payload for creating a TIL entry.
//
// ImageIDs references previously uploaded temporary images; identifiers that
// do not resolve to an attachable image are skipped, not rejected.
type CreateTILRequest struct {
	// Content is the entry body. It must be non-empty.
	Content string `json:"content" binding:"required,min=1"`
	// ImageIDs lists temporary image ids to attach to the new entry.
	ImageIDs []string `json:"image_ids"`
}

// UpdateTILRequest is the JSON payload for rewriting a TIL entry.
//
// ImageIDs is the full desired image set: images currently attached but not
// listed are detached and their objects removed.
type UpdateTILRequest struct {
	Content  string   `json:"content" binding:"required,min=1"`
	ImageIDs []string `json:"image_ids"`
}

// TILResponse is the JSON envelope for a single TIL entry.
type TILResponse struct {
	TIL *domain.TIL `json:"til"`
	// Images reports the per-identifier attach outcome; omitted on reads.
	Images []services.AttachResult `json:"images,omitempty"`
}

// ListTILsResponse contains a page of TIL entries and pagination metadata.
type ListTILsResponse struct {
	TILs       []domain.TIL `json:"tils"`
	Pagination Pagination   `json:"pagination"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// discoverMaxContentRunes inspects the concrete TILService for a configured
// content-length limit. If unavailable, it returns a conservative fallback.
func discoverMaxContentRunes(tilSvc TILService) int {
	const fallback = 10000
	if ts, ok := tilSvc.(*services.TILService); ok {
		if ts.MaxContentRunes > 0 {
			return ts.MaxContentRunes
		}
	}
	return fallback
}

//
// Handlers
//

// CreateTIL creates a TIL entry for the caller and attaches the referenced
// temporary images. Supports replay via the Idempotency-Key header.
func (h *Handlers) CreateTIL(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateTILRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	content := sanitizeContent(req.Content)
	maxRunes := discoverMaxContentRunes(h.tilSvc)
	if maxRunes > 0 && utf8.RuneCountInString(content) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		return
	}
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey == "" {
		idemKey = strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
	}
	if idemKey != "" {
		if svc, okSvc := h.tilSvc.(*services.TILService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentUser, idemScopeTILs, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetTILWithImages(ctx, svc.DB, rec.ResourceID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, TILResponse{TIL: prev})
					return
				}
			}
		}
	}

	// Normal processing (service has a second guard for length).
	til, results, err := h.tilSvc.Create(ctx, currentUser, content, req.ImageIDs)
	if err != nil {
		switch err {
		case services.ErrEmptyContent:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case services.ErrContentTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.tilSvc.(*services.TILService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentUser, idemScopeTILs, idemKey, til.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, TILResponse{TIL: til, Images: results})
}

// GetTIL returns a single TIL entry with its images.
func (h *Handlers) GetTIL(c *gin.Context) {
	ctx := c.Request.Context()
	tilID := c.Param("id")

	if _, err := uuid.Parse(tilID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "til id must be a UUID")
		return
	}

	til, err := h.tilSvc.Get(ctx, tilID)
	if err != nil {
		switch err {
		case services.ErrTILNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "til not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, TILResponse{TIL: til})
}

// ListTILs returns a paginated list of the caller's TIL entries, newest first.
func (h *Handlers) ListTILs(c *gin.Context) {
	ctx := c.Request.Context()
	currentUser := userID(c)
	page, pageSize := clampPagination(c)

	items, total, err := h.tilSvc.ListPage(ctx, currentUser, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListTILsResponse{
		TILs:       items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// UpdateTIL rewrites a TIL entry's content and reconciles its image set.
// Only the owner may update; a non-owner gets 403.
func (h *Handlers) UpdateTIL(c *gin.Context) {
	ctx := c.Request.Context()
	tilID := c.Param("id")

	if _, err := uuid.Parse(tilID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "til id must be a UUID")
		return
	}

	var req UpdateTILRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	content := sanitizeContent(req.Content)
	maxRunes := discoverMaxContentRunes(h.tilSvc)
	if maxRunes > 0 && utf8.RuneCountInString(content) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		return
	}
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	til, results, err := h.tilSvc.Update(ctx, userID(c), tilID, content, req.ImageIDs)
	if err != nil {
		switch err {
		case services.ErrTILNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "til not found")
		case services.ErrForbidden:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not the owner of this til")
		case services.ErrEmptyContent:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case services.ErrContentTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, TILResponse{TIL: til, Images: results})
}

// DeleteTIL removes a TIL entry together with its images and stored objects.
// Only the owner may delete; a non-owner gets 403.
func (h *Handlers) DeleteTIL(c *gin.Context) {
	ctx := c.Request.Context()
	tilID := c.Param("id")

	if _, err := uuid.Parse(tilID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "til id must be a UUID")
		return
	}

	if err := h.tilSvc.Delete(ctx, userID(c), tilID); err != nil {
		switch err {
		case services.ErrTILNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "til not found")
		case services.ErrForbidden:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not the owner of this til")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		}
		return
	}
	noContent(c)
}
