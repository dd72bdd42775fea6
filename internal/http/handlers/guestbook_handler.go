// Guestbook HTTP handlers.
//
// This file exposes REST endpoints for guestbook entries left on a user's
// profile:
//   - POST   /guestbooks/{hostID}   (leave an entry as the caller)
//   - GET    /guestbooks/{hostID}   (list visible entries, paginated)
//   - PUT    /guestbooks/entry/{id} (rewrite an entry; author only)
//   - DELETE /guestbooks/entry/{id} (hide an entry; author only)
//
// Deleted entries are soft-deleted: they vanish from reads but remain in the
// database. Authorization failures are reported as 404 so callers cannot
// probe for entry existence.
package handlers

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/services"
)

//
// DTOs
//

// GuestbookRequest is the JSON payload for leaving or editing an entry.
type GuestbookRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// GuestbookResponse is the JSON envelope for a single guestbook entry.
type GuestbookResponse struct {
	Guestbook *domain.Guestbook `json:"guestbook"`
}

// ListGuestbooksResponse contains a page of entries and pagination metadata.
type ListGuestbooksResponse struct {
	Guestbooks []domain.Guestbook `json:"guestbooks"`
	Pagination Pagination         `json:"pagination"`
}

// discoverMaxGuestbookRunes inspects the concrete GuestbookService for its
// content-length limit, with a conservative fallback.
func discoverMaxGuestbookRunes(gbSvc GuestbookService) int {
	const fallback = 1000
	if gs, ok := gbSvc.(*services.GuestbookService); ok {
		if gs.MaxContentRunes > 0 {
			return gs.MaxContentRunes
		}
	}
	return fallback
}

//
// Handlers
//

// LeaveGuestbook creates an entry by the caller on the host's profile.
func (h *Handlers) LeaveGuestbook(c *gin.Context) {
	ctx := c.Request.Context()
	hostID := c.Param("hostID")
	if hostID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "host id required")
		return
	}

	var req GuestbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	content := sanitizeContent(req.Content)
	maxRunes := discoverMaxGuestbookRunes(h.gbSvc)
	if maxRunes > 0 && utf8.RuneCountInString(content) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		return
	}
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	gb, err := h.gbSvc.Leave(ctx, userID(c), hostID, content)
	if err != nil {
		switch err {
		case services.ErrEmptyMessage:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case services.ErrContentTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, GuestbookResponse{Guestbook: gb})
}

// ListGuestbooks returns a page of visible entries on the host's profile,
// newest first. Soft-deleted entries never appear.
func (h *Handlers) ListGuestbooks(c *gin.Context) {
	ctx := c.Request.Context()
	hostID := c.Param("hostID")
	if hostID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "host id required")
		return
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.gbSvc.ListPage(ctx, hostID, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListGuestbooksResponse{
		Guestbooks: items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// UpdateGuestbook rewrites an entry's content. Only the author may edit;
// anyone else gets 404.
func (h *Handlers) UpdateGuestbook(c *gin.Context) {
	ctx := c.Request.Context()
	entryID := c.Param("id")

	if _, err := uuid.Parse(entryID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "entry id must be a UUID")
		return
	}

	var req GuestbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	content := sanitizeContent(req.Content)
	maxRunes := discoverMaxGuestbookRunes(h.gbSvc)
	if maxRunes > 0 && utf8.RuneCountInString(content) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		return
	}
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	if err := h.gbSvc.Update(ctx, userID(c), entryID, content); err != nil {
		switch err {
		case services.ErrGuestbookNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "guestbook entry not found")
		case services.ErrEmptyMessage:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case services.ErrContentTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}
	noContent(c)
}

// DeleteGuestbook soft-deletes an entry. Only the author may delete;
// anyone else gets 404.
func (h *Handlers) DeleteGuestbook(c *gin.Context) {
	ctx := c.Request.Context()
	entryID := c.Param("id")

	if _, err := uuid.Parse(entryID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "entry id must be a UUID")
		return
	}

	if err := h.gbSvc.Remove(ctx, userID(c), entryID); err != nil {
		switch err {
		case services.ErrGuestbookNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "guestbook entry not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		}
		return
	}
	noContent(c)
}
