// Baekjoon HTTP handlers.
//
// Read-only endpoints over externally collected problem-solving progress:
//   - GET /baekjoon              (the caller's latest snapshot)
//   - GET /baekjoon/challenges   (challenge catalogue, optionally by status)
//
// Snapshot ingestion happens out of band; this API never writes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/services"
)

// BaekjoonResponse is the JSON envelope for a progress snapshot.
type BaekjoonResponse struct {
	Baekjoon *domain.Baekjoon `json:"baekjoon"`
}

// ChallengesResponse contains the challenge catalogue.
type ChallengesResponse struct {
	Challenges []domain.Challenge `json:"challenges"`
}

// GetBaekjoon returns the caller's most recent progress snapshot.
func (h *Handlers) GetBaekjoon(c *gin.Context) {
	ctx := c.Request.Context()

	snap, err := h.bjSvc.Latest(ctx, userID(c))
	if err != nil {
		switch err {
		case services.ErrBaekjoonNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no baekjoon snapshot recorded")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, BaekjoonResponse{Baekjoon: snap})
}

// ListChallenges returns the challenge catalogue, filtered by the optional
// "status" query parameter.
func (h *Handlers) ListChallenges(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.bjSvc.Challenges(ctx, c.Query("status"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ChallengesResponse{Challenges: items})
}
