// GitHub sync HTTP handlers.
//
// Internal hooks for the external scheduler that drives commit syncing:
//   - POST /internal/github/init   (record the caller's commit baseline)
//   - POST /internal/github/sync   (steady-state update; may mint coins)
//
// Both endpoints degrade gracefully: when GitHub is unreachable or the
// account is unknown, they report 202 with synced=false rather than failing,
// so the scheduler never has to special-case transient upstream errors.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/services"
)

// GithubSyncResponse reports the outcome of an init or sync run.
type GithubSyncResponse struct {
	// Synced is false when no commit data could be fetched this run.
	Synced bool `json:"synced"`
	// Snapshot is the stored state after a successful sync, when available.
	Snapshot *domain.GithubSnapshot `json:"snapshot,omitempty"`
}

// InitGithub records the caller's commit-count baseline. Coins are never
// minted here; the baseline only anchors future diffs.
func (h *Handlers) InitGithub(c *gin.Context) {
	ctx := c.Request.Context()

	okInit, err := h.ghSvc.SetInitial(ctx, userID(c))
	if err != nil {
		switch err {
		case services.ErrGithubNotLinked:
			fail(c, http.StatusConflict, ErrCodeConflict, "github account not linked")
		case services.ErrUserNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSyncFailed, err.Error())
		}
		return
	}
	if !okInit {
		ok(c, http.StatusAccepted, GithubSyncResponse{Synced: false})
		return
	}
	ok(c, http.StatusOK, GithubSyncResponse{Synced: true})
}

// SyncGithub runs one steady-state commit sync for the caller: new commits
// since the last snapshot mint coins and experience, and today's snapshot is
// written regardless.
func (h *Handlers) SyncGithub(c *gin.Context) {
	ctx := c.Request.Context()

	snap, err := h.ghSvc.Sync(ctx, userID(c))
	if err != nil {
		switch err {
		case services.ErrGithubNotLinked:
			fail(c, http.StatusConflict, ErrCodeConflict, "github account not linked")
		case services.ErrUserNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSyncFailed, err.Error())
		}
		return
	}
	if snap == nil {
		ok(c, http.StatusAccepted, GithubSyncResponse{Synced: false})
		return
	}
	ok(c, http.StatusOK, GithubSyncResponse{Synced: true, Snapshot: snap})
}
