// Coin HTTP handlers.
//
// This file exposes read endpoints for the coin ledger:
//   - GET /coins/total   (denormalized running total)
//   - GET /coins/log     (fixed-size pages of minting events, newest first)
//
// The log endpoint supports conditional requests: a weak ETag derived from the
// ledger row count and latest event timestamp lets clients poll cheaply.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/growlog/til-backend/internal/domain"
	"github.com/growlog/til-backend/internal/repo"
	"github.com/growlog/til-backend/internal/services"
	"github.com/growlog/til-backend/internal/utils"
)

// CoinTotalResponse is the JSON envelope for the caller's coin balance.
type CoinTotalResponse struct {
	TotalCoins int `json:"total_coins"`
}

// CoinLogResponse contains a page of minting events and pagination metadata.
type CoinLogResponse struct {
	Coins      []domain.Coin `json:"coins"`
	Pagination Pagination    `json:"pagination"`
}

// GetCoinTotal returns the caller's current coin balance.
func (h *Handlers) GetCoinTotal(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.coinSvc.Total(ctx, userID(c))
	if err != nil {
		switch err {
		case services.ErrUserNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, CoinTotalResponse{TotalCoins: total})
}

// GetCoinLog returns one page of the caller's minting history, newest first.
// Page size is fixed; only the page number is client-controlled.
func (h *Handlers) GetCoinLog(c *gin.Context) {
	ctx := c.Request.Context()
	currentUser := userID(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.coinSvc.(*services.CoinService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.CoinStats(ctx, db, currentUser)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"coins:%s:%d:%d"`, currentUser, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	page := utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}

	items, total, err := h.coinSvc.LogPage(ctx, currentUser, page)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, CoinLogResponse{
		Coins:      items,
		Pagination: paginationFor(page, services.CoinPageSize, total),
	})
}
