// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header on unsafe requests and
// marks detected replays in the request context. Persistence stays out of
// the middleware: a narrow lookup function answers "was this (user, scope,
// key) already completed", and the TIL creation handler decides how to serve
// the stored result.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients send on retryable
// writes. A client reuses the same value when it retries an operation, so
// the server can deduplicate.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the validated key stashed by
// IdempotencyValidator. Handlers read the key through this accessor rather
// than the raw header, so they only ever see values that passed validation.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats an already-completed
// operation for the same user, scope, and key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions tunes header validation. MaxLen caps the key length
// (<= 0 means 200); Pattern restricts the alphabet and defaults to an
// RFC 7230-style token set, ^[A-Za-z0-9._~\-:]+$. Key TTL is the lookup's
// concern, not the middleware's.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a completed, still-valid result exists
// for (userID, scope, key) at now. Lookup failures return an error and must
// not block the request; the caller treats them as "no replay".
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates Idempotency-Key when present, stores the
// key in the context, and consults lookup for a prior completion. On a hit
// it sets the replay flag plus the rate-limiter bypass flag; serving the
// stored payload is left to the handler. Requests without the header pass
// through untouched; a malformed header is rejected with 400 before any
// handler runs.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid := userIDFromCtx(c)
			scope := scopeFromPath(c.FullPath())
			if exists, _ := lookup(c.Request.Context(), uid, scope, key, time.Now().UTC()); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// scopeFromPath reduces a registered route to its first concrete segment
// past the API prefix, e.g. "/api/v1/tils" -> "tils". Keys are stored per
// scope, so one client key can be reused across different resources.
func scopeFromPath(fullPath string) string {
	parts := strings.Split(strings.Trim(fullPath, "/"), "/")
	for _, p := range parts {
		if p == "" || p == "api" || strings.HasPrefix(p, "v") && len(p) <= 3 {
			continue
		}
		return p
	}
	return fullPath
}

// userIDFromCtx reads the authenticated user id set upstream, falling back
// to the single-user development identity.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "demo-user"
}
