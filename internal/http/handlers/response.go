// Package handlers provides HTTP handler implementations for the public API.
//
// This file holds the response helpers every endpoint goes through. Errors
// always leave the server as an ErrorResponse envelope with a stable code
// from errors.go, e.g.:
//
//	HTTP/1.1 403 Forbidden
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "forbidden",
//	  "message": "not the owner of this til"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growlog/til-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope shared by all endpoints. Code is a
// stable machine-readable string, Message is safe to surface to users, and
// RequestID echoes X-Request-ID so a client report can be matched to server
// logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// fail aborts the request with the envelope at the given status. Responses
// of 500 and above are additionally logged through the request-scoped
// logger; client errors are the caller's problem and stay out of the error
// stream.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail exposes fail to the router package for 404/405 fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
