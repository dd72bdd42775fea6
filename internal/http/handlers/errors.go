// Package handlers provides HTTP handler implementations for the public API.
//
// The constants below are the machine-readable error codes carried in every
// ErrorResponse. Generic codes track HTTP status semantics; the rest name
// the operation that failed (upload, sync, …) when the status alone is
// ambiguous. Codes are part of the API contract: clients switch on them, so
// renaming one is a breaking change.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodeUploadFailed     = "upload_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeUpdateFailed     = "update_failed"
	ErrCodeDeleteFailed     = "delete_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeSyncFailed       = "sync_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
