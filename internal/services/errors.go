// Package services defines the business logic for TILs, images, coins, the
// GitHub sync job, and guestbooks. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// TIL-related errors.
var (
	// ErrTILNotFound indicates that the requested TIL does not exist.
	ErrTILNotFound = errors.New("til not found")

	// ErrForbidden is returned when a user attempts to mutate a TIL they do
	// not own. The operation has no side effects in this case.
	ErrForbidden = errors.New("not the owner of this til")

	// ErrEmptyContent is returned when a request to create or update a TIL
	// carries no content.
	ErrEmptyContent = errors.New("content is empty")

	// ErrContentTooLong is returned when TIL content exceeds the configured
	// maximum length.
	ErrContentTooLong = errors.New("content too long")
)

// Image-related errors.
var (
	// ErrNoImage is returned when an upload request carries no image payload.
	ErrNoImage = errors.New("no image provided")

	// ErrImageNotFound indicates that the requested image does not exist or
	// is not deletable through the temporary-image endpoint (already
	// attached images are invisible there).
	ErrImageNotFound = errors.New("image not found")
)

// GitHub sync errors.
var (
	// ErrGithubNotLinked is returned when the sync job is invoked for a user
	// without both a GitHub access token and a username. The job exits as a
	// reported no-op, never a retry loop.
	ErrGithubNotLinked = errors.New("github account not linked")
)

// Guestbook errors.
var (
	// ErrGuestbookNotFound indicates that the entry does not exist, was
	// soft-deleted, or is not writable by the requesting user.
	ErrGuestbookNotFound = errors.New("guestbook entry not found")

	// ErrEmptyMessage is returned when a guestbook entry carries no content.
	ErrEmptyMessage = errors.New("message is empty")
)

// User errors.
var (
	// ErrUserNotFound indicates that the referenced user row is missing.
	ErrUserNotFound = errors.New("user not found")
)
