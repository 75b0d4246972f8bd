// Package apperr holds the sentinel errors shared between the dispatcher
// and its adapters, so the HTTP and CLI layers can map core errors to their
// own status codes with errors.Is instead of string matching.
package apperr

import "errors"

var (
	// ErrNotFound names the case of a key or rank with no matching entry.
	// The dispatcher reports that case as a CodeNotFound result, not as this
	// error; no function in this module returns it.
	ErrNotFound = errors.New("not found")

	// ErrCapReject is returned when an insert would exceed a board's cap
	// and the board rejects it outright rather than evicting to make room.
	ErrCapReject = errors.New("cap reject")

	// ErrAuth is returned for a write attempted through a read-only key.
	ErrAuth = errors.New("insufficient capability")

	// ErrMalformed is returned when a request payload fails validation.
	ErrMalformed = errors.New("malformed payload")

	// ErrUnknownBoard is returned when a request names a board that isn't
	// registered.
	ErrUnknownBoard = errors.New("unknown board")
)
