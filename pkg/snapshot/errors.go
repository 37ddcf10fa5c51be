package snapshot

import "errors"

// Common errors returned by the snapshot package.
var (
	// ErrInvalidJSON is returned when the response body is not valid JSON.
	ErrInvalidJSON = errors.New("snapshot is not valid JSON")

	// ErrInvalidBaseURL is returned when the client base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrUnexpectedStatus is returned when the backend responds with a
	// non-200 status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)
