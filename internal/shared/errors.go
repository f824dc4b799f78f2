package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrConfiguration = errors.New("configuration error")
	ErrMissingConfig = fmt.Errorf("%w: configuration not found", ErrConfiguration)
	ErrInvalidConfig = fmt.Errorf("%w: invalid configuration", ErrConfiguration)

	// Authentication errors
	ErrAuth             = errors.New("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("%w: not authenticated", ErrAuth)
	ErrInvalidGrant     = fmt.Errorf("%w: refresh token rejected", ErrAuth)
	ErrTimeout          = errors.New("operation timed out")

	// API and service errors
	ErrRemoteAPI        = errors.New("remote API request failed")
	ErrPlaylistNotFound = errors.New("playlist not found")

	ErrIO = errors.New("i/o error")

	// Input validation errors
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
)

// APIError is returned when the remote service answers a request with a non-success status.
//
// It matches [ErrRemoteAPI] with [errors.Is], and [ErrPlaylistNotFound] when the service reported a 404.
type APIError struct {
	Op      string // Remote operation, e.g. "playlists.insert"
	Status  int    // HTTP status code
	Message string // Message reported by the service
	Err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d): %s", ErrRemoteAPI, e.Op, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRemoteAPI:
		return true
	case ErrPlaylistNotFound:
		return e.Status == 404
	}
	return false
}
