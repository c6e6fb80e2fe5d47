package service

import "errors"

// Error taxonomy for classroom operations. Every validation or
// authorization failure maps onto one of these at the operation
// boundary; raw store errors never leak past the services.
var (
	// ErrUnauthorized means the principal lacks permission for the
	// target entity. 403 over the API, silent drop over the socket.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the referenced entity does not exist or is
	// already in a terminal state (lowered hand, closed turn).
	ErrNotFound = errors.New("not found")

	// ErrConflict means a concurrently-won race, e.g. the seat was
	// taken first.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput means a malformed payload or missing required
	// field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState means the operation is not valid given current
	// classroom state, e.g. no active seats for an update round.
	ErrInvalidState = errors.New("invalid state")
)
