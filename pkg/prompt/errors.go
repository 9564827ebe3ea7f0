package prompt

import "errors"

// Store error sentinels. Callers discriminate with errors.Is.
var (
	// ErrNotFound is returned when a referenced record id does not exist.
	ErrNotFound = errors.New("prompt record not found")

	// ErrInvariantViolation is returned when a write would break the
	// status/remote-id pairing. It indicates a bug in the caller and is
	// rejected before any mutation.
	ErrInvariantViolation = errors.New("sync status invariant violation")

	// ErrStorageUnavailable wraps local storage medium failures. The store
	// never retries these itself; they surface to the caller.
	ErrStorageUnavailable = errors.New("local storage unavailable")
)
