package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrAuth indicates the Spotify credential is invalid or expired.
	// Run-fatal: the remaining run is aborted.
	ErrAuth = errors.New("authentication failed")

	// ErrTransient indicates a transient remote failure (network,
	// rate limit, 5xx). Retried at the transport level.
	ErrTransient = errors.New("transient remote error")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration or missing credentials
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCorrupt indicates a malformed persisted entry
	ErrCorrupt = errors.New("corrupt entry")
)
