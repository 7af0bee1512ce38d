// Package clients provides HTTP client adapters for downstream services.
package clients

import (
	"errors"
	"fmt"
	"time"
)

// Infrastructure failures of the client layer. The acl package translates
// them into domain errors.
var (
	// ErrCircuitOpen means the breaker is refusing calls to the downstream.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once attempts run out.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrNotReplayable means a failed attempt could not be retried safely:
	// its body cannot be rewound, or it is a POST without an
	// Idempotency-Key and might already have charged the patron.
	ErrNotReplayable = errors.New("request cannot be replayed")
)

// StatusError is a retryable HTTP status returned by the downstream.
type StatusError struct {
	StatusCode int
	// RetryAfter is the delay the downstream asked for, zero if none.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("downstream returned %d", e.StatusCode)
}
