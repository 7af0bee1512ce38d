package clients

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jsamuelsen/library-circulation/internal/platform/config"
)

// HeaderIdempotencyKey marks a non-idempotent request as safe to replay.
const HeaderIdempotencyKey = "Idempotency-Key"

// retryPolicy decides whether a failed attempt is tried again and when.
type retryPolicy struct {
	cfg config.RetryConfig
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}

	return retryPolicy{cfg: cfg}
}

func (p retryPolicy) maxAttempts() int {
	return p.cfg.MaxAttempts
}

// backoff is the wait before the given retry, counted from 1, spread by
// JitterFactor either way. A downstream
// Retry-After wins when longer, capped at MaxInterval.
func (p retryPolicy) backoff(retry int, retryAfter time.Duration) time.Duration {
	wait := float64(p.cfg.InitialInterval) * math.Pow(p.cfg.Multiplier, float64(retry-1))
	if limit := float64(p.cfg.MaxInterval); limit > 0 && wait > limit {
		wait = limit
	}

	wait += wait * p.cfg.JitterFactor * (rand.Float64()*2 - 1) //nolint:gosec // jitter only

	d := time.Duration(wait)
	if retryAfter > d {
		d = retryAfter
	}

	if p.cfg.MaxInterval > 0 && d > p.cfg.MaxInterval {
		d = p.cfg.MaxInterval
	}

	return d
}

// retryableStatus lists the statuses a payment gateway uses for transient
// trouble. 4xx other than 429 are answers, not failures.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date.
func parseRetryAfter(header string, now time.Time) time.Duration {
	if header == "" {
		return 0
	}

	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(header); err == nil && at.After(now) {
		return at.Sub(now)
	}

	return 0
}

// isRetryableError reports transport failures worth another attempt.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

// replayable reports whether req may be sent again. Safe methods always
// may; anything else needs an Idempotency-Key.
func replayable(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return req.Header.Get(HeaderIdempotencyKey) != ""
	}
}

// rewindBody resets the request body before a retry.
func rewindBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}

	if req.GetBody == nil {
		return ErrNotReplayable
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewinding request body: %w", err)
	}

	req.Body = body

	return nil
}
