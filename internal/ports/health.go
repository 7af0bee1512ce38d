package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// DefaultCheckTimeout bounds one check unless WithCheckTimeout says otherwise.
const DefaultCheckTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is usable. The library store
// and the payment gateway register one at startup.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// Optional is implemented by checkers whose failure leaves the service
// usable. Checkouts and returns never touch the payment gateway, so a
// gateway outage degrades the service instead of taking it out of rotation.
type Optional interface {
	Optional() bool
}

// HealthRegistry runs every registered check on demand.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the state of one check or of the whole service.
type HealthStatus string

const (
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded means only optional checks failed.
	HealthStatusDegraded HealthStatus = "degraded"

	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is one run of every check, keyed by checker name.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// Ready reports whether the service should take traffic.
func (r *HealthResult) Ready() bool {
	return r.Status != HealthStatusUnhealthy
}

type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Optional bool          `json:"optional,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is safe for concurrent use.
type DefaultHealthRegistry struct {
	mu           sync.RWMutex
	checkers     []HealthChecker
	checkTimeout time.Duration
	now          func() time.Time
}

type RegistryOption func(*DefaultHealthRegistry)

// WithCheckTimeout bounds each check. Non-positive values keep the default.
func WithCheckTimeout(d time.Duration) RegistryOption {
	return func(r *DefaultHealthRegistry) {
		if d > 0 {
			r.checkTimeout = d
		}
	}
}

func NewHealthRegistry(opts ...RegistryOption) *DefaultHealthRegistry {
	r := &DefaultHealthRegistry{
		checkers:     make([]HealthChecker, 0, 2),
		checkTimeout: DefaultCheckTimeout,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs the checks concurrently, each under its own timeout. A
// failed required check makes the service unhealthy; failed optional checks
// only degrade it.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Go(func() {
			results[i] = r.run(ctx, c)
		})
	}

	wg.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: r.now(),
	}

	for i, c := range checkers {
		res := results[i]
		out.Checks[c.Name()] = res

		switch {
		case res.Status == HealthStatusHealthy:
		case res.Optional:
			if out.Status == HealthStatusHealthy {
				out.Status = HealthStatusDegraded
			}
		default:
			out.Status = HealthStatusUnhealthy
		}
	}

	return out
}

func (r *DefaultHealthRegistry) run(ctx context.Context, c HealthChecker) *CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, r.checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.Check(checkCtx)

	res := &CheckResult{
		Status:   HealthStatusHealthy,
		Optional: isOptional(c),
		Duration: time.Since(start),
	}

	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Message = err.Error()
	}

	return res
}

func isOptional(c HealthChecker) bool {
	o, ok := c.(Optional)

	return ok && o.Optional()
}
