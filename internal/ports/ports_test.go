package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name     string
	err      error
	optional bool
}

func (s *stubChecker) Name() string                { return s.name }
func (s *stubChecker) Check(context.Context) error { return s.err }
func (s *stubChecker) Optional() bool              { return s.optional }

// slowChecker takes 100ms unless its context ends first.
type slowChecker struct{ name string }

func (c *slowChecker) Name() string { return c.name }

func (c *slowChecker) Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func store(err error) *stubChecker {
	return &stubChecker{name: "library-store", err: err}
}

func gateway(err error) *stubChecker {
	return &stubChecker{name: "payment-gateway", err: err, optional: true}
}

func TestRegister(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(store(nil)))
	require.NoError(t, registry.Register(gateway(nil)))

	err := registry.Register(&stubChecker{name: "library-store"})
	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "library-store")
	assert.Len(t, registry.checkers, 2)
}

func TestCheckAll_Status(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name     string
		checkers []HealthChecker
		want     HealthStatus
		ready    bool
	}{
		{name: "nothing registered", want: HealthStatusHealthy, ready: true},
		{
			name:     "all pass",
			checkers: []HealthChecker{store(nil), gateway(nil)},
			want:     HealthStatusHealthy,
			ready:    true,
		},
		{
			name:     "gateway down",
			checkers: []HealthChecker{store(nil), gateway(down)},
			want:     HealthStatusDegraded,
			ready:    true,
		},
		{
			name:     "store down",
			checkers: []HealthChecker{store(down), gateway(nil)},
			want:     HealthStatusUnhealthy,
		},
		{
			name:     "both down",
			checkers: []HealthChecker{gateway(down), store(down)},
			want:     HealthStatusUnhealthy,
		},
		{
			name:     "checker without Optional is required",
			checkers: []HealthChecker{&slowChecker{name: "telemetry"}},
			want:     HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry(WithCheckTimeout(10 * time.Millisecond))
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.ready, result.Ready())
			assert.Len(t, result.Checks, len(tt.checkers))
		})
	}
}

func TestCheckAll_Details(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	registry := NewHealthRegistry()
	registry.now = func() time.Time { return fixed }

	require.NoError(t, registry.Register(store(nil)))
	require.NoError(t, registry.Register(gateway(errors.New("circuit breaker open"))))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, fixed, result.Timestamp)

	storeRes := result.Checks["library-store"]
	assert.Equal(t, HealthStatusHealthy, storeRes.Status)
	assert.False(t, storeRes.Optional)
	assert.Empty(t, storeRes.Message)

	gatewayRes := result.Checks["payment-gateway"]
	assert.Equal(t, HealthStatusUnhealthy, gatewayRes.Status)
	assert.True(t, gatewayRes.Optional)
	assert.Equal(t, "circuit breaker open", gatewayRes.Message)
}

func TestCheckAll_Timeouts(t *testing.T) {
	t.Run("caller canceled", func(t *testing.T) {
		registry := NewHealthRegistry()
		require.NoError(t, registry.Register(&slowChecker{name: "library-store"}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := registry.CheckAll(ctx)

		assert.Equal(t, HealthStatusUnhealthy, result.Status)
		assert.Contains(t, result.Checks["library-store"].Message, "context canceled")
	})

	t.Run("per check deadline", func(t *testing.T) {
		registry := NewHealthRegistry(WithCheckTimeout(10 * time.Millisecond))
		require.NoError(t, registry.Register(&slowChecker{name: "library-store"}))

		result := registry.CheckAll(context.Background())

		assert.Contains(t, result.Checks["library-store"].Message, "deadline exceeded")
	})

	t.Run("non-positive timeout keeps default", func(t *testing.T) {
		registry := NewHealthRegistry(WithCheckTimeout(0))

		assert.Equal(t, DefaultCheckTimeout, registry.checkTimeout)
	})
}
