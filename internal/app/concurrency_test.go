package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelPartialLimit_KeepsOrderAndErrors(t *testing.T) {
	errOdd := errors.New("odd")

	fns := make([]func(context.Context) (int, error), 6)
	for i := range fns {
		fns[i] = func(context.Context) (int, error) {
			if i%2 == 1 {
				return 0, errOdd
			}

			return i * 10, nil
		}
	}

	results := ParallelPartialLimit(context.Background(), 3, fns...)
	require.Len(t, results, 6)

	for i, r := range results {
		if i%2 == 1 {
			assert.ErrorIs(t, r.Err, errOdd)
			continue
		}

		require.NoError(t, r.Err)
		assert.Equal(t, i*10, r.Value)
	}
}

func TestParallelPartialLimit_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	fns := make([]func(context.Context) (struct{}, error), 10)
	for i := range fns {
		fns[i] = func(context.Context) (struct{}, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)

			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}

			time.Sleep(5 * time.Millisecond)

			return struct{}{}, nil
		}
	}

	ParallelPartialLimit(context.Background(), 2, fns...)

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestParallelPartialLimit_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ParallelPartialLimit(ctx, 0,
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
	)

	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
