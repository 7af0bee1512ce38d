package reqctx

import (
	"context"
	"fmt"
	"sync"
)

type ctxKey struct{}

// RequestContext carries memoized reads and staged writes for one operation.
type RequestContext struct {
	ctx       context.Context
	cache     sync.Map
	actions   []Action
	mu        sync.Mutex
	committed bool
}

// New creates a new RequestContext wrapping the given context.
func New(ctx context.Context) *RequestContext {
	return &RequestContext{ctx: ctx}
}

// FromContext extracts RequestContext, returns nil if not present.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}

	if rc, ok := ctx.Value(ctxKey{}).(*RequestContext); ok {
		return rc
	}

	return nil
}

// WithContext stores RequestContext in the context.
func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// Ensure returns ctx unchanged if it already carries a RequestContext,
// otherwise a child context with a fresh one.
func Ensure(ctx context.Context) (context.Context, *RequestContext) {
	if rc := FromContext(ctx); rc != nil {
		return ctx, rc
	}

	rc := New(ctx)

	return WithContext(ctx, rc), rc
}

// GetOrFetch retrieves cached value or executes fetchFn and caches result.
// Errors are not cached.
func (rc *RequestContext) GetOrFetch(key string, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	if cached, ok := rc.cache.Load(key); ok {
		return cached, nil
	}

	value, err := fetchFn(rc.ctx)
	if err != nil {
		return nil, err
	}

	actual, _ := rc.cache.LoadOrStore(key, value)

	return actual, nil
}

// Context returns the underlying context.
func (rc *RequestContext) Context() context.Context {
	return rc.ctx
}

// Fetch is the typed form of GetOrFetch. Without a RequestContext in ctx it
// simply calls fetchFn.
func Fetch[T any](ctx context.Context, key string, fetchFn func(ctx context.Context) (T, error)) (T, error) {
	rc := FromContext(ctx)
	if rc == nil {
		return fetchFn(ctx)
	}

	value, err := rc.GetOrFetch(key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: key %q holds %T", ErrUnexpectedType, key, value)
	}

	return typed, nil
}
