// Package reqctx provides request-scoped state for application services:
// memoized reads and staged writes with compensation.
//
// # Memoized reads
//
// Several steps of one operation often need the same row. Fetch caches the
// value under a key for the lifetime of the RequestContext only; nothing is
// shared between requests.
//
//	book, err := reqctx.Fetch(ctx, "book:42", func(ctx context.Context) (*domain.Book, error) {
//	    return store.GetBookByID(ctx, 42)
//	})
//
// # Staged writes
//
// The library store offers atomic single-row writes and no transactions.
// Operations that touch two rows stage each write as an Action with a
// compensating Rollback:
//
//	rc := reqctx.New(ctx)
//	_ = rc.AddAction(reqctx.NewStep("decrement availability", take, giveBack))
//	_ = rc.AddAction(reqctx.NewStep("insert borrow record", insert, nil))
//	if err := rc.Commit(ctx); err != nil {
//	    // executed steps were compensated in reverse order
//	}
package reqctx
