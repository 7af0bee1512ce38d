package reqctx

import "errors"

// ErrAlreadyCommitted is returned when trying to add actions or commit
// after the RequestContext has already been committed.
var ErrAlreadyCommitted = errors.New("request context already committed")

// ErrUnexpectedType is returned by Fetch when a cached value has a different type.
var ErrUnexpectedType = errors.New("cached value has unexpected type")
