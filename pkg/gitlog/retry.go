package gitlog

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/revgraph/pkg/cache"
)

// transientError marks a git failure that is worth retrying, such as a
// ref or index lock held by a concurrent git process.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	return errors.As(err, new(*transientError))
}

// retry executes fn up to attempts times, doubling delay after each
// transient failure. Other errors are returned immediately.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return cache.Retry(ctx, attempts, delay, isTransient, fn)
}
