package parallel

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// DefaultLimit caps concurrent calls when the caller passes a non-positive limit.
const DefaultLimit = 10

// ForEach calls fn for every item with at most limit calls in flight.
// Every item is attempted even if some calls fail; the failures are combined
// in item order. Cancellation is left to fn through ctx.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) error) error {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		group errgroup.Group
		mu    sync.Mutex
		errs  = make([]error, len(items))
	)

	group.SetLimit(limit)

	for i, item := range items {
		group.Go(func() error {
			err := fn(ctx, item)

			mu.Lock()
			errs[i] = err
			mu.Unlock()

			return nil
		})
	}

	_ = group.Wait()

	return multierr.Combine(errs...)
}
