// Package parallel runs independent lookups concurrently.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Join runs every fn concurrently and waits for all of them. The first error
// cancels the shared context and is returned.
func Join(ctx context.Context, fns ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			return fn(gctx)
		})
	}
	return g.Wait()
}
