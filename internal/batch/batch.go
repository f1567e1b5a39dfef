// Package batch evaluates many blend selections concurrently. The engine is
// a pure function, so a batch is an embarrassingly parallel worker pool over
// one shared immutable rulebook.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fabula/internal/bible"
	"fabula/internal/blend"
)

// Run blends every selection against the same rulebook and returns results
// in input order. workers bounds concurrency; values below 1 run serially.
// The only error source is context cancellation — individual blends cannot
// fail.
func Run(ctx context.Context, rules bible.Rules, selections []blend.Selection, workers int) ([]blend.Result, error) {
	results := make([]blend.Result, len(selections))
	if len(selections) == 0 {
		return results, ctx.Err()
	}
	if workers < 1 {
		workers = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, sel := range selections {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = blend.Blend(sel, rules)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
