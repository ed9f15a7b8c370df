package pricing

import (
	"context"

	"github.com/colexalia/colexalia-backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

const batchConcurrency = 8

// getBatch runs get for every id concurrently and keeps input order.
// The first error fails the batch; lookups already in flight are left to finish.
func getBatch(ctx context.Context, ids []string, get func(context.Context, string) (*domain.Product, error)) ([]domain.Product, error) {
	out := make([]domain.Product, len(ids))

	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			p, err := get(ctx, id)
			if err != nil {
				return err
			}
			out[i] = *p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
