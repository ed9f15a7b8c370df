package pricing

import (
	"context"

	"github.com/colexalia/colexalia-backend/internal/domain"
)

// simulatedClient serves synthetic data when no API token is configured.
type simulatedClient struct {
	gen *generator
}

func newSimulatedClient(gen *generator) *simulatedClient {
	return &simulatedClient{gen: gen}
}

func (c *simulatedClient) Simulated() bool { return true }

func (c *simulatedClient) Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	products := filterProducts(c.gen.searchCandidates(query), filters)
	observeLookup("search", sourceSimulated, nil)
	return products, nil
}

func (c *simulatedClient) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	observeLookup("get", sourceSimulated, nil)
	return c.gen.detail(id), nil
}

func (c *simulatedClient) GetBatch(ctx context.Context, ids []string) ([]domain.Product, error) {
	return getBatch(ctx, ids, c.GetByID)
}

func (c *simulatedClient) GetPriceHistory(ctx context.Context, _ string, months int) ([]domain.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.gen.history(months), nil
}
