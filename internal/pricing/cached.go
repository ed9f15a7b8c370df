package pricing

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/pkg/cache"
	"github.com/colexalia/colexalia-backend/pkg/logger"
)

// cachedClient decorates a Client with Redis caching of products and search results.
// Price history is never cached.
type cachedClient struct {
	next  Client
	cache cache.Service
	ttl   time.Duration
}

// NewCachedClient wraps next with a read-through cache. It returns next unchanged when
// the cache is unavailable or ttl is not positive.
func NewCachedClient(next Client, c cache.Service, ttl time.Duration) Client {
	if c == nil || !c.IsAvailable() || ttl <= 0 {
		return next
	}
	return &cachedClient{next: next, cache: c, ttl: ttl}
}

func (c *cachedClient) Simulated() bool { return c.next.Simulated() }

func (c *cachedClient) Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.Product, error) {
	fp := cache.SearchFingerprint(query, filters.Platform, filters.Genre, floatKey(filters.PriceMin), floatKey(filters.PriceMax))

	var cached []domain.Product
	if err := c.cache.GetSearch(ctx, fp, &cached); err == nil {
		observeLookup("search", sourceCache, nil)
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.GetLogger().Warn().Err(err).Msg("search cache read failed")
	}

	products, err := c.next.Search(ctx, query, filters)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetSearch(ctx, fp, products, c.ttl); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("search cache write failed")
	}
	return products, nil
}

func (c *cachedClient) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var cached domain.Product
	if err := c.cache.GetProduct(ctx, id, &cached); err == nil {
		observeLookup("get", sourceCache, nil)
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.GetLogger().Warn().Err(err).Str("product_id", id).Msg("product cache read failed")
	}

	p, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetProduct(ctx, id, p, c.ttl); err != nil {
		logger.GetLogger().Warn().Err(err).Str("product_id", id).Msg("product cache write failed")
	}
	return p, nil
}

func (c *cachedClient) GetBatch(ctx context.Context, ids []string) ([]domain.Product, error) {
	return getBatch(ctx, ids, c.GetByID)
}

func (c *cachedClient) GetPriceHistory(ctx context.Context, id string, months int) ([]domain.PricePoint, error) {
	return c.next.GetPriceHistory(ctx, id, months)
}

func floatKey(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
