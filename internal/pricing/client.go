// Package pricing looks up second-hand game prices from the PriceCharting API,
// or synthesizes plausible records when no API token is configured.
package pricing

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/colexalia/colexalia-backend/internal/config"
	"github.com/colexalia/colexalia-backend/internal/domain"
)

// DefaultHistoryMonths is used when GetPriceHistory is called with months <= 0
const DefaultHistoryMonths = 12

// Client is the price lookup surface used by handlers and stores.
type Client interface {
	// Search returns products matching query; every result satisfies filters.
	Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.Product, error)
	// GetByID returns one product. Unknown ids fail with an error matching common.ErrProductNotFound.
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetBatch looks ids up concurrently. Any failure fails the whole batch.
	GetBatch(ctx context.Context, ids []string) ([]domain.Product, error)
	// GetPriceHistory returns a synthetic monthly series, oldest first, ending at the current month.
	GetPriceHistory(ctx context.Context, id string, months int) ([]domain.PricePoint, error)
	// Simulated reports whether results are synthesized instead of fetched.
	Simulated() bool
}

type options struct {
	httpClient *http.Client
	rnd        *rand.Rand
	now        func() time.Time
}

// Option customizes a Client
type Option func(*options)

// WithHTTPClient overrides the HTTP client used for the remote API
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRand sets the random source of the synthetic generator
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rnd = r }
}

// WithClock sets the clock used for history dates and simulated ids
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New returns the remote client when an API token is configured and the simulator otherwise.
func New(cfg config.PricingConfig, opts ...Option) Client {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	gen := newGenerator(o.rnd, o.now)

	if cfg.APIToken == "" {
		return newSimulatedClient(gen)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return newRemoteClient(cfg, httpClient, gen)
}
