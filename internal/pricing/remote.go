package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/config"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	msgSearchFailed    = "product search failed"
	msgProductNotFound = "product not found"
	maxResponseBytes   = 4 << 20
)

// apiProduct PriceCharting 상품 응답
type apiProduct struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Platform    string   `json:"platform"`
	ImageURL    string   `json:"image_url"`
	LoosePrice  *float64 `json:"loose_price"`
	CIBPrice    *float64 `json:"cib_price"`
	NewPrice    *float64 `json:"new_price"`
	ReleaseDate string   `json:"release_date"`
	UPC         string   `json:"upc"`
	ASIN        string   `json:"asin"`
	Genre       string   `json:"genre"`
}

func (p apiProduct) toDomain() domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Platform:    p.Platform,
		ImageURL:    p.ImageURL,
		PriceLoose:  p.LoosePrice,
		PriceCIB:    p.CIBPrice,
		PriceNew:    p.NewPrice,
		ReleaseDate: p.ReleaseDate,
		UPC:         p.UPC,
		ASIN:        p.ASIN,
		Genre:       p.Genre,
	}
}

type apiResponse struct {
	Status   string       `json:"status"`
	Products []apiProduct `json:"products"`
	Product  *apiProduct  `json:"product"`
	Errors   []string     `json:"errors"`
}

type fetchResult struct {
	statusCode int
	body       []byte
}

// remoteClient talks to the PriceCharting API through a circuit breaker.
type remoteClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[fetchResult]
	limiter    *rate.Limiter
	gen        *generator
}

func newRemoteClient(cfg config.PricingConfig, httpClient *http.Client, gen *generator) *remoteClient {
	settings := gobreaker.Settings{
		Name:        "pricecharting",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			threshold := cfg.Breaker.FailureThreshold
			if threshold == 0 {
				threshold = 5
			}
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.GetLogger().Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			breakerState.Set(stateToFloat(to))
		},
	}
	breakerState.Set(0)

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &remoteClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.APIToken,
		httpClient: httpClient,
		breaker:    gobreaker.NewCircuitBreaker[fetchResult](settings),
		limiter:    limiter,
		gen:        gen,
	}
}

func (c *remoteClient) Simulated() bool { return false }

// Search GET /products?t=&q=[&platform=][&genre=][&price_min=][&price_max=]
func (c *remoteClient) Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("q", query)
	if filters.Platform != "" {
		params.Set("platform", filters.Platform)
	}
	if filters.Genre != "" {
		params.Set("genre", filters.Genre)
	}
	if filters.PriceMin != nil {
		params.Set("price_min", strconv.FormatFloat(*filters.PriceMin, 'f', -1, 64))
	}
	if filters.PriceMax != nil {
		params.Set("price_max", strconv.FormatFloat(*filters.PriceMax, 'f', -1, 64))
	}

	resp, _, err := c.fetch(ctx, "search", "/products", params, msgSearchFailed)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, p.toDomain())
	}
	return filterProducts(products, filters), nil
}

// GetByID GET /product?t=&id=
func (c *remoteClient) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("id", id)

	resp, statusCode, err := c.fetch(ctx, "get", "/product", params, msgProductNotFound)
	if err != nil {
		var lookupErr *common.LookupError
		if errors.As(err, &lookupErr) && unknownProduct(statusCode, lookupErr) {
			lookupErr.NotFound = true
		}
		return nil, err
	}
	if resp.Product == nil {
		return nil, &common.LookupError{Op: "get", Message: msgProductNotFound, NotFound: true}
	}

	p := resp.Product.toDomain()
	return &p, nil
}

// unknownProduct reports whether a failed lookup means the id does not exist: an HTTP 404, or a
// 200 whose envelope carries an error status instead of a product.
func unknownProduct(statusCode int, err *common.LookupError) bool {
	switch statusCode {
	case http.StatusNotFound:
		return true
	case http.StatusOK:
		return err.Err == nil
	}
	return false
}

func (c *remoteClient) GetBatch(ctx context.Context, ids []string) ([]domain.Product, error) {
	return getBatch(ctx, ids, c.GetByID)
}

// GetPriceHistory is synthetic: the API has no history endpoint.
func (c *remoteClient) GetPriceHistory(ctx context.Context, _ string, months int) ([]domain.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.gen.history(months), nil
}

// fetch performs one GET and decodes the envelope. Any failure becomes a *common.LookupError
// carrying the provider's joined error list or fallback.
func (c *remoteClient) fetch(ctx context.Context, op, path string, params url.Values, fallback string) (*apiResponse, int, error) {
	resp, statusCode, err := c.do(ctx, path, params)
	observeLookup(op, sourceRemote, err)
	if err != nil {
		logger.GetLogger().Error().Err(err).Str("op", op).Str("path", path).Msg("price lookup failed")
		return nil, statusCode, &common.LookupError{Op: op, Message: fallback, Err: err}
	}

	if resp.Status != "success" {
		msg := fallback
		if len(resp.Errors) > 0 {
			msg = strings.Join(resp.Errors, ", ")
		}
		logger.GetLogger().Warn().Str("op", op).Str("status", resp.Status).Str("message", msg).Msg("price lookup rejected")
		return nil, statusCode, &common.LookupError{Op: op, Message: msg}
	}
	return resp, statusCode, nil
}

func (c *remoteClient) do(ctx context.Context, path string, params url.Values) (*apiResponse, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	params.Set("t", c.token)
	endpoint := c.baseURL + path + "?" + params.Encode()

	result, err := c.breaker.Execute(func() (fetchResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return fetchResult{}, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.httpClient.Do(req)
		if err != nil {
			return fetchResult{}, err
		}
		defer res.Body.Close()

		body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
		if err != nil {
			return fetchResult{}, fmt.Errorf("read body: %w", err)
		}
		// 5xx trips the breaker; 4xx bodies still carry the provider's errors
		if res.StatusCode >= 500 {
			return fetchResult{}, fmt.Errorf("server error %d", res.StatusCode)
		}
		return fetchResult{statusCode: res.StatusCode, body: body}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	var resp apiResponse
	if err := json.Unmarshal(result.body, &resp); err != nil {
		return nil, result.statusCode, fmt.Errorf("decode response (status %d): %w", result.statusCode, err)
	}
	return &resp, result.statusCode, nil
}
