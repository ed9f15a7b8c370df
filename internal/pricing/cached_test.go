package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Client ---

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.Product, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockClient) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockClient) GetBatch(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockClient) GetPriceHistory(ctx context.Context, id string, months int) ([]domain.PricePoint, error) {
	args := m.Called(ctx, id, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricePoint), args.Error(1)
}

func (m *mockClient) Simulated() bool {
	return m.Called().Bool(0)
}

func newCacheService(t *testing.T) cache.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewService(rdb)
}

func TestCachedClientGetByIDHitsUpstreamOnce(t *testing.T) {
	upstream := new(mockClient)
	upstream.On("GetByID", mock.Anything, "p1").
		Return(&domain.Product{ID: "p1", Name: "Halo", PriceLoose: domain.Float(9.5)}, nil).Once()

	client := NewCachedClient(upstream, newCacheService(t), time.Minute)
	ctx := context.Background()

	first, err := client.GetByID(ctx, "p1")
	require.NoError(t, err)
	second, err := client.GetByID(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	upstream.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestCachedClientDoesNotCacheErrors(t *testing.T) {
	upstream := new(mockClient)
	notFound := &common.LookupError{Op: "get", Message: "product not found", NotFound: true}
	upstream.On("GetByID", mock.Anything, "missing").Return(nil, notFound).Twice()

	client := NewCachedClient(upstream, newCacheService(t), time.Minute)

	_, err := client.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrProductNotFound)
	_, err = client.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrProductNotFound)
	upstream.AssertExpectations(t)
}

func TestCachedClientSearchKeyedByFilters(t *testing.T) {
	upstream := new(mockClient)
	all := domain.SearchFilters{}
	ps5 := domain.SearchFilters{Platform: "PlayStation 5"}
	upstream.On("Search", mock.Anything, "fifa", all).Return([]domain.Product{{ID: "a"}, {ID: "b"}}, nil).Once()
	upstream.On("Search", mock.Anything, "fifa", ps5).Return([]domain.Product{{ID: "b"}}, nil).Once()

	client := NewCachedClient(upstream, newCacheService(t), time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := client.Search(ctx, "fifa", all)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = client.Search(ctx, "fifa", ps5)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	upstream.AssertExpectations(t)
}

func TestCachedClientNeverCachesHistory(t *testing.T) {
	upstream := new(mockClient)
	upstream.On("GetPriceHistory", mock.Anything, "p1", 3).Return([]domain.PricePoint{{Date: "2026-01-01"}}, nil).Twice()

	client := NewCachedClient(upstream, newCacheService(t), time.Minute)
	for i := 0; i < 2; i++ {
		_, err := client.GetPriceHistory(context.Background(), "p1", 3)
		require.NoError(t, err)
	}
	upstream.AssertExpectations(t)
}

func TestNewCachedClientPassThrough(t *testing.T) {
	upstream := new(mockClient)
	assert.Same(t, Client(upstream), NewCachedClient(upstream, cache.NewService(nil), time.Minute))
	assert.Same(t, Client(upstream), NewCachedClient(upstream, newCacheService(t), 0))
}
