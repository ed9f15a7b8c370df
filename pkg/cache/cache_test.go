package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProduct struct {
	ID    string  `json:"id"`
	Loose float64 `json:"loose"`
}

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client), mr
}

func TestProductRoundTripAndExpiry(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetProduct(ctx, "p1", cachedProduct{ID: "p1", Loose: 12.5}, time.Minute))

	var got cachedProduct
	require.NoError(t, svc.GetProduct(ctx, "p1", &got))
	assert.Equal(t, 12.5, got.Loose)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, svc.GetProduct(ctx, "p1", &got), ErrMiss)
}

func TestNilClientAlwaysMisses(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	assert.False(t, svc.IsAvailable())
	assert.NoError(t, svc.SetSearch(ctx, "fp", []string{"a"}, 0))

	var out []string
	assert.ErrorIs(t, svc.GetSearch(ctx, "fp", &out), ErrMiss)

	revoked, err := svc.IsTokenRevoked(ctx, "jti")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	revoked, err := svc.IsTokenRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.RevokeToken(ctx, "abc", time.Minute))
	revoked, err = svc.IsTokenRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSearchFingerprintIsStable(t *testing.T) {
	a := SearchFingerprint("mario", "Nintendo Switch", "", "")
	b := SearchFingerprint("mario", "Nintendo Switch", "", "")
	c := SearchFingerprint("mario", "", "Nintendo Switch", "")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}
