package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/config"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteConfig(baseURL string) config.PricingConfig {
	return config.PricingConfig{
		APIToken: "secret-token",
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
		Breaker: config.BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 3,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRemoteSearchMapsAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "secret-token", q.Get("t"))
		assert.Equal(t, "chrono", q.Get("q"))
		assert.Equal(t, "RPG", q.Get("genre"))
		assert.Equal(t, "10", q.Get("price_min"))
		assert.Empty(t, q.Get("platform"))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"products": []map[string]interface{}{
				{"id": "1", "name": "Chrono Trigger", "platform": "SNES", "genre": "RPG", "image_url": "http://img/1", "loose_price": 120.5, "cib_price": 300.0},
				{"id": "2", "name": "Chrono Cross", "platform": "PS1", "genre": "RPG", "loose_price": 5.0},
				{"id": "3", "name": "Chrono Sampler", "platform": "PS1", "genre": "RPG"},
			},
		})
	}))
	defer srv.Close()

	client := New(remoteConfig(srv.URL))
	products, err := client.Search(context.Background(), "chrono", domain.SearchFilters{Genre: "RPG", PriceMin: domain.Float(10)})
	require.NoError(t, err)

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "Chrono Trigger", p.Name)
	assert.Equal(t, "http://img/1", p.ImageURL)
	assert.Equal(t, 120.5, *p.PriceLoose)
	assert.Equal(t, 300.0, *p.PriceCIB)
	assert.Nil(t, p.PriceNew)
}

func TestRemoteSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "bare" {
			writeJSON(w, http.StatusOK, map[string]interface{}{"status": "error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "error",
			"errors": []string{"invalid token", "quota exceeded"},
		})
	}))
	defer srv.Close()

	client := New(remoteConfig(srv.URL))

	_, err := client.Search(context.Background(), "x", domain.SearchFilters{})
	var lookupErr *common.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "invalid token, quota exceeded", lookupErr.Error())

	_, err = client.Search(context.Background(), "bare", domain.SearchFilters{})
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, msgSearchFailed, lookupErr.Error())
}

func TestRemoteGetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product", r.URL.Path)
		switch r.URL.Query().Get("id") {
		case "42":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status":  "success",
				"product": map[string]interface{}{"id": "42", "name": "Metroid", "platform": "NES", "new_price": 999.0, "upc": "111", "asin": "B0X"},
			})
		case "gone":
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"status": "error", "errors": []string{"no such product"}})
		case "unknown":
			writeJSON(w, http.StatusOK, map[string]interface{}{"status": "error", "errors": []string{"Invalid id"}})
		case "forbidden":
			writeJSON(w, http.StatusForbidden, map[string]interface{}{"status": "error", "errors": []string{"bad token"}})
		default:
			writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success"})
		}
	}))
	defer srv.Close()

	client := New(remoteConfig(srv.URL))
	ctx := context.Background()

	p, err := client.GetByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Metroid", p.Name)
	assert.Equal(t, "111", p.UPC)
	assert.Equal(t, 999.0, *p.PriceNew)

	_, err = client.GetByID(ctx, "gone")
	assert.ErrorIs(t, err, common.ErrProductNotFound)
	assert.Equal(t, "no such product", err.Error())

	_, err = client.GetByID(ctx, "empty")
	assert.ErrorIs(t, err, common.ErrProductNotFound)

	// a 200 envelope with an error status still means the id is unknown
	_, err = client.GetByID(ctx, "unknown")
	assert.ErrorIs(t, err, common.ErrProductNotFound)
	assert.Equal(t, "Invalid id", err.Error())

	_, err = client.GetByID(ctx, "forbidden")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrProductNotFound)
}

func TestRemoteBatchFailsAsAWhole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "bad" {
			writeJSON(w, http.StatusOK, map[string]interface{}{"status": "error", "errors": []string{"bad id"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"product": map[string]interface{}{"id": id, "name": "Game " + id},
		})
	}))
	defer srv.Close()

	client := New(remoteConfig(srv.URL))

	products, err := client.GetBatch(context.Background(), []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Game 1", "Game 2", "Game 3"}, []string{products[0].Name, products[1].Name, products[2].Name})

	products, err = client.GetBatch(context.Background(), []string{"1", "bad", "3"})
	assert.Nil(t, products)
	var lookupErr *common.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "bad id", lookupErr.Message)
}

func TestRemoteBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(remoteConfig(srv.URL))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.GetByID(ctx, "1")
		require.Error(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())

	_, err := client.GetByID(ctx, "1")
	var lookupErr *common.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, int32(3), hits.Load(), "open breaker must not reach the server")
	assert.False(t, lookupErr.NotFound)
}

func TestRemoteHistoryIsSynthetic(t *testing.T) {
	client := New(remoteConfig("http://127.0.0.1:1"))
	points, err := client.GetPriceHistory(context.Background(), "1", 3)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}
