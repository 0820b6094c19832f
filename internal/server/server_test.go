package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rickgao/pricetrack/internal/cache"
	"github.com/rickgao/pricetrack/internal/model"
	"github.com/rickgao/pricetrack/internal/service"
	"github.com/rickgao/pricetrack/internal/store"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	st := store.NewMemory()
	btcusd := model.NewPair("btc", "usd")
	t0 := time.Now().UTC().Add(-10 * time.Minute)
	for i, price := range []float64{100, 110, 90} {
		if err := st.Append(context.Background(), model.PriceObservation{
			Pair:      btcusd,
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Price:     price,
		}); err != nil {
			t.Fatal(err)
		}
	}

	pairs := []model.TradingPair{btcusd, model.NewPair("eth", "usd")}
	svc := service.New(service.DefaultConfig(), st, cache.New(), pairs, nil)
	return New(":0", svc, nil).http.Handler
}

func TestHandleCurrent(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/prices/btc/usd/current", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Pair  string  `json:"pair"`
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Pair != "btc/usd" || resp.Price != 90 {
		t.Errorf("resp = %+v, want btc/usd @ 90", resp)
	}
}

func TestHandleHistory(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/prices/btc/usd/history", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Pair   string `json:"pair"`
		Prices []struct {
			Timestamp time.Time `json:"timestamp"`
			Price     float64   `json:"price"`
		} `json:"prices"`
		VolatilityRank int `json:"volatility_rank"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Prices) != 3 {
		t.Fatalf("len(prices) = %d, want 3", len(resp.Prices))
	}
	for i := 1; i < len(resp.Prices); i++ {
		if resp.Prices[i].Timestamp.Before(resp.Prices[i-1].Timestamp) {
			t.Errorf("prices[%d] out of order", i)
		}
	}
	if resp.VolatilityRank != 1 {
		t.Errorf("volatility_rank = %d, want 1", resp.VolatilityRank)
	}
}

func TestHandleNotFound(t *testing.T) {
	h := newTestHandler(t)

	for _, path := range []string{
		"/api/prices/doge/usd/current", // untracked
		"/api/prices/doge/usd/history",
		"/api/prices/eth/usd/current", // tracked, no data
		"/api/prices/eth/usd/history",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestHandlePairs(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pairs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Pairs []string `json:"pairs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Pairs) != 2 || resp.Pairs[0] != "btc/usd" {
		t.Errorf("pairs = %v", resp.Pairs)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStoreFailureMapsTo503(t *testing.T) {
	svc := service.New(service.DefaultConfig(), failingStore{}, cache.New(),
		[]model.TradingPair{model.NewPair("btc", "usd")}, nil)
	h := New(":0", svc, nil).http.Handler

	req := httptest.NewRequest(http.MethodGet, "/api/prices/btc/usd/current", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

type failingStore struct{}

func (failingStore) Append(context.Context, model.PriceObservation) error {
	return store.ErrUnavailable
}

func (failingStore) ReadSeries(context.Context, model.TradingPair, time.Time) ([]model.PriceObservation, error) {
	return nil, store.ErrUnavailable
}

func (failingStore) Latest(context.Context, model.TradingPair) (model.PriceObservation, error) {
	return model.PriceObservation{}, store.ErrUnavailable
}

func (failingStore) Prune(context.Context, time.Time) (int64, error) {
	return 0, store.ErrUnavailable
}
