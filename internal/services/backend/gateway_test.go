package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BotDash/pkg/cache"
	xhttp "BotDash/pkg/http"
)

type fakeObserver struct {
	hits, misses int
	states       []int
}

func (f *fakeObserver) RecordCacheLookup(hit bool) {
	if hit {
		f.hits++
	} else {
		f.misses++
	}
}

func (f *fakeObserver) SetBreakerState(_ string, state int) { f.states = append(f.states, state) }

func TestGatewayGetJSONForwardsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/market/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1500", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"value":1},{"value":2}]`))
	}))
	defer srv.Close()

	g := New(Config{BaseURL: srv.URL + "/"}, nil, nil, nil)
	var out []map[string]int
	err := g.GetJSON(context.Background(), "/api/market/klines", url.Values{"symbol": {"BTCUSDT"}, "limit": {"1500"}}, &out)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestGatewayReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := New(Config{BaseURL: srv.URL}, nil, nil, nil)
	var out []int
	err := g.GetJSON(context.Background(), "/api/reports/equity", nil, &out)
	require.Error(t, err)

	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}

func TestGatewayDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	g := New(Config{BaseURL: srv.URL}, nil, nil, nil)
	var out []int
	err := g.GetJSON(context.Background(), "/api/reports/drawdown", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode /api/reports/drawdown")
}

func TestGatewayCachesResponses(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"samples":1}`))
	}))
	defer srv.Close()

	mc := cache.NewMemoryCache()
	defer mc.Close()
	obs := &fakeObserver{}
	g := New(Config{BaseURL: srv.URL, CacheTTL: time.Minute}, mc, obs, nil)

	params := url.Values{"symbol": {"BTCUSDT"}}
	for i := 0; i < 3; i++ {
		var out map[string]int
		require.NoError(t, g.GetJSON(context.Background(), "/api/tca/slippage", params, &out))
		assert.Equal(t, 1, out["samples"])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, obs.hits)
	assert.Equal(t, 1, obs.misses)
}

func TestGatewayBreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	obs := &fakeObserver{}
	g := New(Config{BaseURL: srv.URL, BreakerFailureThreshold: 2, BreakerTimeout: time.Minute}, nil, obs, nil)

	for i := 0; i < 2; i++ {
		_, err := g.Get(context.Background(), "/api/status/overview", nil)
		require.Error(t, err)
	}
	_, err := g.Get(context.Background(), "/api/status/overview", nil)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "open", g.BreakerState())
	assert.Equal(t, []int{int(gobreaker.StateOpen)}, obs.states)
}

func TestGatewayClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	g := New(Config{BaseURL: srv.URL, BreakerFailureThreshold: 1}, nil, nil, nil)
	for i := 0; i < 3; i++ {
		_, err := g.Get(context.Background(), "/api/reports/trades", nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	assert.Equal(t, "closed", g.BreakerState())
}

func TestGatewayURL(t *testing.T) {
	g := New(Config{BaseURL: "http://backend:8080/"}, nil, nil, nil)
	assert.Equal(t, "http://backend:8080/api/reports/trades/export.csv?symbol=BTCUSDT",
		g.URL("/api/reports/trades/export.csv", url.Values{"symbol": {"BTCUSDT"}}))
}
