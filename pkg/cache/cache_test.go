package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = mc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err := mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Minute))
	time.Sleep(time.Millisecond)
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), time.Minute))

	assert.Equal(t, 2, mc.Len())
	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "backend:/api/a:1", []byte("1"), time.Minute))
	require.NoError(t, mc.Set(ctx, "backend:/api/b:2", []byte("2"), time.Minute))
	require.NoError(t, mc.Set(ctx, "other", []byte("3"), time.Minute))

	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("backend:")))
	assert.Equal(t, 1, mc.Len())
}

func TestLayeredCacheFallsBackToL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	require.NoError(t, l2.Set(ctx, "k", []byte("from-l2"), time.Minute))

	l1 := NewMemoryCache()
	lc := NewLayeredCache(l1, l2, time.Minute)
	defer lc.Close()

	got, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "from-l2", string(got))

	promoted, err := l1.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "from-l2", string(promoted))
}

func TestLayeredCacheMemoryOnly(t *testing.T) {
	ctx := context.Background()
	lc := NewLayeredCache(NewMemoryCache(), nil, time.Minute)
	defer lc.Close()

	_, err := lc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, SetJSON(ctx, lc, "k", map[string]int{"a": 1}, time.Minute))
	var out map[string]int
	require.NoError(t, GetJSON(ctx, lc, "k", &out))
	assert.Equal(t, 1, out["a"])
}

func TestRequestKeyIsOrderIndependent(t *testing.T) {
	a := url.Values{}
	a.Set("symbol", "BTCUSDT")
	a.Set("interval", "1m")
	b := url.Values{}
	b.Set("interval", "1m")
	b.Set("symbol", "BTCUSDT")

	assert.Equal(t, RequestKey("backend", "/api/market/klines", a), RequestKey("backend", "/api/market/klines", b))
	b.Set("interval", "5m")
	assert.NotEqual(t, RequestKey("backend", "/api/market/klines", a), RequestKey("backend", "/api/market/klines", b))
}
