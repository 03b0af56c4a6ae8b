package usecase

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BotDash/internal/domain/models"
)

func newTestHub(src *fakeSource, m *fakeMetrics, ttl time.Duration) *SessionHub {
	factory := &ControllerFactory{
		Fetcher: NewDataFetchOrchestrator(src, nil, nil, OrchestratorConfig{}),
		URLs:    stubURLs{},
		Metrics: m,
	}
	filters := NewFilterStateManager("BTCUSDT", models.Interval1m, models.GroupByDay, 0)
	return NewSessionHub(factory, filters, ttl, m, nil)
}

func TestSessionHubOpenApplyClose(t *testing.T) {
	m := newFakeMetrics()
	hub := newTestHub(newFakeSource(), m, time.Hour)

	s, snap, err := hub.Open(context.Background(), url.Values{"vwap": {"true"}})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.True(t, snap.Charts.Price.HasDataset(LabelVWAP))
	assert.Equal(t, 1, hub.Len())
	assert.Equal(t, 1, m.activeSessions())

	next, err := hub.Apply(context.Background(), s.ID, url.Values{"symbol": {"ETHUSDT"}})
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", next.Symbol)
	assert.False(t, next.Charts.Price.HasDataset(LabelVWAP))
	assert.Equal(t, uint64(2), next.Generation)

	require.NoError(t, hub.Close(s.ID))
	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, 0, m.activeSessions())
	assert.Empty(t, s.Controller.ChartStates())

	_, err = hub.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, hub.Close(s.ID), ErrSessionNotFound)
}

func TestSessionHubRejectsInvalidFilter(t *testing.T) {
	hub := newTestHub(newFakeSource(), newFakeMetrics(), time.Hour)

	_, _, err := hub.Open(context.Background(), url.Values{
		"from": {"2024-03-02T00:00:00Z"},
		"to":   {"2024-03-01T00:00:00Z"},
	})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Equal(t, 0, hub.Len())
}

func TestSessionHubDiscardsFailedMount(t *testing.T) {
	src := newFakeSource()
	src.fail[PathStatus] = errors.New("unavailable")
	m := newFakeMetrics()
	hub := newTestHub(src, m, time.Hour)

	_, _, err := hub.Open(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, 0, m.activeSessions())
}

func TestSessionHubReapsIdleSessions(t *testing.T) {
	hub := newTestHub(newFakeSource(), newFakeMetrics(), time.Minute)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return clock }

	stale, _, err := hub.Open(context.Background(), nil)
	require.NoError(t, err)
	clock = clock.Add(45 * time.Second)
	fresh, _, err := hub.Open(context.Background(), nil)
	require.NoError(t, err)

	clock = clock.Add(30 * time.Second)
	assert.Equal(t, 1, hub.Reap())

	_, err = hub.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = hub.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSessionHubRunClosesOnCancel(t *testing.T) {
	hub := newTestHub(newFakeSource(), newFakeMetrics(), time.Hour)
	_, _, err := hub.Open(context.Background(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done
	assert.Equal(t, 0, hub.Len())
}

func TestSessionHubOneShotHelpers(t *testing.T) {
	hub := newTestHub(newFakeSource(), newFakeMetrics(), time.Hour)

	snap, err := hub.Snapshot(context.Background(), url.Values{"symbol": {"SOLUSDT"}})
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", snap.Symbol)
	assert.Equal(t, 0, hub.Len())

	q, err := hub.Normalize(url.Values{"anchorTs": {"2024-03-01T00:00:00Z"}})
	require.NoError(t, err)
	assert.Equal(t, "true", q.Get("anchored"))
	assert.Equal(t, "BTCUSDT", q.Get("symbol"))

	link, err := hub.ExportURL(url.Values{}, ExportSummaryCSV)
	require.NoError(t, err)
	assert.Contains(t, link, "/api/reports/summary/export.csv?")

	_, err = hub.ExportURL(url.Values{}, "xml")
	assert.Error(t, err)
}
