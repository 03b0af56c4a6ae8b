package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					if m.GetCounter() != nil {
						return m.GetCounter().GetValue()
					}
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRecorderCountsCyclesAndFetchErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveCycle("ok", 10*time.Millisecond)
	r.ObserveCycle("ok", 20*time.Millisecond)
	r.ObserveCycle("superseded", time.Millisecond)
	r.ObserveFetch("candles", time.Millisecond, nil)
	r.ObserveFetch("candles", time.Millisecond, errors.New("boom"))
	r.SetBreakerState("backend", 2)
	r.RecordCacheLookup(true)

	assert.Equal(t, 2.0, counterValue(t, reg, "botdash_cycles_total", "outcome", "ok"))
	assert.Equal(t, 1.0, counterValue(t, reg, "botdash_cycles_total", "outcome", "superseded"))
	assert.Equal(t, 1.0, counterValue(t, reg, "botdash_backend_fetch_errors_total", "slot", "candles"))
	assert.Equal(t, 2.0, counterValue(t, reg, "botdash_backend_breaker_state", "name", "backend"))
	assert.Equal(t, 1.0, counterValue(t, reg, "botdash_backend_cache_lookups_total", "result", "hit"))
}

func TestRecordersOnSeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
