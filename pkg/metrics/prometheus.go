package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the dashboard metrics sink using Prometheus.
type Recorder struct {
	cycles         *prometheus.CounterVec
	cycleDuration  *prometheus.HistogramVec
	fetchDuration  *prometheus.HistogramVec
	fetchErrors    *prometheus.CounterVec
	activeSessions prometheus.Gauge
	breakerState   *prometheus.GaugeVec
	cacheLookups   *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec
}

// New creates a recorder registered against reg; nil means the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botdash_cycles_total",
				Help: "Dashboard fetch-compose-render cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "botdash_cycle_duration_seconds",
				Help:    "Duration of a full dashboard cycle",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "botdash_backend_fetch_seconds",
				Help:    "Duration of individual backend fetches by slot",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"slot"},
		),
		fetchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botdash_backend_fetch_errors_total",
				Help: "Failed backend fetches by slot",
			},
			[]string{"slot"},
		),
		activeSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "botdash_active_sessions",
				Help: "Dashboard sessions currently open",
			},
		),
		breakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "botdash_backend_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botdash_backend_cache_lookups_total",
				Help: "Backend response cache lookups by result",
			},
			[]string{"result"},
		),
		rateLimited: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botdash_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// ObserveCycle records one dashboard cycle outcome: ok, error or superseded.
func (r *Recorder) ObserveCycle(outcome string, d time.Duration) {
	r.cycles.WithLabelValues(outcome).Inc()
	r.cycleDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveFetch records one backend fetch.
func (r *Recorder) ObserveFetch(slot string, d time.Duration, err error) {
	r.fetchDuration.WithLabelValues(slot).Observe(d.Seconds())
	if err != nil {
		r.fetchErrors.WithLabelValues(slot).Inc()
	}
}

func (r *Recorder) SetActiveSessions(n int) {
	r.activeSessions.Set(float64(n))
}

func (r *Recorder) SetBreakerState(name string, state int) {
	r.breakerState.WithLabelValues(name).Set(float64(state))
}

func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordRateLimited(route string) {
	r.rateLimited.WithLabelValues(route).Inc()
}
