package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"BotDash/pkg/cache"
	xhttp "BotDash/pkg/http"
	"BotDash/pkg/logger"
)

const breakerName = "backend"

// Observer receives gateway-level measurements. *metrics.Recorder satisfies it.
type Observer interface {
	RecordCacheLookup(hit bool)
	SetBreakerState(name string, state int)
}

// Config tunes the gateway.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration

	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerFailureThreshold uint32
}

// Gateway is the single door to the reporting backend. GET responses go through a
// circuit breaker and, when a cache is configured, are memoised as raw bytes.
type Gateway struct {
	baseURL  string
	client   *xhttp.Client
	breaker  *gobreaker.CircuitBreaker
	cache    cache.Service
	cacheTTL time.Duration
	obs      Observer
	log      *logger.Logger
}

// New builds a gateway. c and obs may be nil.
func New(cfg Config, c cache.Service, obs Observer, log *logger.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = 5
	}
	if log == nil {
		log = logger.Nop()
	}

	g := &Gateway{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		cache:    c,
		cacheTTL: cfg.CacheTTL,
		obs:      obs,
		log:      log,
	}

	threshold := cfg.BreakerFailureThreshold
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.log.Warn("backend circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			if g.obs != nil {
				g.obs.SetBreakerState(name, int(to))
			}
		},
	})

	return g
}

// isSuccessful keeps caller mistakes and cancellations from tripping the breaker;
// only transport failures and 5xx count against the backend.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Status < http.StatusInternalServerError
	}
	return false
}

// GetJSON fetches path with params and decodes the body into dest.
func (g *Gateway) GetJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	raw, err := g.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Get returns the raw response body for path with params.
func (g *Gateway) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	key := cache.RequestKey("backend", path, params)
	if g.cache != nil {
		if raw, err := g.cache.Get(ctx, key); err == nil {
			g.observeCache(true)
			return raw, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			g.log.Debug("backend cache read failed", logger.String("path", path), logger.Error(err))
		}
		g.observeCache(false)
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		var body []byte
		err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         g.baseURL + path,
			QueryParams: params,
		}, &body)
		return body, err
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	raw := out.([]byte)

	if g.cache != nil && g.cacheTTL > 0 {
		if err := g.cache.Set(ctx, key, raw, g.cacheTTL); err != nil {
			g.log.Debug("backend cache write failed", logger.String("path", path), logger.Error(err))
		}
	}
	return raw, nil
}

// URL renders an absolute backend link, used for exports the browser opens directly.
func (g *Gateway) URL(path string, params url.Values) string {
	if len(params) == 0 {
		return g.baseURL + path
	}
	return g.baseURL + path + "?" + params.Encode()
}

// BreakerState exposes the current breaker state name (closed, half-open, open).
func (g *Gateway) BreakerState() string {
	return g.breaker.State().String()
}

func (g *Gateway) observeCache(hit bool) {
	if g.obs != nil {
		g.obs.RecordCacheLookup(hit)
	}
}
