package di

import (
	"fmt"

	"BotDash/internal/domain/models"
	"BotDash/internal/domain/repository"
	"BotDash/internal/handler/api"
	"BotDash/internal/service/ratelimit"
	"BotDash/internal/services/backend"
	"BotDash/internal/usecase"
	"BotDash/pkg/cache"
	"BotDash/pkg/config"
	xhttp "BotDash/pkg/http"
	pkgkafka "BotDash/pkg/kafka"
	"BotDash/pkg/logger"
	"BotDash/pkg/metrics"
	"BotDash/pkg/server"
)

// ProvideLogger builds the application logger from config. Warn and error entries are
// aggregated and shipped to Kafka when a producer is configured.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Kafka.LogTopic != "" {
		l.AddCollector(&logger.CollectionConfig{Topic: cfg.Kafka.LogTopic, Publisher: producer})
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus recorder on the default registerer, which the
// server's metrics endpoint exposes.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(nil)
}

// ProvideCache builds the backend response cache: in-memory L1 with an optional Redis
// L2. It returns nil when caching is disabled.
func ProvideCache(cfg *config.Config, log *logger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}

	mem := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxItems))
	var l2 cache.Service
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			_ = mem.Close()
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		l2 = rc
		log.Info("redis cache connected", logger.String("addr", cfg.Cache.Redis.Addr))
	}

	lc := cache.NewLayeredCache(mem, l2, cfg.Cache.TTL)
	cleanup := func() {
		if err := lc.Close(); err != nil {
			log.Warn("cache close error", logger.Error(err))
		}
	}
	return lc, cleanup, nil
}

// ProvideKafkaProducer creates the cycle-event producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideEventPublisher adapts the producer to the usecase port.
func ProvideEventPublisher(p *pkgkafka.Producer) repository.EventPublisher {
	if p == nil {
		return repository.NopPublisher{}
	}
	return p
}

// ProvideGateway creates the reporting-backend gateway.
func ProvideGateway(cfg *config.Config, c cache.Service, rec *metrics.Recorder, log *logger.Logger) *backend.Gateway {
	return backend.New(backend.Config{
		BaseURL:                 cfg.Backend.BaseURL,
		Timeout:                 cfg.Backend.Timeout,
		CacheTTL:                cfg.Cache.TTL,
		BreakerMaxRequests:      cfg.Backend.Breaker.MaxRequests,
		BreakerInterval:         cfg.Backend.Breaker.Interval,
		BreakerTimeout:          cfg.Backend.Breaker.Timeout,
		BreakerFailureThreshold: cfg.Backend.Breaker.FailureThreshold,
	}, c, rec, log.With(logger.String("component", "backend")))
}

func ProvideFetchOrchestrator(src repository.DataSource, m repository.Metrics, log *logger.Logger, cfg *config.Config) *usecase.DataFetchOrchestrator {
	return usecase.NewDataFetchOrchestrator(src, m, log, usecase.OrchestratorConfig{
		CandleLimit:   cfg.Backend.CandleLimit,
		TradePageSize: cfg.Backend.TradePageSize,
	})
}

func ProvideControllerFactory(
	fetcher usecase.Fetcher,
	urls usecase.URLBuilder,
	pub repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.ControllerFactory {
	topic := ""
	if cfg.Kafka.Enabled {
		topic = cfg.Kafka.Topic
	}
	return &usecase.ControllerFactory{
		Fetcher:   fetcher,
		Composer:  usecase.NewSeriesComposer(),
		Ribbon:    usecase.NewRegimeRibbonBuilder(),
		URLs:      urls,
		Publisher: pub,
		Metrics:   m,
		Log:       log,
		Config: usecase.ControllerConfig{
			CycleTimeout: cfg.Backend.CycleTimeout,
			Topic:        topic,
		},
	}
}

func ProvideFilterStateManager(cfg *config.Config) *usecase.FilterStateManager {
	return usecase.NewFilterStateManager(
		cfg.Dashboard.Symbol,
		models.Interval(cfg.Dashboard.Interval),
		models.GroupBy(cfg.Dashboard.GroupBy),
		cfg.Dashboard.Lookback,
	)
}

func ProvideSessionHub(factory *usecase.ControllerFactory, filters *usecase.FilterStateManager, m repository.Metrics, log *logger.Logger, cfg *config.Config) *usecase.SessionHub {
	return usecase.NewSessionHub(factory, filters, cfg.Sessions.TTL, m, log)
}

func ProvideBanditService(src repository.DataSource, log *logger.Logger) *usecase.BanditPanelService {
	return usecase.NewBanditPanelService(src, log)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideHTTPServer registers the dashboard API and websocket routes behind the
// per-client rate limiter.
func ProvideHTTPServer(
	cfg *config.Config,
	log *logger.Logger,
	rec *metrics.Recorder,
	limiter *ratelimit.Limiter,
	hub api.Dashboards,
	bandit api.BanditPanels,
) *xhttp.Server {
	handlers := []xhttp.Handler{
		api.NewDashboardEchoHandler(log, hub, bandit),
		api.NewSessionsWSHandler(log, hub, cfg.Server.CORSOrigins),
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(log, handlers,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true, cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithMiddleware(ratelimit.Middleware(limiter, rec)),
	)
}

func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *xhttp.Server,
	hub *usecase.SessionHub,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, log, srv, hub, limiter)
}
