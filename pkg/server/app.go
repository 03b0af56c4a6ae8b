package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BotDash/internal/service/ratelimit"
	"BotDash/internal/usecase"
	"BotDash/pkg/config"
	xhttp "BotDash/pkg/http"
	applogger "BotDash/pkg/logger"
)

// limiterIdle is how long an unused per-client bucket is kept.
const limiterIdle = 10 * time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	hub        *usecase.SessionHub
	limiter    *ratelimit.Limiter
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	hub *usecase.SessionHub,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		hub:        hub,
		limiter:    limiter,
	}
}

// Hub exposes the session hub for one-shot commands.
func (a *App) Hub() *usecase.SessionHub { return a.hub }

// Run starts the HTTP server and the session reaper and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with the shutdown trigger supplied by the caller.
func (a *App) RunContext(ctx context.Context) error {
	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		a.hub.Run(bg, a.cfg.Sessions.ReapInterval)
	}()
	go a.pruneLimiter(bg)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("dashboard started",
		applogger.String("backend", a.cfg.Backend.BaseURL),
		applogger.String("symbol", a.cfg.Dashboard.Symbol),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
		applogger.Bool("cache", a.cfg.Cache.Enabled),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	cancel()
	<-reaperDone
	a.log.RemoveCollector()
	a.log.Info("shutdown complete")
	return nil
}

func (a *App) pruneLimiter(ctx context.Context) {
	t := time.NewTicker(limiterIdle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Prune(limiterIdle); n > 0 {
				a.log.Debug("pruned rate limit buckets", applogger.Int("count", n))
			}
		}
	}
}
