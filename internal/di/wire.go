//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"BotDash/internal/domain/repository"
	"BotDash/internal/handler/api"
	"BotDash/internal/services/backend"
	"BotDash/internal/usecase"
	"BotDash/pkg/config"
	"BotDash/pkg/metrics"
	"BotDash/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideEventPublisher,
		ProvideGateway,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),
		wire.Bind(new(repository.DataSource), new(*backend.Gateway)),
		wire.Bind(new(usecase.URLBuilder), new(*backend.Gateway)),

		// Use cases
		ProvideFetchOrchestrator,
		wire.Bind(new(usecase.Fetcher), new(*usecase.DataFetchOrchestrator)),
		ProvideControllerFactory,
		ProvideFilterStateManager,
		ProvideSessionHub,
		ProvideBanditService,
		wire.Bind(new(api.Dashboards), new(*usecase.SessionHub)),
		wire.Bind(new(api.BanditPanels), new(*usecase.BanditPanelService)),

		// Application server
		ProvideRateLimiter,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
