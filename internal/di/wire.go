//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"MarketClose/pkg/config"
	"MarketClose/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisClient,
		ProvideClickHouseClient,
		ProvideCache,

		// Repositories and adapters
		ProvideQuoteSource,
		ProvideReportCache,
		ProvideSubscribers,
		ProvideArtifacts,
		ProvideTelegramClient,
		ProvideMessenger,
		ProvideMailer,
		ProvideReportPublisher,

		// Use cases
		ProvideCatalog,
		ProvideQuoteResolver,
		ProvideReportAssembler,
		ProvideRenderers,
		ProvideMarketClose,
		ProvideReportJob,
		ProvideQueue,
		ProvideDispatcher,

		// Surfaces
		ProvideBot,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
