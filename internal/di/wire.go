//go:build wireinject
// +build wireinject

package di

import (
	"FinBoard/pkg/config"
	"FinBoard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideBarStore,
		ProvideCycleStore,
		ProvideTickSink,
		ProvideTickPublisher,
		ProvideTickStream,
		ProvideBarSources,

		// Analytics engine
		ProvideEngine,
		ProvideCycleAnalyzer,
		ProvideRiskAnalyzer,

		// Use cases
		ProvideTickProcessor,
		ProvidePriceBoard,
		ProvideLogCollector,
		ProvideTickCollector,
		ProvideKafkaTicksHandler,
		ProvideCycleSyncUseCase,
		ProvideRiskMetricsUseCase,
		ProvideLatestPriceUseCase,
		ProvideDashboardUseCase,
		ProvideBarRefreshUseCase,
		ProvideJobQueue,
		ProvideCache,

		// HTTP
		ProvideDashboardHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
