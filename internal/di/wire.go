//go:build wireinject
// +build wireinject

package di

import (
	"TempQuant/pkg/config"
	"TempQuant/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Exchange access
		ProvideSigner,
		ProvideMarketProvider,
		ProvideExchange,
		ProvideStream,

		// Weather providers
		ProvideForecastProvider,
		ProvideEnsembleProvider,
		ProvideObservationProvider,

		// Persistence
		ProvideLedger,
		ProvideConfigStore,
		ProvideBudgetStore,
		ProvidePaperStore,
		ProvideNotifier,
		ProvideEventPublisher,

		// Use cases
		ProvideSizer,
		ProvideAnalyzer,
		ProvideBreaker,
		ProvideExecutor,
		ProvidePaperTrader,
		ProvideReconciler,
		ProvideProposalStore,
		ProvideCalibrator,
		ProvideScheduler,

		// HTTP + application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
