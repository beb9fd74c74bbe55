package di

import (
	"fmt"

	"TempQuant/internal/domain/repository"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/internal/handler/api"
	internalrepo "TempQuant/internal/repository"
	"TempQuant/internal/service/kalshi"
	"TempQuant/internal/service/nws"
	"TempQuant/internal/service/openmeteo"
	"TempQuant/internal/usecase"
	"TempQuant/pkg/config"
	xhttp "TempQuant/pkg/http"
	"TempQuant/pkg/logger"
	"TempQuant/pkg/metrics"
	"TempQuant/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSigner loads the exchange signing key.
func ProvideSigner(cfg *config.Config) (*kalshi.Signer, error) {
	signer, err := kalshi.NewSigner(cfg.Exchange.KeyID, cfg.Exchange.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("exchange signer: %w", err)
	}
	return signer, nil
}

// ProvideForecastProvider creates the point forecast client.
func ProvideForecastProvider(cfg *config.Config) domsvc.ForecastProvider {
	return nws.New(cfg)
}

// ProvideEnsembleProvider creates the ensemble forecast client.
func ProvideEnsembleProvider(cfg *config.Config) domsvc.EnsembleProvider {
	return openmeteo.NewEnsembleClient(cfg)
}

// ProvideObservationProvider creates the historical observation client.
func ProvideObservationProvider(cfg *config.Config) domsvc.ObservationProvider {
	return openmeteo.NewArchiveClient(cfg)
}

// ProvideMarketProvider creates the public exchange market scanner.
func ProvideMarketProvider(cfg *config.Config, log *logger.Logger) domsvc.MarketProvider {
	return kalshi.NewClient(cfg, log)
}

// ProvideExchange creates the authenticated exchange client.
func ProvideExchange(cfg *config.Config, signer *kalshi.Signer) domsvc.Exchange {
	return kalshi.NewExchangeClient(cfg, signer)
}

// ProvideStream creates the live price stream, or nil when disabled.
func ProvideStream(cfg *config.Config, signer *kalshi.Signer, log *logger.Logger) *kalshi.Stream {
	if !cfg.Exchange.StreamEnabled {
		return nil
	}
	return kalshi.NewStream(cfg, signer, log)
}

// ProvideLedger creates the CSV trade ledger.
func ProvideLedger(cfg *config.Config) repository.Ledger {
	return internalrepo.NewCSVLedger(cfg.DataDir)
}

// ProvideConfigStore creates the runtime trading config store.
func ProvideConfigStore(cfg *config.Config) repository.ConfigStore {
	return internalrepo.NewFileConfigStore(cfg.DataDir)
}

// ProvideBudgetStore creates the daily spend tracker.
func ProvideBudgetStore(cfg *config.Config) repository.BudgetStore {
	return internalrepo.NewFileBudgetStore(cfg.DataDir)
}

// ProvidePaperStore creates the paper trading state store.
func ProvidePaperStore(cfg *config.Config) repository.PaperStore {
	return internalrepo.NewFilePaperStore(cfg.DataDir)
}

// ProvideNotifier creates the Redis stream notifier, falling back to
// log-only delivery when no Redis address is configured.
func ProvideNotifier(cfg *config.Config, log *logger.Logger) repository.Notifier {
	if cfg.Notify.RedisAddr == "" {
		return internalrepo.NewLogNotifier(log)
	}
	return internalrepo.NewRedisNotifier(cfg, log)
}

// ProvideEventPublisher creates the Kafka event publisher, or a no-op when
// no brokers are configured.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if len(cfg.Events.Brokers) == 0 {
		return internalrepo.NopEventPublisher{}, nil
	}
	pub, err := internalrepo.NewKafkaEventPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}
	return pub, nil
}

// ProvideSizer creates the Kelly position sizer.
func ProvideSizer() *usecase.Sizer {
	return usecase.NewSizer()
}

// ProvideAnalyzer creates the opportunity analyzer.
func ProvideAnalyzer(
	forecasts domsvc.ForecastProvider,
	ensembles domsvc.EnsembleProvider,
	markets domsvc.MarketProvider,
	exchange domsvc.Exchange,
	sizer *usecase.Sizer,
	cfg *config.Config,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(forecasts, ensembles, markets, exchange, sizer, cfg, m, log)
}

// ProvideBreaker creates the risk circuit breaker.
func ProvideBreaker(ledger repository.Ledger) *usecase.Breaker {
	return usecase.NewBreaker(ledger)
}

// ProvideExecutor creates the trade executor.
func ProvideExecutor(
	exchange domsvc.Exchange,
	stream *kalshi.Stream,
	budget repository.BudgetStore,
	ledger repository.Ledger,
	events repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Executor {
	var feed domsvc.PriceFeed
	if stream != nil {
		feed = stream
	}
	return usecase.NewExecutor(exchange, feed, budget, ledger, events, m, log)
}

// ProvidePaperTrader creates the paper trading simulator.
func ProvidePaperTrader(store repository.PaperStore, obs domsvc.ObservationProvider, log *logger.Logger) *usecase.PaperTrader {
	return usecase.NewPaperTrader(store, obs, log)
}

// ProvideReconciler creates the settlement reconciler.
func ProvideReconciler(
	ledger repository.Ledger,
	exchange domsvc.Exchange,
	obs domsvc.ObservationProvider,
	events repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Reconciler {
	return usecase.NewReconciler(ledger, exchange, obs, events, m, log)
}

// ProvideProposalStore creates the pending-proposal store.
func ProvideProposalStore() *usecase.ProposalStore {
	return usecase.NewProposalStore()
}

// ProvideCalibrator creates the calibration analyzer.
func ProvideCalibrator(ledger repository.Ledger) *usecase.Calibrator {
	return usecase.NewCalibrator(ledger)
}

// ProvideScheduler creates the scan scheduler.
func ProvideScheduler(
	configStore repository.ConfigStore,
	analyzer *usecase.Analyzer,
	breaker *usecase.Breaker,
	executor *usecase.Executor,
	paper *usecase.PaperTrader,
	reconciler *usecase.Reconciler,
	proposals *usecase.ProposalStore,
	calibrator *usecase.Calibrator,
	exchange domsvc.Exchange,
	notifier repository.Notifier,
	events repository.EventPublisher,
	m repository.Metrics,
	stream *kalshi.Stream,
	cfg *config.Config,
	log *logger.Logger,
) *usecase.Scheduler {
	// A nil *kalshi.Stream must stay a nil interface, not a typed nil.
	var sub usecase.TickerSubscriber
	if stream != nil {
		sub = stream
	}
	return usecase.NewScheduler(
		configStore, analyzer, breaker, executor, paper, reconciler,
		proposals, calibrator, exchange, notifier, events, m, sub,
		usecase.SchedulerOptions{
			SettlementInterval:   cfg.Schedule.SettlementInterval,
			SummaryCheckInterval: cfg.Schedule.SummaryCheckInterval,
			SummaryHour:          cfg.Schedule.SummaryHour,
		},
		log,
	)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(
	scheduler *usecase.Scheduler,
	calibrator *usecase.Calibrator,
	paper *usecase.PaperTrader,
	proposals *usecase.ProposalStore,
	configStore repository.ConfigStore,
	log *logger.Logger,
) xhttp.Handler {
	return api.NewHandler(scheduler, calibrator, paper, proposals, configStore, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	scheduler *usecase.Scheduler,
	stream *kalshi.Stream,
	events repository.EventPublisher,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, scheduler, stream, events, handler)
}
