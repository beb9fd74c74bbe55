package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TempQuant/internal/domain/repository"
	"TempQuant/internal/service/kalshi"
	"TempQuant/internal/usecase"
	"TempQuant/pkg/config"
	xhttp "TempQuant/pkg/http"
	"TempQuant/pkg/logger"
)

// App encapsulates the engine lifecycle: the scan/settle/summary loops, the
// optional price stream, and the HTTP API, with graceful shutdown.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	scheduler  *usecase.Scheduler
	stream     *kalshi.Stream // nil when streaming is disabled
	events     repository.EventPublisher
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates the application from wired dependencies.
func New(
	cfg *config.Config,
	log *logger.Logger,
	scheduler *usecase.Scheduler,
	stream *kalshi.Stream,
	events repository.EventPublisher,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		scheduler: scheduler,
		stream:    stream,
		events:    events,
		handler:   handler,
	}
}

// Run starts everything and blocks until an interrupt arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.log),
	)

	if a.stream != nil {
		go a.stream.Run(ctx)
		a.log.Info("price stream started", logger.String("url", a.cfg.Exchange.WSURL))
	}

	go a.scheduler.Run(ctx)
	a.log.Info("scheduler started",
		logger.Duration("settlement_interval", a.cfg.Schedule.SettlementInterval),
		logger.Int("summary_hour", a.cfg.Schedule.SummaryHour))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start failed", logger.Error(err))
		return err
	}
	a.log.Info("http server started", logger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown failed", logger.Error(err))
	}
	if err := a.events.Close(); err != nil {
		a.log.Warn("event publisher close failed", logger.Error(err))
	}
	a.log.Info("shutdown complete")
	return nil
}
