package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/logger"
	"TempQuant/pkg/util"
)

// TickerSubscriber is the slice of the price stream the scheduler needs.
type TickerSubscriber interface {
	Subscribe(tickers []string)
}

// Scheduler drives the recurring scan/settle/summary cycle and owns the
// mode state machine. Mode changes are operator-driven through the config
// store except the automatic autonomous->alert_only downgrade on a breaker
// trip.
type Scheduler struct {
	configStore repository.ConfigStore
	analyzer    *Analyzer
	breaker     *Breaker
	executor    *Executor
	paper       *PaperTrader
	reconciler  *Reconciler
	proposals   *ProposalStore
	calibrator  *Calibrator
	exchange    domsvc.Exchange
	notifier    repository.Notifier
	events      repository.EventPublisher
	metrics     repository.Metrics
	stream      TickerSubscriber // nil when streaming is disabled
	log         *logger.Logger

	scanEvery    time.Duration
	settleEvery  time.Duration
	summaryEvery time.Duration
	summaryHour  int

	mu             sync.Mutex
	lastSummaryDay string
	lastReport     models.ScanReport
}

// SchedulerOptions carries the timer wiring.
type SchedulerOptions struct {
	SettlementInterval   time.Duration
	SummaryCheckInterval time.Duration
	SummaryHour          int
}

func NewScheduler(
	configStore repository.ConfigStore,
	analyzer *Analyzer,
	breaker *Breaker,
	executor *Executor,
	paper *PaperTrader,
	reconciler *Reconciler,
	proposals *ProposalStore,
	calibrator *Calibrator,
	exchange domsvc.Exchange,
	notifier repository.Notifier,
	events repository.EventPublisher,
	metrics repository.Metrics,
	stream TickerSubscriber,
	opts SchedulerOptions,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		configStore:  configStore,
		analyzer:     analyzer,
		breaker:      breaker,
		executor:     executor,
		paper:        paper,
		reconciler:   reconciler,
		proposals:    proposals,
		calibrator:   calibrator,
		exchange:     exchange,
		notifier:     notifier,
		events:       events,
		metrics:      metrics,
		stream:       stream,
		scanEvery:    30 * time.Minute,
		settleEvery:  orDefault(opts.SettlementInterval, 30*time.Minute),
		summaryEvery: orDefault(opts.SummaryCheckInterval, time.Minute),
		summaryHour:  opts.SummaryHour,
		log:          log,
	}
}

// Run drives the independent timers until ctx ends. Within one timer's
// invocation steps run strictly sequentially; no parallel trade submission
// inside a scan.
func (s *Scheduler) Run(ctx context.Context) {
	s.Tick(ctx)

	scan := time.NewTicker(s.currentScanInterval(ctx))
	settle := time.NewTicker(s.settleEvery)
	summary := time.NewTicker(s.summaryEvery)
	defer scan.Stop()
	defer settle.Stop()
	defer summary.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-scan.C:
			s.Tick(ctx)
			scan.Reset(s.currentScanInterval(ctx))
		case <-settle.C:
			s.SettleTick(ctx)
		case <-summary.C:
			s.DailySummaryTick(ctx, time.Now())
		}
	}
}

func (s *Scheduler) currentScanInterval(ctx context.Context) time.Duration {
	cfg, err := s.configStore.Load(ctx)
	if err != nil {
		return s.scanEvery
	}
	return orDefault(time.Duration(cfg.ScanIntervalMin)*time.Minute, s.scanEvery)
}

// Tick runs one scan cycle. Paused mode returns immediately with no
// provider calls.
func (s *Scheduler) Tick(ctx context.Context) models.ScanReport {
	report := models.ScanReport{StartedAt: time.Now()}

	cfg, err := s.configStore.Load(ctx)
	if err != nil {
		report.Message = "scan aborted: " + err.Error()
		s.log.Error("config load failed", logger.Error(err))
		return s.finish(report)
	}
	report.Mode = cfg.Mode
	s.metrics.RecordScan(string(cfg.Mode))

	if !cfg.Mode.Active() {
		report.Message = "engine paused, scan skipped"
		return s.finish(report)
	}

	opps, provErrs, err := s.analyzer.Analyze(ctx, cfg)
	report.ProviderErrors = provErrs
	if err != nil {
		report.Message = "scan failed: " + err.Error()
		s.log.Error("scan failed", logger.Error(err))
		s.notify(ctx, report.Message)
		return s.finish(report)
	}
	report.Opportunities = opps

	if s.stream != nil {
		tickers := make([]string, 0, len(opps))
		for _, o := range opps {
			tickers = append(tickers, o.Ticker)
		}
		s.stream.Subscribe(tickers)
	}

	if len(opps) == 0 {
		report.Message = "no opportunities above minimum edge"
		return s.finish(report)
	}

	capped := opps
	if len(capped) > cfg.MaxTradesPerScan {
		capped = capped[:cfg.MaxTradesPerScan]
	}

	if cfg.PaperEnabled {
		for _, opp := range capped {
			out := s.paper.Execute(ctx, opp)
			if out.Declined {
				s.log.Debug("paper trade declined",
					logger.String("ticker", opp.Ticker),
					logger.String("reason", out.Message))
			}
		}
	}

	switch cfg.Mode {
	case models.ModeAlertOnly:
		report.Message = summaryMessage(opps, cfg.MaxTradesPerScan)
	case models.ModeAlertThenTrade:
		ttl := time.Duration(cfg.ProposalTTLMin) * time.Minute
		for _, opp := range capped {
			report.Proposals = append(report.Proposals, s.proposals.Propose(opp, ttl))
		}
		report.Message = summaryMessage(opps, cfg.MaxTradesPerScan) +
			fmt.Sprintf("\n%d trade(s) awaiting confirmation", len(report.Proposals))
	case models.ModeAutonomous:
		s.autonomous(ctx, cfg, opps, &report)
	}

	s.notify(ctx, report.Message)
	return s.finish(report)
}

func (s *Scheduler) autonomous(ctx context.Context, cfg models.TradingConfig, opps []models.Opportunity, report *models.ScanReport) {
	today := util.DayKey(time.Now())

	verdict, err := s.breaker.Check(ctx, cfg, today)
	if err != nil {
		report.Message = "breaker check failed, no trades: " + err.Error()
		s.log.Error("breaker check failed", logger.Error(err))
		return
	}
	report.Breaker = &verdict
	if !verdict.CanTrade {
		s.tripBreaker(ctx, cfg, verdict, report)
		return
	}

	// Held markets drop out before the per-scan cap so a held top pick
	// leaves room for the next-ranked opportunity.
	tradable := s.withoutHeld(ctx, opps)
	if len(tradable) > cfg.MaxTradesPerScan {
		tradable = tradable[:cfg.MaxTradesPerScan]
	}
	for _, out := range s.executeAll(ctx, cfg, tradable, today) {
		report.Executed = append(report.Executed, out)
	}
	report.Message = summaryMessage(opps, cfg.MaxTradesPerScan) +
		fmt.Sprintf("\nexecuted %d trade(s)", executedCount(report.Executed))
}

// tripBreaker downgrades autonomous mode to alert_only and surfaces every
// firing reason.
func (s *Scheduler) tripBreaker(ctx context.Context, cfg models.TradingConfig, verdict models.BreakerReport, report *models.ScanReport) {
	s.metrics.RecordBreakerTrip()
	cfg.Mode = models.ModeAlertOnly
	if err := s.configStore.Save(ctx, cfg); err != nil {
		s.log.Error("mode downgrade persist failed", logger.Error(err))
	}
	report.Mode = cfg.Mode
	report.Message = "circuit breaker tripped, trading halted (mode now alert_only):\n- " +
		strings.Join(verdict.Reasons, "\n- ")
	if err := s.events.Publish(ctx, "breaker_tripped", "breaker", verdict); err != nil {
		s.log.Warn("event publish failed", logger.Error(err))
	}
	s.log.Warn("circuit breaker tripped", logger.Strings("reasons", verdict.Reasons))
}

// withoutHeld drops opportunities whose market already has an open
// position. If the position fetch fails the list passes through unfiltered;
// the exchange rejects true duplicates anyway.
func (s *Scheduler) withoutHeld(ctx context.Context, opps []models.Opportunity) []models.Opportunity {
	positions, err := s.exchange.Positions(ctx)
	if err != nil {
		s.log.Warn("position dedupe skipped", logger.Error(err))
		return opps
	}
	held := make(map[string]bool, len(positions))
	for _, p := range positions {
		held[p.Ticker] = true
	}
	var out []models.Opportunity
	for _, o := range opps {
		if !held[o.Ticker] {
			out = append(out, o)
		}
	}
	return out
}

func (s *Scheduler) executeAll(ctx context.Context, cfg models.TradingConfig, opps []models.Opportunity, today string) []models.TradeOutcome {
	out := make([]models.TradeOutcome, 0, len(opps))
	for _, opp := range opps {
		out = append(out, s.executor.Execute(ctx, opp, cfg, today))
	}
	return out
}

// ConfirmTrade commits a pending proposal: the second phase of the
// alert_then_trade flow.
func (s *Scheduler) ConfirmTrade(ctx context.Context, token string) (models.TradeOutcome, error) {
	p, err := s.proposals.Take(token)
	if err != nil {
		return models.TradeOutcome{}, err
	}
	cfg, err := s.configStore.Load(ctx)
	if err != nil {
		return models.TradeOutcome{}, fmt.Errorf("load config: %w", err)
	}
	out := s.executor.Execute(ctx, p.Opportunity, cfg, util.DayKey(time.Now()))
	s.notify(ctx, confirmMessage(p, out))
	return out, nil
}

// SettleTick runs settlement reconciliation plus paper settlement.
func (s *Scheduler) SettleTick(ctx context.Context) {
	if n, err := s.reconciler.CheckSettlements(ctx); err != nil {
		s.log.Error("settlement pass failed", logger.Error(err))
	} else if n > 0 {
		s.log.Info("settlement pass complete", logger.Int("updated", n))
	}
	if n, err := s.paper.Settle(ctx, util.DayKey(time.Now())); err != nil {
		s.log.Error("paper settlement failed", logger.Error(err))
	} else if n > 0 {
		s.log.Info("paper settlement complete", logger.Int("settled", n))
	}
}

// DailySummaryTick fires a once-per-day summary. The check runs every
// minute; the day guard keeps it to a single send.
func (s *Scheduler) DailySummaryTick(ctx context.Context, now time.Time) {
	if now.Hour() < s.summaryHour {
		return
	}
	today := util.DayKey(now)

	s.mu.Lock()
	if s.lastSummaryDay == today {
		s.mu.Unlock()
		return
	}
	s.lastSummaryDay = today
	s.mu.Unlock()

	report, err := s.calibrator.Report(ctx)
	if err != nil {
		s.log.Error("daily summary failed", logger.Error(err))
		return
	}
	s.notify(ctx, fmt.Sprintf(
		"daily summary %s\nforecast error: mean %+.1f°F, abs %.1f°F, sigma %.1f°F over %d samples",
		today, report.Errors.MeanError, report.Errors.MeanAbsError, report.Errors.Sigma, report.Errors.Samples))
}

// LastReport returns the most recent scan report for the status API.
func (s *Scheduler) LastReport() models.ScanReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

func (s *Scheduler) finish(report models.ScanReport) models.ScanReport {
	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
	return report
}

// notify is best effort; delivery failure never fails the cycle.
func (s *Scheduler) notify(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if err := s.notifier.SendText(ctx, text); err != nil {
		s.log.Warn("notification failed", logger.Error(err))
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func summaryMessage(opps []models.Opportunity, topN int) string {
	if len(opps) == 0 {
		return "no opportunities above minimum edge"
	}
	if topN > len(opps) {
		topN = len(opps)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d opportunity(ies) found, top %d:", len(opps), topN)
	for _, o := range opps[:topN] {
		fmt.Fprintf(&b, "\n%s %s %s: conf %d%% (%s) vs %d¢, edge +%d, %d contracts for %d¢",
			o.City, o.Horizon, o.Bucket.String(), o.Confidence, o.Source, o.YesPrice, o.Edge, o.Contracts, o.AmountCents)
	}
	return b.String()
}

func confirmMessage(p models.TradeProposal, out models.TradeOutcome) string {
	if out.Declined {
		return fmt.Sprintf("confirmed trade %s declined: %s", p.Opportunity.Ticker, out.Message)
	}
	return fmt.Sprintf("confirmed trade executed: %s, %d contracts for %d¢ (order %s)",
		out.Ticker, out.Contracts, out.SpentCents, out.OrderID)
}

func executedCount(outs []models.TradeOutcome) int {
	n := 0
	for _, o := range outs {
		if !o.Declined {
			n++
		}
	}
	return n
}
