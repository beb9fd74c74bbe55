package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/logger"
)

// Executor submits real orders. Every guard runs client-side before any
// network call; failures come back as outcome values, never as panics or
// raw errors across the public boundary.
type Executor struct {
	exchange domsvc.Exchange
	feed     domsvc.PriceFeed // nil when streaming is disabled
	budget   repository.BudgetStore
	ledger   repository.Ledger
	events   repository.EventPublisher
	metrics  repository.Metrics
	log      *logger.Logger
}

func NewExecutor(
	exchange domsvc.Exchange,
	feed domsvc.PriceFeed,
	budget repository.BudgetStore,
	ledger repository.Ledger,
	events repository.EventPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *Executor {
	return &Executor{
		exchange: exchange,
		feed:     feed,
		budget:   budget,
		ledger:   ledger,
		events:   events,
		metrics:  metrics,
		log:      log,
	}
}

// Execute validates, guards, and submits one opportunity as a limit buy.
// today is the engine's "2006-01-02" day key.
func (e *Executor) Execute(ctx context.Context, opp models.Opportunity, cfg models.TradingConfig, today string) models.TradeOutcome {
	if out, ok := e.validate(opp, cfg); !ok {
		return out
	}

	remaining, err := e.remainingBudget(ctx, cfg, today)
	if err != nil {
		return declined(opp.Ticker, "budget check failed: "+err.Error())
	}
	if opp.AmountCents > remaining {
		e.metrics.RecordTrade("budget_exhausted")
		return declined(opp.Ticker, fmt.Sprintf("daily budget exhausted: %d¢ remaining, %d¢ needed", remaining, opp.AmountCents))
	}

	// Live quote guard: when the stream has a fresh price above our limit,
	// the edge we computed at scan time is gone.
	if e.feed != nil {
		if live, ok := e.feed.LastYesPrice(opp.Ticker); ok && live > opp.LimitPrice {
			e.metrics.RecordTrade("price_moved")
			return declined(opp.Ticker, fmt.Sprintf("price moved: live %d¢ above limit %d¢", live, opp.LimitPrice))
		}
	}

	order, err := e.exchange.CreateOrder(ctx, models.OrderRequest{
		Ticker:        opp.Ticker,
		Side:          models.SideYes,
		Count:         opp.Contracts,
		YesPriceCents: opp.LimitPrice,
		ClientOrderID: uuid.NewString(),
	})
	if err != nil {
		e.metrics.RecordTrade("failed")
		return declined(opp.Ticker, submitFailureMessage(err))
	}

	// Spend counts only after the exchange accepted the order.
	if _, err := e.budget.RecordSpend(ctx, today, opp.AmountCents); err != nil {
		e.log.Error("record spend failed after submission",
			logger.String("ticker", opp.Ticker),
			logger.Error(err))
	}
	if err := e.ledger.Append(ctx, recordFor(opp, order, today)); err != nil {
		e.log.Error("ledger append failed after submission",
			logger.String("ticker", opp.Ticker),
			logger.String("order_id", order.OrderID),
			logger.Error(err))
	}

	e.metrics.RecordTrade("executed")
	outcome := models.TradeOutcome{
		Ticker:     opp.Ticker,
		OrderID:    order.OrderID,
		Status:     order.Status,
		SpentCents: opp.AmountCents,
		Contracts:  opp.Contracts,
	}
	if err := e.events.Publish(ctx, "trade_executed", opp.Ticker, outcome); err != nil {
		e.log.Warn("event publish failed", logger.Error(err))
	}
	return outcome
}

func (e *Executor) validate(opp models.Opportunity, cfg models.TradingConfig) (models.TradeOutcome, bool) {
	switch {
	case opp.Ticker == "":
		return declined("", "empty ticker"), false
	case opp.AmountCents <= 0:
		return declined(opp.Ticker, "amount must be positive"), false
	case opp.LimitPrice < 1 || opp.LimitPrice > 99:
		return declined(opp.Ticker, models.ReasonInvalidPrice), false
	case opp.AmountCents > cfg.MaxTradeCents:
		return declined(opp.Ticker, fmt.Sprintf("amount %d¢ exceeds max trade size %d¢", opp.AmountCents, cfg.MaxTradeCents)), false
	case opp.Contracts < 1:
		return declined(opp.Ticker, models.ReasonUnaffordable), false
	}
	return models.TradeOutcome{}, true
}

func (e *Executor) remainingBudget(ctx context.Context, cfg models.TradingConfig, today string) (int64, error) {
	st, err := e.budget.Load(ctx, today)
	if err != nil {
		return 0, err
	}
	remaining := cfg.MaxDailySpendCents - st.SpentCents
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func recordFor(opp models.Opportunity, order models.Order, today string) models.TradeRecord {
	date := today
	if !opp.Date.IsZero() {
		date = opp.Date.Format("2006-01-02")
	}
	return models.TradeRecord{
		Date:         date,
		City:         opp.City,
		EventTicker:  opp.EventTicker,
		Ticker:       opp.Ticker,
		Bucket:       opp.Bucket,
		ForecastTemp: opp.ForecastTemp,
		Confidence:   opp.Confidence,
		Edge:         opp.Edge,
		Side:         models.SideYes,
		PriceCents:   opp.YesPrice,
		Contracts:    opp.Contracts,
		CostCents:    opp.AmountCents,
		OrderID:      order.OrderID,
		Status:       order.Status,
		FillCount:    order.FillCount,
	}
}

func declined(ticker, message string) models.TradeOutcome {
	return models.TradeOutcome{Ticker: ticker, Declined: true, Message: message}
}

// submitFailureMessage maps classified exchange failures onto stable
// user-facing messages.
func submitFailureMessage(err error) string {
	var xerr *models.ExchangeError
	if errors.As(err, &xerr) {
		switch xerr.Kind {
		case models.ExchangeAuthError:
			return "exchange rejected credentials; check key id and private key"
		case models.ExchangeRateLimited:
			return "exchange rate limit hit; order not submitted"
		case models.ExchangeTimeout:
			return "exchange request timed out; order state unknown, not retried"
		}
	}
	return "order submission failed: " + err.Error()
}
