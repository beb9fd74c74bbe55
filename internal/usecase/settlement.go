package usecase

import (
	"context"
	"fmt"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/logger"
)

// Reconciler joins the ledger's unsettled rows against the exchange
// settlement and order feeds. Settlement fields are written exactly once;
// a second run with no new exchange data updates nothing.
type Reconciler struct {
	ledger       repository.Ledger
	exchange     domsvc.Exchange
	observations domsvc.ObservationProvider
	events       repository.EventPublisher
	metrics      repository.Metrics
	log          *logger.Logger
}

func NewReconciler(
	ledger repository.Ledger,
	exchange domsvc.Exchange,
	observations domsvc.ObservationProvider,
	events repository.EventPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *Reconciler {
	return &Reconciler{
		ledger:       ledger,
		exchange:     exchange,
		observations: observations,
		events:       events,
		metrics:      metrics,
		log:          log,
	}
}

// CheckSettlements runs one reconciliation pass and reports how many rows
// were settled.
func (r *Reconciler) CheckSettlements(ctx context.Context) (int, error) {
	recs, err := r.ledger.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load ledger: %w", err)
	}

	pending := 0
	for _, rec := range recs {
		if !rec.Settled() {
			pending++
		}
	}
	if pending == 0 {
		return 0, nil
	}

	settlements, err := r.exchange.Settlements(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch settlements: %w", err)
	}
	settledBy := make(map[string]models.Settlement, len(settlements))
	for _, s := range settlements {
		settledBy[s.Ticker] = s
	}

	// Orders refresh status/fill counts but are not required; settlement
	// results alone still land.
	orderBy := make(map[string]models.Order)
	if orders, err := r.exchange.Orders(ctx); err != nil {
		r.log.Warn("order feed unavailable, settling from settlements only", logger.Error(err))
	} else {
		for _, o := range orders {
			orderBy[o.OrderID] = o
		}
	}

	updated := 0
	for i := range recs {
		rec := &recs[i]
		if rec.Settled() {
			continue
		}
		changed := false
		if o, ok := orderBy[rec.OrderID]; ok && rec.OrderID != "" {
			if rec.Status != o.Status || rec.FillCount != o.FillCount {
				rec.Status = o.Status
				rec.FillCount = o.FillCount
				changed = true
			}
		}
		if s, ok := settledBy[rec.Ticker]; ok {
			r.settle(ctx, rec, s)
			changed = true
			updated++
		}
		if changed && !rec.Settled() {
			// status-only refresh still needs persisting
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}

	if err := r.ledger.ReplaceAll(ctx, recs); err != nil {
		return 0, fmt.Errorf("rewrite ledger: %w", err)
	}
	return updated, nil
}

func (r *Reconciler) settle(ctx context.Context, rec *models.TradeRecord, s models.Settlement) {
	// A partially filled order only paid for its fills, and only they pay
	// out. The refreshed fill count is the per-order truth; the settlements
	// feed aggregates revenue across the whole market position.
	filled := rec.Contracts
	if rec.FillCount > 0 && rec.FillCount < rec.Contracts {
		filled = rec.FillCount
		rec.CostCents = int64(filled) * int64(rec.PriceCents)
	}

	won := s.MarketResult == string(rec.Side)
	if won {
		rec.Result = models.ResultWon
		rec.RevenueCents = int64(filled) * 100
		if s.RevenueCents > 0 && s.RevenueCents < rec.RevenueCents {
			rec.RevenueCents = s.RevenueCents
		}
	} else {
		rec.Result = models.ResultLost
		rec.RevenueCents = 0
	}
	rec.PnLCents = rec.RevenueCents - rec.CostCents

	// Actual temperature is best effort; calibration tolerates gaps.
	if high, err := r.observations.ObservedHigh(ctx, rec.City, rec.Date); err == nil {
		rec.ActualTemp = &high
	} else {
		r.log.Warn("observed high unavailable",
			logger.String("city", rec.City),
			logger.String("date", rec.Date),
			logger.Error(err))
	}

	r.metrics.RecordTrade(rec.Result)
	if err := r.events.Publish(ctx, "trade_settled", rec.Ticker, rec); err != nil {
		r.log.Warn("event publish failed", logger.Error(err))
	}
	r.log.Info("trade settled",
		logger.String("ticker", rec.Ticker),
		logger.String("result", rec.Result),
		logger.Int64("pnl_cents", rec.PnLCents))
}
