package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
	domsvc "TempQuant/internal/domain/service"
	"TempQuant/pkg/logger"
)

// PaperTrader mirrors the Executor's validation contract against a
// file-persisted virtual balance. Nothing here touches the exchange.
type PaperTrader struct {
	store        repository.PaperStore
	observations domsvc.ObservationProvider
	log          *logger.Logger
}

func NewPaperTrader(store repository.PaperStore, observations domsvc.ObservationProvider, log *logger.Logger) *PaperTrader {
	return &PaperTrader{store: store, observations: observations, log: log}
}

// Execute opens a simulated position funded from the virtual balance.
func (p *PaperTrader) Execute(ctx context.Context, opp models.Opportunity) models.TradeOutcome {
	if opp.Ticker == "" {
		return declined("", "empty ticker")
	}
	if opp.Contracts < 1 || opp.AmountCents <= 0 {
		return declined(opp.Ticker, models.ReasonUnaffordable)
	}
	if opp.LimitPrice < 1 || opp.LimitPrice > 99 {
		return declined(opp.Ticker, models.ReasonInvalidPrice)
	}

	st, err := p.store.Load(ctx)
	if err != nil {
		return declined(opp.Ticker, "load paper state: "+err.Error())
	}
	cost := int64(opp.Contracts) * int64(opp.LimitPrice)
	if cost > st.BalanceCents {
		return declined(opp.Ticker, fmt.Sprintf("paper balance %d¢ cannot cover %d¢", st.BalanceCents, cost))
	}

	st.BalanceCents -= cost
	st.Open = append(st.Open, models.PaperPosition{
		ID:         uuid.NewString(),
		Date:       opp.Date.Format("2006-01-02"),
		City:       opp.City,
		Ticker:     opp.Ticker,
		Bucket:     opp.Bucket,
		Side:       models.SideYes,
		PriceCents: opp.LimitPrice,
		Contracts:  opp.Contracts,
		CostCents:  cost,
	})
	if err := p.store.Save(ctx, st); err != nil {
		return declined(opp.Ticker, "save paper state: "+err.Error())
	}

	return models.TradeOutcome{
		Ticker:     opp.Ticker,
		Status:     "paper",
		SpentCents: cost,
		Contracts:  opp.Contracts,
	}
}

// Settle resolves open positions whose trading day has passed using the
// observed high. Positions whose observation fetch fails stay open and
// retry on the next pass. today is the engine's "2006-01-02" day key.
func (p *PaperTrader) Settle(ctx context.Context, today string) (int, error) {
	st, err := p.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load paper state: %w", err)
	}

	var stillOpen []models.PaperPosition
	settled := 0
	for _, pos := range st.Open {
		if pos.Date >= today {
			stillOpen = append(stillOpen, pos)
			continue
		}
		high, err := p.observations.ObservedHigh(ctx, pos.City, pos.Date)
		if err != nil {
			p.log.Warn("paper settlement deferred",
				logger.String("city", pos.City),
				logger.String("date", pos.Date),
				logger.Error(err))
			stillOpen = append(stillOpen, pos)
			continue
		}

		inBucket := pos.Bucket.Contains(float64(high))
		won := inBucket == (pos.Side == models.SideYes)
		pos.ActualTemp = high
		pos.Won = won
		if won {
			pos.RevenueCents = int64(pos.Contracts) * 100
		}
		pos.PnLCents = pos.RevenueCents - pos.CostCents
		st.BalanceCents += pos.RevenueCents
		st.Settled = append(st.Settled, pos)
		settled++
	}
	if settled == 0 {
		return 0, nil
	}

	st.Open = stillOpen
	if err := p.store.Save(ctx, st); err != nil {
		return 0, fmt.Errorf("save paper state: %w", err)
	}
	return settled, nil
}

// State exposes the current paper world for the API layer.
func (p *PaperTrader) State(ctx context.Context) (models.PaperState, error) {
	return p.store.Load(ctx)
}
