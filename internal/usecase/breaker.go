package usecase

import (
	"context"
	"fmt"
	"math"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
)

const (
	dailyLossFraction  = 0.20
	maxConsecutiveLoss = 5
	maxForecastMissDeg = 8
	forecastMissWindow = 10
)

// Breaker evaluates the risk circuit rules against the full ledger before
// any autonomous trading decision. A trip is a policy outcome, not an
// error; all firing reasons are surfaced together.
type Breaker struct {
	ledger repository.Ledger
}

func NewBreaker(ledger repository.Ledger) *Breaker {
	return &Breaker{ledger: ledger}
}

// Check runs all rules. today is the engine's "2006-01-02" day key.
func (b *Breaker) Check(ctx context.Context, cfg models.TradingConfig, today string) (models.BreakerReport, error) {
	recs, err := b.ledger.Load(ctx)
	if err != nil {
		return models.BreakerReport{}, fmt.Errorf("load ledger: %w", err)
	}

	var reasons []string
	if r := dailyLossRule(recs, cfg.MaxDailySpendCents, today); r != "" {
		reasons = append(reasons, r)
	}
	if r := lossStreakRule(recs); r != "" {
		reasons = append(reasons, r)
	}
	if r := forecastMissRule(recs); r != "" {
		reasons = append(reasons, r)
	}
	return models.BreakerReport{CanTrade: len(reasons) == 0, Reasons: reasons}, nil
}

// dailyLossRule trips when today's realized P&L drops below -20% of the
// configured max daily spend.
func dailyLossRule(recs []models.TradeRecord, maxDailySpendCents int64, today string) string {
	var pnl int64
	for _, r := range recs {
		if r.Settled() && r.Date == today {
			pnl += r.PnLCents
		}
	}
	threshold := -int64(float64(maxDailySpendCents) * dailyLossFraction)
	if pnl < threshold {
		return fmt.Sprintf("daily loss %d¢ below threshold %d¢", pnl, threshold)
	}
	return ""
}

// lossStreakRule trips on 5 or more consecutive settled losses, counted
// most-recent-first; any win ends the streak.
func lossStreakRule(recs []models.TradeRecord) string {
	streak := 0
	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		if !r.Settled() {
			continue
		}
		if r.Won() {
			break
		}
		streak++
	}
	if streak >= maxConsecutiveLoss {
		return fmt.Sprintf("%d consecutive losses", streak)
	}
	return ""
}

// forecastMissRule trips when any of the 10 most recent trades carrying
// both forecast and actual temperature missed by more than 8 degrees.
func forecastMissRule(recs []models.TradeRecord) string {
	seen := 0
	for i := len(recs) - 1; i >= 0 && seen < forecastMissWindow; i-- {
		r := recs[i]
		if r.ActualTemp == nil {
			continue
		}
		seen++
		miss := math.Abs(r.ForecastTemp - float64(*r.ActualTemp))
		if miss > maxForecastMissDeg {
			return fmt.Sprintf("forecast missed by %.1f°F on %s", miss, r.Ticker)
		}
	}
	return ""
}
