package repository

import (
	"context"

	"TempQuant/internal/domain/models"
)

// Ledger is the append-then-mutate trade audit trail. Rows are loaded
// wholesale, mutated by the caller, and rewritten in original row order.
type Ledger interface {
	Load(ctx context.Context) ([]models.TradeRecord, error)
	Append(ctx context.Context, rec models.TradeRecord) error
	ReplaceAll(ctx context.Context, recs []models.TradeRecord) error
}

// ConfigStore persists the runtime-mutable trading config. Load on a missing
// file returns defaults.
type ConfigStore interface {
	Load(ctx context.Context) (models.TradingConfig, error)
	Save(ctx context.Context, cfg models.TradingConfig) error
}

// BudgetStore tracks daily spend with calendar-day rollover. today is the
// "2006-01-02" day key in the engine's reference timezone.
type BudgetStore interface {
	Load(ctx context.Context, today string) (models.BudgetState, error)
	RecordSpend(ctx context.Context, today string, cents int64) (models.BudgetState, error)
}

// PaperStore persists the simulated trading world.
type PaperStore interface {
	Load(ctx context.Context) (models.PaperState, error)
	Save(ctx context.Context, st models.PaperState) error
}

// Notifier is the single outbound operation exposed to the notification
// delivery layer. Send failures must never fail the calling operation.
type Notifier interface {
	SendText(ctx context.Context, text string) error
}

// EventPublisher pushes engine events (executed trades, settlements,
// breaker trips) to a downstream analytics topic.
type EventPublisher interface {
	Publish(ctx context.Context, kind, key string, payload interface{}) error
	Close() error
}

// Metrics records engine observability counters.
type Metrics interface {
	RecordScan(mode string)
	RecordOpportunities(n int)
	RecordTrade(result string)
	RecordProviderError(provider string)
	RecordBreakerTrip()
	RecordBankroll(cents int64)
	RecordLatency(op string, seconds float64)
}
