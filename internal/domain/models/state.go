package models

// BudgetState tracks spend against the daily cap. Date is a calendar-day key
// ("2006-01-02"); the counter resets once per calendar-day rollover.
type BudgetState struct {
	SpentCents int64  `json:"daily_spend_cents"`
	Date       string `json:"date"`
}

// DefaultPaperBalanceCents is the starting virtual bankroll.
const DefaultPaperBalanceCents int64 = 100_000

// PaperPosition is one simulated position. It mirrors the real trading
// record but never touches the exchange.
type PaperPosition struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	City       string `json:"city"`
	Ticker     string `json:"ticker"`
	Bucket     Bucket `json:"bucket"`
	Side       Side   `json:"side"`
	PriceCents int    `json:"price_cents"`
	Contracts  int    `json:"contracts"`
	CostCents  int64  `json:"cost_cents"`

	// Filled at paper settlement.
	ActualTemp   int   `json:"actual_temp,omitempty"`
	Won          bool  `json:"won,omitempty"`
	RevenueCents int64 `json:"revenue_cents,omitempty"`
	PnLCents     int64 `json:"pnl_cents,omitempty"`
}

// PaperState is the persisted paper trading world: an independent virtual
// balance plus open and settled positions.
type PaperState struct {
	BalanceCents int64           `json:"balance_cents"`
	Open         []PaperPosition `json:"open"`
	Settled      []PaperPosition `json:"settled"`
}

// NewPaperState returns a fresh paper world with the default balance.
func NewPaperState() PaperState {
	return PaperState{BalanceCents: DefaultPaperBalanceCents}
}
