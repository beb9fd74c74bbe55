package models

import "time"

// Side is the contract side of an order.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Valid reports whether the side is one of the two contract sides.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// ConfidenceSource tags how a probability estimate was derived.
type ConfidenceSource string

const (
	SourceEnsemble ConfidenceSource = "ensemble"
	SourceNormal   ConfidenceSource = "normal"
)

// Sizing decline reasons. These are legitimate no-trade outcomes, not errors.
const (
	ReasonNoEdge       = "no edge"
	ReasonNoBankroll   = "no bankroll"
	ReasonInvalidPrice = "invalid price"
	ReasonBelowMin     = "below minimum size"
	ReasonUnaffordable = "cannot afford 1 contract"
)

// SizingResult is the outcome of a Kelly sizing decision. Contracts == 0
// means declined, with Reason set.
type SizingResult struct {
	AmountCents int64  `json:"amount_cents"`
	Contracts   int    `json:"contracts"`
	Reason      string `json:"reason,omitempty"`
	Rationale   string `json:"rationale,omitempty"`
}

// Declined reports whether sizing produced no trade.
func (s SizingResult) Declined() bool {
	return s.Contracts == 0
}

// Opportunity is a detected mispricing between forecast confidence and the
// market-quoted yes price. Derived per scan; never persisted.
type Opportunity struct {
	City         string           `json:"city"`
	Horizon      Horizon          `json:"horizon"`
	Date         time.Time        `json:"date"`
	EventTicker  string           `json:"event_ticker"`
	Ticker       string           `json:"ticker"`
	Bucket       Bucket           `json:"bucket"`
	ForecastTemp float64          `json:"forecast_temp"`
	Confidence   int              `json:"confidence"` // 0-100
	Source       ConfidenceSource `json:"source"`
	Spread       float64          `json:"spread,omitempty"` // ensemble spread
	YesPrice     int              `json:"yes_price"`
	Edge         int              `json:"edge"` // percentage points
	LimitPrice   int              `json:"limit_price"`
	AmountCents  int64            `json:"amount_cents"`
	Contracts    int              `json:"contracts"`
	Rationale    string           `json:"rationale"`
}

// TradeOutcome is the result of one submission attempt, real or simulated.
// Failures are carried here as values, never thrown across the boundary.
type TradeOutcome struct {
	Ticker     string `json:"ticker"`
	OrderID    string `json:"order_id,omitempty"`
	Status     string `json:"status,omitempty"`
	SpentCents int64  `json:"spent_cents"`
	Contracts  int    `json:"contracts"`
	Declined   bool   `json:"declined"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
}

// TradeProposal is the side-effect-free half of the two-phase trade flow:
// a described trade awaiting explicit confirmation.
type TradeProposal struct {
	Token       string      `json:"token"`
	Opportunity Opportunity `json:"opportunity"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// Expired reports whether the proposal can no longer be committed.
func (p TradeProposal) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Trade results recorded in the ledger once a market settles.
const (
	ResultWon  = "won"
	ResultLost = "lost"
)

// TradeRecord is one row of the persistent trade ledger. Rows are appended
// at execution time and mutated exactly once when the market settles; they
// are never deleted.
type TradeRecord struct {
	Date         string  `json:"date"`
	City         string  `json:"city"`
	EventTicker  string  `json:"event_ticker"`
	Ticker       string  `json:"ticker"`
	Bucket       Bucket  `json:"bucket"`
	ForecastTemp float64 `json:"forecast_temp"`
	Confidence   int     `json:"confidence"`
	Edge         int     `json:"edge"`
	Side         Side    `json:"side"`
	PriceCents   int     `json:"price_cents"`
	Contracts    int     `json:"contracts"`
	CostCents    int64   `json:"cost_cents"`
	OrderID      string  `json:"order_id"`
	Status       string  `json:"status"`
	FillCount    int     `json:"fill_count"`

	// Settlement fields, written exactly once by the reconciler.
	ActualTemp   *int   `json:"actual_temp,omitempty"`
	Result       string `json:"result,omitempty"` // "", "won", "lost"
	RevenueCents int64  `json:"revenue_cents"`
	PnLCents     int64  `json:"pnl_cents"`
}

// Settled reports whether the settlement fields have been written.
func (r TradeRecord) Settled() bool {
	return r.Result != ""
}

// Won reports whether the trade settled as a win.
func (r TradeRecord) Won() bool {
	return r.Result == ResultWon
}
