package models

import (
	"fmt"
	"time"
)

// Position is an open exchange position.
type Position struct {
	Ticker        string `json:"ticker"`
	Contracts     int    `json:"contracts"`
	ExposureCents int64  `json:"exposure_cents"`
}

// OrderRequest describes a limit buy order to submit.
type OrderRequest struct {
	Ticker        string `json:"ticker"`
	Side          Side   `json:"side"`
	Count         int    `json:"count"`
	YesPriceCents int    `json:"yes_price_cents"`
	ClientOrderID string `json:"client_order_id"`
}

// Order is the exchange's view of a submitted order.
type Order struct {
	OrderID   string `json:"order_id"`
	Ticker    string `json:"ticker"`
	Side      Side   `json:"side"`
	Status    string `json:"status"`
	FillCount int    `json:"fill_count"`
}

// Settlement is one settled market outcome from the exchange feed.
type Settlement struct {
	Ticker       string    `json:"ticker"`
	MarketResult string    `json:"market_result"` // "yes" or "no"
	YesCount     int       `json:"yes_count"`
	NoCount      int       `json:"no_count"`
	RevenueCents int64     `json:"revenue_cents"`
	SettledTime  time.Time `json:"settled_time"`
}

// ExchangeErrorKind classifies authenticated-call failures.
type ExchangeErrorKind string

const (
	ExchangeAuthError   ExchangeErrorKind = "auth"
	ExchangeRateLimited ExchangeErrorKind = "rate_limited"
	ExchangeTimeout     ExchangeErrorKind = "timeout"
	ExchangeGeneric     ExchangeErrorKind = "generic"
)

// ExchangeError is a classified exchange failure. Callers branch on Kind to
// build user-facing messages.
type ExchangeError struct {
	Kind ExchangeErrorKind
	Op   string
	Err  error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}
