package models

import (
	"fmt"
	"math"
	"time"
)

// Bucket is the temperature range a binary contract pays out on. At most one
// bound may be nil (open-ended half-range); never both.
type Bucket struct {
	Low  *float64 `json:"low"`
	High *float64 `json:"high"`
}

// ClosedBucket builds a bucket with both bounds.
func ClosedBucket(low, high float64) Bucket {
	return Bucket{Low: &low, High: &high}
}

// AtMostBucket builds a "≤ high" half-range.
func AtMostBucket(high float64) Bucket {
	return Bucket{High: &high}
}

// AtLeastBucket builds a "≥ low" half-range.
func AtLeastBucket(low float64) Bucket {
	return Bucket{Low: &low}
}

// Valid reports whether the bucket satisfies its structural invariant:
// at least one bound present, and low ≤ high when both are.
func (b Bucket) Valid() bool {
	if b.Low == nil && b.High == nil {
		return false
	}
	if b.Low != nil && b.High != nil && *b.Low > *b.High {
		return false
	}
	return true
}

// LowBound returns the lower bound, -Inf for an open low end.
func (b Bucket) LowBound() float64 {
	if b.Low == nil {
		return math.Inf(-1)
	}
	return *b.Low
}

// HighBound returns the upper bound, +Inf for an open high end.
func (b Bucket) HighBound() float64 {
	if b.High == nil {
		return math.Inf(1)
	}
	return *b.High
}

// Contains reports whether a temperature falls inside the bucket, boundaries
// inclusive.
func (b Bucket) Contains(temp float64) bool {
	return temp >= b.LowBound() && temp <= b.HighBound()
}

func (b Bucket) String() string {
	switch {
	case b.Low == nil && b.High == nil:
		return "invalid"
	case b.Low == nil:
		return fmt.Sprintf("≤%g°", *b.High)
	case b.High == nil:
		return fmt.Sprintf("≥%g°", *b.Low)
	default:
		return fmt.Sprintf("%g-%g°", *b.Low, *b.High)
	}
}

// Market is one tradeable contract on an exchange event.
type Market struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Bucket      Bucket `json:"bucket"`
	YesPrice    int    `json:"yes_price"` // cents, 0-100
	YesBid      int    `json:"yes_bid"`
	YesAsk      int    `json:"yes_ask"`
	Volume      int64  `json:"volume"`
	Status      string `json:"status"`
}

// EventMarkets groups the open markets of one exchange event.
type EventMarkets struct {
	City        string    `json:"city"`
	Horizon     Horizon   `json:"horizon"`
	EventTicker string    `json:"event_ticker"`
	Date        time.Time `json:"date"`
	Markets     []Market  `json:"markets"`
}
