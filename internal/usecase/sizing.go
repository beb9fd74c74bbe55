package usecase

import (
	"fmt"

	"TempQuant/internal/domain/models"
)

// Sizer turns an edge into a fractional-Kelly position size. All amounts
// are cents; a zero-contract result with a reason is a normal decline.
type Sizer struct{}

func NewSizer() *Sizer {
	return &Sizer{}
}

// SizingInput carries everything one sizing decision needs.
type SizingInput struct {
	BankrollCents int64
	Edge          int // percentage points
	YesPriceCents int
	Multiplier    float64
	MinTradeCents int64
	MaxTradeCents int64
}

// Size computes the fractional-Kelly amount. The returned amount is always
// an exact multiple of the yes price.
func (s *Sizer) Size(in SizingInput) models.SizingResult {
	if in.Edge <= 0 {
		return models.SizingResult{Reason: models.ReasonNoEdge}
	}
	if in.BankrollCents <= 0 {
		return models.SizingResult{Reason: models.ReasonNoBankroll}
	}
	if in.YesPriceCents < 1 || in.YesPriceCents > 99 {
		return models.SizingResult{Reason: models.ReasonInvalidPrice}
	}

	kelly := float64(in.Edge) / float64(100-in.YesPriceCents)
	adjusted := kelly * in.Multiplier
	amount := int64(float64(in.BankrollCents) * adjusted)
	if amount > in.MaxTradeCents {
		amount = in.MaxTradeCents
	}

	price := int64(in.YesPriceCents)
	if amount < in.MinTradeCents {
		// Fallback: a single contract is still worth taking when we can
		// afford it inside all limits.
		if price <= in.MaxTradeCents && price <= in.BankrollCents {
			amount = price
		} else {
			return models.SizingResult{Reason: models.ReasonBelowMin}
		}
	}

	contracts := int(amount / price)
	if contracts < 1 {
		return models.SizingResult{Reason: models.ReasonUnaffordable}
	}
	amount = int64(contracts) * price

	return models.SizingResult{
		AmountCents: amount,
		Contracts:   contracts,
		Rationale: fmt.Sprintf("kelly %.3f x %.2f of %d¢ bankroll -> %d contracts at %d¢",
			kelly, in.Multiplier, in.BankrollCents, contracts, in.YesPriceCents),
	}
}
