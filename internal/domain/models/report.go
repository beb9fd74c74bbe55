package models

import "time"

// BreakerReport is the circuit breaker verdict for one evaluation. Multiple
// rules may fire together; all reasons are surfaced.
type BreakerReport struct {
	CanTrade bool     `json:"can_trade"`
	Reasons  []string `json:"reasons,omitempty"`
}

// ForecastErrorStats are realized forecast-error statistics, the feedback
// signal for the normal-model sigma.
type ForecastErrorStats struct {
	Samples      int     `json:"samples"`
	MeanError    float64 `json:"mean_error"`
	MeanAbsError float64 `json:"mean_abs_error"`
	Sigma        float64 `json:"sigma"` // sample standard deviation
}

// CalibrationBucket reports the actual win rate inside one 20-point
// confidence range.
type CalibrationBucket struct {
	LowPct  int     `json:"low_pct"`
	HighPct int     `json:"high_pct"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// CalibrationReport is diagnostic only; recalibration of live config is an
// explicit operator action.
type CalibrationReport struct {
	Errors  ForecastErrorStats  `json:"errors"`
	Buckets []CalibrationBucket `json:"buckets"`
}

// ScanReport summarizes one scheduler tick.
type ScanReport struct {
	Mode           Mode            `json:"mode"`
	StartedAt      time.Time       `json:"started_at"`
	Message        string          `json:"message"`
	Opportunities  []Opportunity   `json:"opportunities,omitempty"`
	Executed       []TradeOutcome  `json:"executed,omitempty"`
	Proposals      []TradeProposal `json:"proposals,omitempty"`
	ProviderErrors []string        `json:"provider_errors,omitempty"`
	Breaker        *BreakerReport  `json:"breaker,omitempty"`
}
