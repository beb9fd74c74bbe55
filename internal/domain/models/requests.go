package models

// Requests for the engine HTTP endpoints. Defined in domain for consistency
// and reuse.

type UpdateConfigRequest struct {
	Mode             string  `json:"mode" validate:"required,oneof=paused alert_only alert_then_trade autonomous"`
	MinEdge          int     `json:"min_edge" default:"15" validate:"gte=1,lte=99"`
	MaxTradeCents    int64   `json:"max_trade_cents" default:"2000" validate:"gte=1"`
	MaxDailyCents    int64   `json:"max_daily_spend_cents" default:"5000" validate:"gte=1"`
	KellyMultiplier  float64 `json:"kelly_multiplier" default:"0.25" validate:"gt=0,lte=1"`
	ScanIntervalMin  int     `json:"scan_interval_minutes" default:"30" validate:"gte=1,lte=1440"`
	MaxTradesPerScan int     `json:"max_trades_per_scan" default:"3" validate:"gte=1,lte=20"`
}

type ConfirmTradeRequest struct {
	Token string `json:"token" validate:"required"`
}
