package models

// Mode is the engine operating mode. Transitions are operator-driven except
// the automatic autonomous→alert_only downgrade on a circuit breaker trip.
type Mode string

const (
	ModePaused         Mode = "paused"
	ModeAlertOnly      Mode = "alert_only"
	ModeAlertThenTrade Mode = "alert_then_trade"
	ModeAutonomous     Mode = "autonomous"
)

// Valid reports whether the mode is one of the four engine modes.
func (m Mode) Valid() bool {
	switch m {
	case ModePaused, ModeAlertOnly, ModeAlertThenTrade, ModeAutonomous:
		return true
	}
	return false
}

// Active reports whether scan cycles do any work in this mode.
func (m Mode) Active() bool {
	return m.Valid() && m != ModePaused
}

// TradingConfig is the persisted, runtime-mutable engine configuration.
// It is reloaded at the start of every scan cycle.
type TradingConfig struct {
	Mode               Mode    `json:"mode"`
	MinEdge            int     `json:"min_edge"` // percentage points
	MinTradeCents      int64   `json:"min_trade_cents"`
	MaxTradeCents      int64   `json:"max_trade_cents"`
	MaxDailySpendCents int64   `json:"max_daily_spend_cents"`
	KellyMultiplier    float64 `json:"kelly_multiplier"`
	ScanIntervalMin    int     `json:"scan_interval_minutes"`
	MaxTradesPerScan   int     `json:"max_trades_per_scan"`

	// Policy parameters; fixed constants in spirit but kept configurable.
	SigmaToday          float64 `json:"sigma_today"`
	SigmaTomorrow       float64 `json:"sigma_tomorrow"`
	NormalConfidenceCap int     `json:"normal_confidence_cap"` // percent
	StalenessCutoffHour int     `json:"staleness_cutoff_hour"` // local hour
	ProposalTTLMin      int     `json:"proposal_ttl_minutes"`
	PaperEnabled        bool    `json:"paper_enabled"`
}

// DefaultTradingConfig returns the engine defaults used when no persisted
// config exists yet.
func DefaultTradingConfig() TradingConfig {
	return TradingConfig{
		Mode:                ModeAlertOnly,
		MinEdge:             15,
		MinTradeCents:       100,
		MaxTradeCents:       2000,
		MaxDailySpendCents:  5000,
		KellyMultiplier:     0.25,
		ScanIntervalMin:     30,
		MaxTradesPerScan:    3,
		SigmaToday:          2.0,
		SigmaTomorrow:       3.0,
		NormalConfidenceCap: 90,
		StalenessCutoffHour: 14,
		ProposalTTLMin:      60,
		PaperEnabled:        true,
	}
}

// Normalize replaces out-of-range values with defaults so a hand-edited
// config file cannot wedge the engine.
func (c *TradingConfig) Normalize() {
	def := DefaultTradingConfig()
	if !c.Mode.Valid() {
		c.Mode = def.Mode
	}
	if c.MinEdge <= 0 || c.MinEdge > 99 {
		c.MinEdge = def.MinEdge
	}
	if c.MinTradeCents <= 0 {
		c.MinTradeCents = def.MinTradeCents
	}
	if c.MaxTradeCents <= 0 {
		c.MaxTradeCents = def.MaxTradeCents
	}
	if c.MaxDailySpendCents <= 0 {
		c.MaxDailySpendCents = def.MaxDailySpendCents
	}
	if c.KellyMultiplier <= 0 || c.KellyMultiplier > 1 {
		c.KellyMultiplier = def.KellyMultiplier
	}
	if c.ScanIntervalMin <= 0 {
		c.ScanIntervalMin = def.ScanIntervalMin
	}
	if c.MaxTradesPerScan <= 0 {
		c.MaxTradesPerScan = def.MaxTradesPerScan
	}
	if c.SigmaToday <= 0 {
		c.SigmaToday = def.SigmaToday
	}
	if c.SigmaTomorrow <= 0 {
		c.SigmaTomorrow = def.SigmaTomorrow
	}
	if c.NormalConfidenceCap <= 0 || c.NormalConfidenceCap > 100 {
		c.NormalConfidenceCap = def.NormalConfidenceCap
	}
	if c.StalenessCutoffHour <= 0 || c.StalenessCutoffHour > 23 {
		c.StalenessCutoffHour = def.StalenessCutoffHour
	}
	if c.ProposalTTLMin <= 0 {
		c.ProposalTTLMin = def.ProposalTTLMin
	}
}
