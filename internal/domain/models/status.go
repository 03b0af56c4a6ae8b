package models

import "time"

// StatusOverview is the bot's operational state. Every sub-object is optional.
type StatusOverview struct {
	Trading   *TradingStatus
	VaR       *VarStatus
	Drift     *DriftStatus
	Health    *HealthStatus
	Allocator *AllocatorStatus
	Anomalies []AnomalyAlert
}

type TradingMode string

const (
	ModeLive   TradingMode = "LIVE"
	ModeShadow TradingMode = "SHADOW"
	ModePaused TradingMode = "PAUSED"
)

type TradingStatus struct {
	Mode            TradingMode
	KillSwitch      bool
	LiveEnabled     bool
	MarketDataStale bool
	RiskFlags       []string
}

// VarStatus is the latest value-at-risk utilisation; Ratio is exposure over limit.
type VarStatus struct {
	VaR       *float64
	CVaR      *float64
	QtyRatio  *float64
	Exposure  *float64
	Limit     *float64
	Ratio     *float64
	Timestamp *time.Time
}

type DriftStage string

const (
	DriftNormal  DriftStage = "NORMAL"
	DriftReduced DriftStage = "REDUCED"
	DriftShadow  DriftStage = "SHADOW"
	DriftPaused  DriftStage = "PAUSED"
)

type DriftStatus struct {
	Stage            DriftStage
	SizingMultiplier *float64
}

type HealthStatus struct {
	Healthy         bool
	APIErrorRatePct *float64
	WSReconnects    int
	APISamples      int
}

type AllocatorStatus struct {
	Symbol           string
	Allowed          bool
	Reason           string
	SizingMultiplier *float64
}

// AnomalyAlert is an active market anomaly raised by the bot.
type AnomalyAlert struct {
	Symbol      string     `json:"symbol"`
	Metric      string     `json:"metric"`
	Severity    string     `json:"severity"`
	Action      string     `json:"action"`
	Value       *float64   `json:"value,omitempty"`
	ZScore      *float64   `json:"zScore,omitempty"`
	TriggeredAt *time.Time `json:"triggeredAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Cause       string     `json:"cause"`
}
