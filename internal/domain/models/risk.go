package models

import "time"

// VarSnapshot is one persisted VaR evaluation. ReasonsJSON is kept verbatim.
type VarSnapshot struct {
	Time        time.Time
	Symbol      string
	Regime      string
	PresetKey   string
	PresetID    string
	ReasonsJSON string
	VaR         *float64
	CVaR        *float64
	QtyRatio    *float64
}

// ExecutionCostStats summarises slippage and queue time (transaction cost analysis).
type ExecutionCostStats struct {
	Samples        int64
	AverageBps     *float64
	AverageQueueMs *float64
	HourlyAverage  map[int]float64
}
