package models

import "time"

type RegimeTrend string

const (
	TrendUp    RegimeTrend = "TREND_UP"
	TrendDown  RegimeTrend = "TREND_DOWN"
	TrendRange RegimeTrend = "RANGE"
)

type RegimeVolatility string

const (
	VolatilityLow  RegimeVolatility = "LO"
	VolatilityHigh RegimeVolatility = "HI"
)

// RegimeSample is one classification emitted by the regime engine.
// Time is zero when the backend timestamp did not parse.
type RegimeSample struct {
	Time       time.Time
	Trend      RegimeTrend
	Volatility RegimeVolatility
}

// RegimeStatus is the regime engine's view of one symbol. History may be unordered
// and may contain duplicate timestamps.
type RegimeStatus struct {
	Symbol          string
	Current         *RegimeSample
	Changes         int64
	TrendShare      map[string]float64
	VolatilityShare map[string]float64
	Samples         int64
	History         []RegimeSample
}
