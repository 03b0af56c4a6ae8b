package models

import "time"

// Candle is one kline. CloseTime is the x coordinate used on the price chart.
type Candle struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// SeriesPoint is one (timestamp, value) sample of a line series.
type SeriesPoint struct {
	Time  time.Time
	Value float64
}

// AtrBandPoint is one sample of the ATR channel.
type AtrBandPoint struct {
	Time  time.Time
	Mid   float64
	Upper float64
	Lower float64
}

// SupertrendPoint is one sample of the supertrend indicator.
type SupertrendPoint struct {
	Time  time.Time
	Trend string
	Line  float64
}
