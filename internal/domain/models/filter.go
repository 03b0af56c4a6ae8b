package models

import "time"

// Interval is a kline interval code.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
)

// Intervals lists every supported interval in ascending length.
var Intervals = []Interval{
	Interval1m, Interval3m, Interval5m, Interval15m, Interval30m,
	Interval1h, Interval2h, Interval4h, Interval6h, Interval12h, Interval1d,
}

func (i Interval) Valid() bool {
	for _, v := range Intervals {
		if v == i {
			return true
		}
	}
	return false
}

// Side filters trades by direction. The empty value means "any".
type Side string

const (
	SideAny  Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderStatus filters trades by execution status. The empty value means "any".
type OrderStatus string

const (
	StatusAny             OrderStatus = ""
	StatusFilled          OrderStatus = "FILLED"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusNew             OrderStatus = "NEW"
	StatusRejected        OrderStatus = "REJECTED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusFilled, StatusPartiallyFilled, StatusCanceled, StatusNew, StatusRejected:
		return true
	}
	return false
}

// GroupBy is the summary aggregation bucket.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
	GroupByRange GroupBy = "range"
)

func (g GroupBy) Valid() bool {
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByRange:
		return true
	}
	return false
}

// Toggles are the overlay switches on the price chart.
// Anchored only has an effect when FilterState.AnchorTs is set.
type Toggles struct {
	VWAP       bool
	Anchored   bool
	ATR        bool
	Supertrend bool
	Volume     bool
	Markers    bool
}

// FilterState is the complete, URL-representable dashboard filter.
// Nil time pointers mean "not set".
type FilterState struct {
	Symbol   string
	Interval Interval
	From     *time.Time
	To       *time.Time
	Side     Side
	Status   OrderStatus
	GroupBy  GroupBy
	AnchorTs *time.Time
	Toggles  Toggles
}

// AnchoredActive reports whether the anchored VWAP overlay should be requested.
func (f FilterState) AnchoredActive() bool {
	return f.Toggles.Anchored && f.AnchorTs != nil
}

// FilterDefaults seeds a FilterState when the URL omits a value.
type FilterDefaults struct {
	Symbol   string
	Interval Interval
	From     *time.Time
	To       *time.Time
	GroupBy  GroupBy
}
