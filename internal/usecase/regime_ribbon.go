package usecase

import (
	"fmt"
	"sort"
	"time"

	"BotDash/internal/domain/models"
)

const (
	RibbonWindow = 60
	// RibbonTail is the duration given to the newest sample when the history has no
	// positive gap to borrow from. Otherwise it takes the smallest observed gap.
	RibbonTail   = time.Minute
	NoDataLegend = "no data"
)

// RibbonSegment is one regime sample drawn as a block whose width is its share of
// elapsed time.
type RibbonSegment struct {
	Start      time.Time               `json:"start"`
	Duration   time.Duration           `json:"-"`
	DurationMs int64                   `json:"durationMs"`
	Weight     float64                 `json:"weight"`
	Trend      models.RegimeTrend      `json:"trend"`
	Volatility models.RegimeVolatility `json:"volatility"`
	Color      string                  `json:"color"`
}

// Ribbon is the regime timeline. Legend reads NoDataLegend when there are no segments.
type Ribbon struct {
	Segments []RibbonSegment `json:"segments"`
	Total    time.Duration   `json:"-"`
	TotalMs  int64           `json:"totalMs"`
	Legend   string          `json:"legend"`
}

func (r Ribbon) Empty() bool { return len(r.Segments) == 0 }

// RegimeRibbonBuilder turns an unordered regime history into duration-weighted segments.
type RegimeRibbonBuilder struct {
	window int
	tail   time.Duration
}

func NewRegimeRibbonBuilder() *RegimeRibbonBuilder {
	return &RegimeRibbonBuilder{window: RibbonWindow, tail: RibbonTail}
}

func (b *RegimeRibbonBuilder) Build(samples []models.RegimeSample) Ribbon {
	valid := make([]models.RegimeSample, 0, len(samples))
	for _, s := range samples {
		if !s.Time.IsZero() {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return Ribbon{Segments: []RibbonSegment{}, Legend: NoDataLegend}
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Time.Before(valid[j].Time) })
	if len(valid) > b.window {
		valid = valid[len(valid)-b.window:]
	}

	tail := b.tailFor(valid)
	r := Ribbon{Segments: make([]RibbonSegment, 0, len(valid))}
	for i, s := range valid {
		d := tail
		if i+1 < len(valid) {
			d = valid[i+1].Time.Sub(s.Time)
		}
		r.Total += d
		r.Segments = append(r.Segments, RibbonSegment{
			Start:      s.Time,
			Duration:   d,
			DurationMs: d.Milliseconds(),
			Trend:      s.Trend,
			Volatility: s.Volatility,
			Color:      regimeColor(s.Trend, s.Volatility),
		})
	}
	r.TotalMs = r.Total.Milliseconds()
	for i := range r.Segments {
		r.Segments[i].Weight = float64(r.Segments[i].Duration) / float64(r.Total)
	}

	last := valid[len(valid)-1]
	r.Legend = fmt.Sprintf("%s / %s", last.Trend, last.Volatility)
	return r
}

// tailFor returns the smallest positive gap between sorted samples, or the builder's
// fallback tail.
func (b *RegimeRibbonBuilder) tailFor(sorted []models.RegimeSample) time.Duration {
	var smallest time.Duration
	for i := 1; i < len(sorted); i++ {
		if gap := sorted[i].Time.Sub(sorted[i-1].Time); gap > 0 && (smallest == 0 || gap < smallest) {
			smallest = gap
		}
	}
	if smallest == 0 {
		return b.tail
	}
	return smallest
}

func regimeColor(t models.RegimeTrend, v models.RegimeVolatility) string {
	alpha := "0.45"
	if v == models.VolatilityHigh {
		alpha = "0.9"
	}
	switch t {
	case models.TrendUp:
		return "rgba(22,163,74," + alpha + ")"
	case models.TrendDown:
		return "rgba(220,38,38," + alpha + ")"
	default:
		return "rgba(107,114,128," + alpha + ")"
	}
}
