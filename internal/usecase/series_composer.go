package usecase

import (
	"fmt"
	"time"

	"BotDash/internal/chart"
	"BotDash/internal/domain/models"
	"BotDash/pkg/util"
)

// Dataset labels on the price chart.
const (
	LabelPrice        = "Price"
	LabelVWAP         = "VWAP"
	LabelAnchoredVWAP = "Anchored VWAP"
	LabelATRUpper     = "ATR Upper"
	LabelATRLower     = "ATR Lower"
	LabelSupertrend   = "Supertrend"
	LabelVolume       = "Volume"
	LabelEquity       = "Equity"
	LabelDrawdown     = "Drawdown"
)

// OverlayLabels are the toggle-gated datasets of the price chart.
var OverlayLabels = []string{LabelVWAP, LabelAnchoredVWAP, LabelATRUpper, LabelATRLower, LabelSupertrend}

const placeholder = "--"

type markerStyle struct {
	Shape string
	Color string
}

var markerStyles = map[models.AnnotationType]markerStyle{
	models.AnnotationBuy:   {Shape: "triangle", Color: "#22c55e"},
	models.AnnotationSell:  {Shape: "triangle", Color: "#ef4444"},
	models.AnnotationSL:    {Shape: "rectRot", Color: "#fb923c"},
	models.AnnotationTP:    {Shape: "rect", Color: "#60a5fa"},
	models.AnnotationBE:    {Shape: "rectRounded", Color: "#9ca3af"},
	models.AnnotationTrail: {Shape: "circle", Color: "#facc15"},
}

var defaultMarker = markerStyle{Shape: "circle", Color: "#f59e0b"}

// MarkerStyle returns the point shape and colour for an annotation type.
// Unknown types get the default style.
func MarkerStyle(t models.AnnotationType) (shape, color string) {
	s, ok := markerStyles[t]
	if !ok {
		s = defaultMarker
	}
	return s.Shape, s.Color
}

// Charts is the composed set of dashboard charts for one cycle.
type Charts struct {
	Price    chart.Config `json:"price"`
	Volume   chart.Config `json:"volume"`
	Equity   chart.Config `json:"equity"`
	Drawdown chart.Config `json:"drawdown"`
}

// SeriesComposer projects fetched records into renderer-ready chart configs.
// It holds no state.
type SeriesComposer struct{}

func NewSeriesComposer() *SeriesComposer {
	return &SeriesComposer{}
}

func (c *SeriesComposer) Compose(res *FetchResult, t models.Toggles) Charts {
	return Charts{
		Price:    c.Price(res, t),
		Volume:   c.Volume(res.Candles, t),
		Equity:   c.Equity(res.Equity),
		Drawdown: c.Drawdown(res.Drawdown),
	}
}

// Price builds the candlestick chart with markers and overlays. An overlay appears only
// when its toggle is on and it has data.
func (c *SeriesComposer) Price(res *FetchResult, t models.Toggles) chart.Config {
	cfg := chart.Config{
		Kind:   chart.KindPrice,
		Type:   chart.TypeCandlestick,
		Labels: candleLabels(res.Candles),
	}

	cfg.Datasets = append(cfg.Datasets, chart.Dataset{
		Label:       LabelPrice,
		Type:        chart.TypeCandlestick,
		Candles:     candleOHLC(res.Candles),
		BorderColor: "#1f6feb",
		Colors:      &chart.UpDown{Up: "#16a34a", Down: "#dc2626", Unchanged: "#6b7280"},
	})

	if t.Markers {
		cfg.Datasets = append(cfg.Datasets, c.Markers(res.Annotations)...)
	}
	if t.VWAP && res.VWAP.Present() {
		cfg.Datasets = append(cfg.Datasets, lineDataset(LabelVWAP, "#fbbf24", 1.5, seriesPoints(res.VWAP.Data()), 0.1))
	}
	if t.Anchored && res.AnchoredVWAP.Present() {
		ds := lineDataset(LabelAnchoredVWAP, "#a855f7", 1.2, seriesPoints(res.AnchoredVWAP.Data()), 0.1)
		ds.BorderDash = []int{4, 4}
		cfg.Datasets = append(cfg.Datasets, ds)
	}
	if t.ATR && res.ATRBands.Present() {
		bands := res.ATRBands.Data()
		upper := make([]chart.Point, 0, len(bands))
		lower := make([]chart.Point, 0, len(bands))
		for _, b := range bands {
			upper = append(upper, chart.Point{X: b.Time, Y: b.Upper})
			lower = append(lower, chart.Point{X: b.Time, Y: b.Lower})
		}
		up := lineDataset(LabelATRUpper, "rgba(59,130,246,0.6)", 1, upper, 0)
		up.Fill = "+1"
		cfg.Datasets = append(cfg.Datasets, up, lineDataset(LabelATRLower, "rgba(59,130,246,0.6)", 1, lower, 0))
	}
	if t.Supertrend && res.Supertrend.Present() {
		st := res.Supertrend.Data()
		pts := make([]chart.Point, 0, len(st))
		for _, p := range st {
			pts = append(pts, chart.Point{X: p.Time, Y: p.Line})
		}
		cfg.Datasets = append(cfg.Datasets, lineDataset(LabelSupertrend, "#ef4444", 1.3, pts, 0))
	}
	return cfg
}

// Markers fans annotations out into one single-point scatter dataset each.
func (c *SeriesComposer) Markers(anns []models.Annotation) []chart.Dataset {
	out := make([]chart.Dataset, 0, len(anns))
	for _, a := range anns {
		shape, color := MarkerStyle(a.Type)
		price := a.Price
		out = append(out, chart.Dataset{
			Label:                string(a.Type),
			Type:                 chart.TypeScatter,
			Points:               []chart.Point{{X: a.Time, Y: a.Price}},
			PointRadius:          6,
			PointStyle:           shape,
			PointBackgroundColor: color,
			PointBorderColor:     "#111827",
			PointBorderWidth:     1,
			Tooltip: &chart.Tooltip{
				Label: fmt.Sprintf("%s @ %s qty %s PnL %s fee %s slippage %s",
					a.Type, fmtNum(&price), fmtNum(a.Qty), fmtNum(a.PnL), fmtNum(a.Fee), fmtNum(a.SlippageBps)),
				AfterLabel: a.Text,
			},
		})
	}
	return out
}

// Volume builds the volume bars. The chart is hidden, not dropped, when the toggle is off.
func (c *SeriesComposer) Volume(candles []models.Candle, t models.Toggles) chart.Config {
	pts := make([]chart.Point, 0, len(candles))
	for _, k := range candles {
		pts = append(pts, chart.Point{X: k.CloseTime, Y: k.Volume})
	}
	return chart.Config{
		Kind:   chart.KindVolume,
		Type:   chart.TypeBar,
		Labels: candleLabels(candles),
		Datasets: []chart.Dataset{{
			Label:           LabelVolume,
			Type:            chart.TypeBar,
			Points:          pts,
			BackgroundColor: "rgba(59,130,246,0.35)",
		}},
		Hidden: !t.Volume,
	}
}

func (c *SeriesComposer) Equity(points []models.SeriesPoint) chart.Config {
	return chart.Config{
		Kind:     chart.KindEquity,
		Type:     chart.TypeLine,
		Labels:   seriesLabels(points),
		Datasets: []chart.Dataset{lineDataset(LabelEquity, "#10b981", 1.5, seriesPoints(points), 0.1)},
	}
}

func (c *SeriesComposer) Drawdown(points []models.SeriesPoint) chart.Config {
	ds := lineDataset(LabelDrawdown, "#f97316", 1.5, seriesPoints(points), 0.1)
	ds.Fill = "origin"
	ds.BackgroundColor = "rgba(249,115,22,0.12)"
	return chart.Config{
		Kind:     chart.KindDrawdown,
		Type:     chart.TypeLine,
		Labels:   seriesLabels(points),
		Datasets: []chart.Dataset{ds},
	}
}

// CountOverlays returns how many toggle-gated datasets cfg carries.
func CountOverlays(cfg chart.Config) int {
	n := 0
	for _, l := range OverlayLabels {
		if cfg.HasDataset(l) {
			n++
		}
	}
	return n
}

func lineDataset(label, color string, width float64, pts []chart.Point, tension float64) chart.Dataset {
	return chart.Dataset{
		Label:       label,
		Type:        chart.TypeLine,
		Points:      pts,
		BorderColor: color,
		BorderWidth: width,
		PointRadius: 0,
		Tension:     tension,
	}
}

func candleOHLC(candles []models.Candle) []chart.OHLC {
	out := make([]chart.OHLC, 0, len(candles))
	for _, k := range candles {
		out = append(out, chart.OHLC{X: k.CloseTime, O: k.Open, H: k.High, L: k.Low, C: k.Close})
	}
	return out
}

func candleLabels(candles []models.Candle) []time.Time {
	out := make([]time.Time, 0, len(candles))
	for _, k := range candles {
		out = append(out, k.CloseTime)
	}
	return out
}

func seriesPoints(points []models.SeriesPoint) []chart.Point {
	out := make([]chart.Point, 0, len(points))
	for _, p := range points {
		out = append(out, chart.Point{X: p.Time, Y: p.Value})
	}
	return out
}

func seriesLabels(points []models.SeriesPoint) []time.Time {
	out := make([]time.Time, 0, len(points))
	for _, p := range points {
		out = append(out, p.Time)
	}
	return out
}

func fmtNum(v *float64) string {
	return util.FormatOptional(v, 2, placeholder)
}

// fmtPct renders a ratio as a percentage.
func fmtPct(v *float64) string {
	if v == nil {
		return placeholder
	}
	return util.FormatFloat(*v*100, 2) + "%"
}
