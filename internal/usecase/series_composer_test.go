package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BotDash/internal/chart"
	"BotDash/internal/domain/models"
)

func f64(v float64) *float64 { return &v }

func sampleResult() *FetchResult {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &FetchResult{
		Candles: []models.Candle{
			{OpenTime: t0, CloseTime: t0.Add(time.Minute), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
			{OpenTime: t0.Add(time.Minute), CloseTime: t0.Add(2 * time.Minute), Open: 1.5, High: 1.7, Low: 1.1, Close: 1.2, Volume: 4},
		},
		Annotations: []models.Annotation{
			{Time: t0.Add(time.Minute), Type: models.AnnotationBuy, Price: 1.5, Qty: f64(0.25), Text: "entry"},
			{Time: t0.Add(2 * time.Minute), Type: "HEDGE", Price: 1.2},
		},
		Equity:       []models.SeriesPoint{{Time: t0.Add(time.Minute), Value: 100}},
		Drawdown:     []models.SeriesPoint{{Time: t0.Add(time.Minute), Value: -0.02}},
		VWAP:         Enabled([]models.SeriesPoint{{Time: t0.Add(time.Minute), Value: 1.4}}),
		AnchoredVWAP: Enabled([]models.SeriesPoint{{Time: t0.Add(time.Minute), Value: 1.3}}),
		ATRBands:     Enabled([]models.AtrBandPoint{{Time: t0.Add(time.Minute), Mid: 1.4, Upper: 1.9, Lower: 0.9}}),
		Supertrend:   Enabled([]models.SupertrendPoint{{Time: t0.Add(time.Minute), Trend: "UP", Line: 1.0}}),
	}
}

func allOn() models.Toggles {
	return models.Toggles{VWAP: true, Anchored: true, ATR: true, Supertrend: true, Volume: true, Markers: true}
}

func TestPriceChartWithEverythingOn(t *testing.T) {
	cfg := NewSeriesComposer().Price(sampleResult(), allOn())

	assert.Equal(t, chart.KindPrice, cfg.Kind)
	assert.Equal(t, []string{
		LabelPrice, "BUY", "HEDGE", LabelVWAP, LabelAnchoredVWAP, LabelATRUpper, LabelATRLower, LabelSupertrend,
	}, cfg.DatasetLabels())
	assert.Equal(t, 5, CountOverlays(cfg))

	price := cfg.Datasets[0]
	require.Len(t, price.Candles, 2)
	assert.Equal(t, chart.OHLC{X: cfg.Labels[0], O: 1, H: 2, L: 0.5, C: 1.5}, price.Candles[0])
	assert.True(t, cfg.Labels[0].Equal(time.Date(2024, 3, 1, 0, 1, 0, 0, time.UTC)), "x is the close time")

	upper := cfg.Datasets[5]
	assert.Equal(t, "+1", upper.Fill)
	assert.Equal(t, 1.9, upper.Points[0].Y)
	assert.Equal(t, 0.9, cfg.Datasets[6].Points[0].Y)
	assert.Equal(t, []int{4, 4}, cfg.Datasets[4].BorderDash)
}

func TestMarkerStylesAndTooltip(t *testing.T) {
	ds := NewSeriesComposer().Markers(sampleResult().Annotations)
	require.Len(t, ds, 2)

	assert.Equal(t, chart.TypeScatter, ds[0].Type)
	assert.Equal(t, "triangle", ds[0].PointStyle)
	assert.Equal(t, "#22c55e", ds[0].PointBackgroundColor)
	assert.Equal(t, "BUY @ 1.50 qty 0.25 PnL -- fee -- slippage --", ds[0].Tooltip.Label)
	assert.Equal(t, "entry", ds[0].Tooltip.AfterLabel)

	assert.Equal(t, "circle", ds[1].PointStyle)
	assert.Equal(t, "#f59e0b", ds[1].PointBackgroundColor)

	for typ, want := range map[models.AnnotationType][2]string{
		models.AnnotationSell:  {"triangle", "#ef4444"},
		models.AnnotationSL:    {"rectRot", "#fb923c"},
		models.AnnotationTP:    {"rect", "#60a5fa"},
		models.AnnotationBE:    {"rectRounded", "#9ca3af"},
		models.AnnotationTrail: {"circle", "#facc15"},
	} {
		shape, color := MarkerStyle(typ)
		assert.Equal(t, want, [2]string{shape, color}, string(typ))
	}
}

func TestVWAPToggleOffDropsDataset(t *testing.T) {
	tg := allOn()
	tg.VWAP = false

	cfg := NewSeriesComposer().Price(sampleResult(), tg)
	assert.False(t, cfg.HasDataset(LabelVWAP))
	assert.True(t, cfg.HasDataset(LabelAnchoredVWAP))
}

func TestEnabledOverlayWithoutDataIsOmitted(t *testing.T) {
	res := sampleResult()
	res.Supertrend = Enabled([]models.SupertrendPoint{})
	res.ATRBands = Enabled[models.AtrBandPoint](nil)

	cfg := NewSeriesComposer().Price(res, allOn())
	assert.False(t, cfg.HasDataset(LabelSupertrend))
	assert.False(t, cfg.HasDataset(LabelATRUpper))
	assert.False(t, cfg.HasDataset(LabelATRLower))
}

func TestAllTogglesOffYieldsNoOverlays(t *testing.T) {
	res := sampleResult()
	res.VWAP = Disabled[models.SeriesPoint]()
	res.AnchoredVWAP = Disabled[models.SeriesPoint]()
	res.ATRBands = Disabled[models.AtrBandPoint]()
	res.Supertrend = Disabled[models.SupertrendPoint]()

	charts := NewSeriesComposer().Compose(res, models.Toggles{})
	assert.Equal(t, 0, CountOverlays(charts.Price))
	assert.Equal(t, []string{LabelPrice}, charts.Price.DatasetLabels())
	assert.True(t, charts.Volume.Hidden)
}

func TestVolumeEquityDrawdown(t *testing.T) {
	c := NewSeriesComposer()
	res := sampleResult()

	vol := c.Volume(res.Candles, allOn())
	assert.False(t, vol.Hidden)
	require.Len(t, vol.Datasets[0].Points, 2)
	assert.Equal(t, 4.0, vol.Datasets[0].Points[1].Y)

	eq := c.Equity(res.Equity)
	assert.Equal(t, chart.KindEquity, eq.Kind)
	assert.Len(t, eq.Labels, 1)

	dd := c.Drawdown(res.Drawdown)
	assert.Equal(t, "origin", dd.Datasets[0].Fill)
	assert.Equal(t, -0.02, dd.Datasets[0].Points[0].Y)

	empty := c.Equity(nil)
	assert.Empty(t, empty.Labels)
}
