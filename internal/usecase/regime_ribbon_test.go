package usecase

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BotDash/internal/domain/models"
)

func at(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func TestRibbonOrdersSamplesAndWeighsByDuration(t *testing.T) {
	r := NewRegimeRibbonBuilder().Build([]models.RegimeSample{
		{Time: at(100), Trend: models.TrendRange, Volatility: models.VolatilityLow},
		{Time: at(50), Trend: models.TrendUp, Volatility: models.VolatilityHigh},
	})

	require.Len(t, r.Segments, 2)
	assert.Equal(t, models.TrendUp, r.Segments[0].Trend)
	assert.Equal(t, models.TrendRange, r.Segments[1].Trend)
	assert.Equal(t, 50*time.Millisecond, r.Segments[0].Duration)
	assert.Equal(t, 50*time.Millisecond, r.Segments[1].Duration, "tail borrows the smallest gap")
	assert.Equal(t, 100*time.Millisecond, r.Total)
	assert.InDelta(t, 0.5, r.Segments[0].Weight, 1e-9)
	assert.InDelta(t, 1.0, r.Segments[0].Weight+r.Segments[1].Weight, 1e-9)
	assert.Equal(t, "RANGE / LO", r.Legend)
	assert.False(t, r.Empty())
}

func TestRibbonEmptyInputHasNoDataLegend(t *testing.T) {
	for _, in := range [][]models.RegimeSample{nil, {}, {{Trend: models.TrendUp}}} {
		r := NewRegimeRibbonBuilder().Build(in)
		assert.True(t, r.Empty())
		assert.NotNil(t, r.Segments)
		assert.Equal(t, NoDataLegend, r.Legend)
	}
}

func TestRibbonDropsUnparseableAndKeepsDuplicatesStable(t *testing.T) {
	r := NewRegimeRibbonBuilder().Build([]models.RegimeSample{
		{Time: at(200), Trend: models.TrendDown, Volatility: models.VolatilityLow},
		{Trend: models.TrendUp},
		{Time: at(100), Trend: models.TrendUp, Volatility: models.VolatilityLow},
		{Time: at(100), Trend: models.TrendRange, Volatility: models.VolatilityHigh},
	})

	require.Len(t, r.Segments, 3)
	assert.Equal(t, models.TrendUp, r.Segments[0].Trend)
	assert.Equal(t, time.Duration(0), r.Segments[0].Duration)
	assert.Equal(t, models.TrendRange, r.Segments[1].Trend)
	assert.Equal(t, 100*time.Millisecond, r.Segments[1].Duration)
	assert.Equal(t, models.TrendDown, r.Segments[2].Trend)
	assert.Equal(t, 100*time.Millisecond, r.Segments[2].Duration)
}

func TestRibbonTailVisibleForMinuteSpacedSamples(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	in := make([]models.RegimeSample, 0, RibbonWindow)
	for i := 0; i < RibbonWindow; i++ {
		in = append(in, models.RegimeSample{Time: base.Add(time.Duration(i) * time.Minute), Trend: models.TrendUp})
	}

	r := NewRegimeRibbonBuilder().Build(in)
	require.Len(t, r.Segments, RibbonWindow)
	last := r.Segments[RibbonWindow-1]
	assert.Equal(t, time.Minute, last.Duration)
	assert.InDelta(t, 1.0/float64(RibbonWindow), last.Weight, 1e-9)
}

func TestRibbonSingleSampleUsesFallbackTail(t *testing.T) {
	r := NewRegimeRibbonBuilder().Build([]models.RegimeSample{{Time: at(0), Trend: models.TrendDown}})

	require.Len(t, r.Segments, 1)
	assert.Equal(t, RibbonTail, r.Segments[0].Duration)
	assert.InDelta(t, 1.0, r.Segments[0].Weight, 1e-9)
}

func TestRibbonJSONUsesMilliseconds(t *testing.T) {
	r := NewRegimeRibbonBuilder().Build([]models.RegimeSample{
		{Time: at(0), Trend: models.TrendUp},
		{Time: at(50), Trend: models.TrendRange},
	})

	out, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded struct {
		Segments []struct {
			DurationMs int64 `json:"durationMs"`
		} `json:"segments"`
		TotalMs int64 `json:"totalMs"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded.Segments, 2)
	assert.Equal(t, int64(50), decoded.Segments[0].DurationMs)
	assert.Equal(t, int64(100), decoded.TotalMs)
	assert.NotContains(t, string(out), "50000000")
}

func TestRibbonKeepsLatestWindow(t *testing.T) {
	in := make([]models.RegimeSample, 0, 75)
	for i := 74; i >= 0; i-- {
		in = append(in, models.RegimeSample{Time: at(int64(i) * 1000), Trend: models.TrendRange})
	}

	r := NewRegimeRibbonBuilder().Build(in)
	require.Len(t, r.Segments, RibbonWindow)
	assert.True(t, r.Segments[0].Start.Equal(at(15_000)))
	assert.True(t, r.Segments[RibbonWindow-1].Start.Equal(at(74_000)))
}

func TestRegimeColors(t *testing.T) {
	assert.Equal(t, "rgba(22,163,74,0.9)", regimeColor(models.TrendUp, models.VolatilityHigh))
	assert.Equal(t, "rgba(220,38,38,0.45)", regimeColor(models.TrendDown, models.VolatilityLow))
	assert.Equal(t, "rgba(107,114,128,0.45)", regimeColor("SIDEWAYS", ""))
}
