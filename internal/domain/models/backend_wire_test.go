package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireKlineAcceptsNumbersAndDecimalStrings(t *testing.T) {
	raw := `[
		{"openTime":"2024-01-01T00:00:00Z","closeTime":"2024-01-01T00:00:59.999Z","open":"42000.10","high":42100,"low":"41950.5","close":42050,"volume":"12.5"},
		{"openTime":1704067260000,"closeTime":1704067319999,"open":1,"high":2,"low":0.5,"close":1.5,"volume":null}
	]`
	var ws []WireKline
	require.NoError(t, json.Unmarshal([]byte(raw), &ws))

	c := ws[0].ToModel()
	assert.InDelta(t, 42000.10, c.Open, 1e-9)
	assert.InDelta(t, 41950.5, c.Low, 1e-9)
	assert.Equal(t, 2024, c.CloseTime.Year())

	c = ws[1].ToModel()
	assert.Equal(t, time.UnixMilli(1704067319999).UTC(), c.CloseTime)
	assert.Zero(t, c.Volume)
}

func TestWireTimeForms(t *testing.T) {
	var v struct {
		A WireTime `json:"a"`
		B WireTime `json:"b"`
		C WireTime `json:"c"`
		D WireTime `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"not-a-time","b":1700000000.5,"c":null,"d":"2024-05-06T07:08"}`), &v))

	assert.True(t, v.A.IsZero())
	assert.Equal(t, int64(1700000000), v.B.Unix())
	assert.Equal(t, 500*time.Millisecond, time.Duration(v.B.Nanosecond()))
	assert.True(t, v.C.IsZero())
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC), v.D.Time)
}

func TestWireTradeAbsentNumbersStayNil(t *testing.T) {
	var w WireTrade
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"symbol":"BTCUSDT","side":"BUY","price":"100.5","pnl":null}`), &w))
	tr := w.ToModel()

	assert.Equal(t, "7", tr.ID)
	require.NotNil(t, tr.Price)
	assert.InDelta(t, 100.5, *tr.Price, 1e-9)
	assert.Nil(t, tr.PnL)
	assert.Nil(t, tr.ExecutedAt)
}

func TestWireStatusOverviewOptionalSections(t *testing.T) {
	var w WireStatusOverview
	require.NoError(t, json.Unmarshal([]byte(`{"trading":{"mode":"LIVE","killSwitch":false,"liveEnabled":true},"var":{"ratio":"0.85"}}`), &w))
	s := w.ToModel()

	require.NotNil(t, s.Trading)
	assert.Equal(t, ModeLive, s.Trading.Mode)
	require.NotNil(t, s.VaR)
	require.NotNil(t, s.VaR.Ratio)
	assert.InDelta(t, 0.85, *s.VaR.Ratio, 1e-9)
	assert.Nil(t, s.Drift)
	assert.Nil(t, s.Health)
	assert.Nil(t, s.Allocator)
	assert.Empty(t, s.Anomalies)
}

func TestWireStatusOverviewInactiveAnomaly(t *testing.T) {
	var w WireStatusOverview
	raw := `{"trading":{"mode":"LIVE","liveEnabled":true},"var":{"ratio":0.85},"anomaly":{"active":false}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &w))

	s := w.ToModel()
	require.NotNil(t, s.Trading)
	assert.Empty(t, s.Anomalies)
}

func TestWireStatusOverviewActiveAnomaly(t *testing.T) {
	var w WireStatusOverview
	raw := `{"anomaly":{"symbol":"BTCUSDT","metric":"SPREAD","severity":"HIGH","action":"PAUSE",
		"value":12.5,"zScore":4.2,"triggeredAt":"2024-03-01T10:00:00Z","expiresAt":"2024-03-01T10:15:00Z",
		"cause":"spread blowout","sparkline":[1,2,3],"active":true}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &w))

	s := w.ToModel()
	require.Len(t, s.Anomalies, 1)
	a := s.Anomalies[0]
	assert.Equal(t, "BTCUSDT", a.Symbol)
	assert.Equal(t, "SPREAD", a.Metric)
	assert.Equal(t, "PAUSE", a.Action)
	require.NotNil(t, a.ZScore)
	assert.InDelta(t, 4.2, *a.ZScore, 1e-9)
	require.NotNil(t, a.ExpiresAt)
	assert.Equal(t, 15*time.Minute, a.ExpiresAt.Sub(*a.TriggeredAt))

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"zScore":4.2`)
	assert.Contains(t, string(out), `"symbol":"BTCUSDT"`)
}

func TestWireStatusOverviewNullNumbersStayUnknown(t *testing.T) {
	var w WireStatusOverview
	raw := `{"var":{"ratio":null,"limit":null},"health":{"healthy":true,"apiErrorRatePct":null}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &w))

	s := w.ToModel()
	require.NotNil(t, s.VaR)
	assert.Nil(t, s.VaR.Ratio)
	require.NotNil(t, s.Health)
	assert.Nil(t, s.Health.APIErrorRatePct)
}

func TestWireRegimeNormalisesShortTrendNames(t *testing.T) {
	var w WireRegimeResponse
	raw := `{"symbol":"BTCUSDT","status":{"symbol":"BTCUSDT","regime":{"trend":"UP","volatility":"HI","timestamp":"2024-01-01T00:00:00Z"},
		"history":[{"trend":"DOWN","volatility":"LO","ts":"2024-01-01T00:00:00Z"},{"trend":"RANGE","volatility":"LO","timestamp":"garbage"}]}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	s := w.ToModel()

	require.NotNil(t, s.Current)
	assert.Equal(t, TrendUp, s.Current.Trend)
	require.Len(t, s.History, 2)
	assert.Equal(t, TrendDown, s.History[0].Trend)
	assert.False(t, s.History[0].Time.IsZero())
	assert.True(t, s.History[1].Time.IsZero())
}

func TestWireReasonsKeepsTextVerbatim(t *testing.T) {
	var ws []WireVarSnapshot
	raw := `[{"reasonsJson":"[\"vol\",\"dd\"]","var":"0.01"},{"reasonsJson":{"a":1}},{"reasonsJson":"{broken"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &ws))

	assert.Equal(t, `["vol","dd"]`, ws[0].ToModel().ReasonsJSON)
	assert.Equal(t, `{"a":1}`, ws[1].ToModel().ReasonsJSON)
	assert.Equal(t, `{broken`, ws[2].ToModel().ReasonsJSON)
}

func TestWireExecutionCostHourKeys(t *testing.T) {
	var w WireExecutionCost
	require.NoError(t, json.Unmarshal([]byte(`{"samples":3,"averageBps":"1.5","hourlyAverage":{"0":1,"13":"2.5","x":3}}`), &w))
	s := w.ToModel()

	assert.Equal(t, int64(3), s.Samples)
	require.NotNil(t, s.AverageBps)
	assert.InDelta(t, 1.5, *s.AverageBps, 1e-9)
	assert.Nil(t, s.AverageQueueMs)
	assert.Len(t, s.HourlyAverage, 2)
	assert.InDelta(t, 2.5, s.HourlyAverage[13], 1e-9)
}
