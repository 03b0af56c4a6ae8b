package usecase

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BotDash/internal/domain/models"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	t = t.UTC()
	return &t
}

func testDefaults() models.FilterDefaults {
	return models.FilterDefaults{
		Symbol:   "BTCUSDT",
		Interval: models.Interval5m,
		From:     ts("2024-03-01T00:00:00Z"),
		To:       ts("2024-03-02T00:00:00Z"),
		GroupBy:  models.GroupByWeek,
	}
}

func TestParseFilterEmptyQueryUsesDefaults(t *testing.T) {
	f := ParseFilter(url.Values{}, testDefaults())

	assert.Equal(t, "BTCUSDT", f.Symbol)
	assert.Equal(t, models.Interval5m, f.Interval)
	assert.Equal(t, models.GroupByWeek, f.GroupBy)
	require.NotNil(t, f.From)
	assert.True(t, f.From.Equal(*ts("2024-03-01T00:00:00Z")))
	assert.Nil(t, f.AnchorTs)
	assert.Equal(t, models.Toggles{VWAP: true, ATR: true, Volume: true, Markers: true}, f.Toggles)
}

func TestParseFilterInvalidValuesFallBack(t *testing.T) {
	q := url.Values{
		"interval": {"7m"},
		"from":     {"yesterday"},
		"to":       {"2024-03-05T10:30"},
		"side":     {"HOLD"},
		"status":   {"LOST"},
		"groupBy":  {"year"},
		"anchorTs": {"not-a-time"},
	}
	f := ParseFilter(q, testDefaults())

	assert.Equal(t, models.Interval5m, f.Interval)
	assert.Nil(t, f.From)
	require.NotNil(t, f.To)
	assert.True(t, f.To.Equal(*ts("2024-03-05T10:30:00Z")))
	assert.Equal(t, models.SideAny, f.Side)
	assert.Equal(t, models.StatusAny, f.Status)
	assert.Equal(t, models.GroupByWeek, f.GroupBy)
	assert.Nil(t, f.AnchorTs)
	assert.False(t, f.Toggles.Anchored)
}

func TestParseFilterAnchorForcesAnchored(t *testing.T) {
	q := url.Values{"anchorTs": {"2024-03-01T06:00:00Z"}, "anchored": {"false"}}
	f := ParseFilter(q, testDefaults())

	require.NotNil(t, f.AnchorTs)
	assert.True(t, f.Toggles.Anchored)
	assert.True(t, f.AnchoredActive())
}

func TestParseFilterToggles(t *testing.T) {
	q := url.Values{
		"vwap":       {"false"},
		"atr":        {"0"},
		"supertrend": {"yes"},
		"volume":     {"false"},
		"markers":    {"true"},
	}
	f := ParseFilter(q, testDefaults())

	assert.False(t, f.Toggles.VWAP)
	assert.True(t, f.Toggles.ATR)
	assert.False(t, f.Toggles.Supertrend)
	assert.False(t, f.Toggles.Volume)
	assert.True(t, f.Toggles.Markers)

	f = ParseFilter(url.Values{"supertrend": {"true"}}, testDefaults())
	assert.True(t, f.Toggles.Supertrend)
}

func TestSerializeFilterOmitsAbsentFields(t *testing.T) {
	q := SerializeFilter(models.FilterState{
		Symbol:   "ETHUSDT",
		Interval: models.Interval1h,
		GroupBy:  models.GroupByDay,
	})

	assert.Equal(t, "ETHUSDT", q.Get("symbol"))
	assert.Equal(t, "1h", q.Get("interval"))
	assert.Equal(t, "day", q.Get("groupBy"))
	for _, k := range []string{"from", "to", "side", "status", "anchorTs"} {
		assert.False(t, q.Has(k), k)
	}
	assert.Equal(t, "false", q.Get("vwap"))
	assert.Equal(t, "false", q.Get("anchored"))
}

func TestSerializeParseRoundTrip(t *testing.T) {
	states := []models.FilterState{
		{
			Symbol: "BTCUSDT", Interval: models.Interval1m, GroupBy: models.GroupByDay,
			Toggles: models.Toggles{VWAP: true, ATR: true, Volume: true, Markers: true},
		},
		{
			Symbol: "ETHUSDT", Interval: models.Interval4h,
			From: ts("2024-01-01T00:00:00Z"), To: ts("2024-02-01T12:34:56Z"),
			Side: models.SideSell, Status: models.StatusPartiallyFilled, GroupBy: models.GroupByMonth,
			AnchorTs: ts("2024-01-15T08:00:00Z"),
			Toggles:  models.Toggles{Supertrend: true},
		},
		{
			Symbol: "SOLUSDT", Interval: models.Interval1d, GroupBy: models.GroupByRange,
			From:    ts("2023-06-01T00:00:00+02:00"),
			Toggles: models.Toggles{VWAP: true, Anchored: true, ATR: false, Supertrend: true, Volume: false, Markers: false},
		},
	}

	openDefaults := models.FilterDefaults{Symbol: "BTCUSDT", Interval: models.Interval1m, GroupBy: models.GroupByDay}
	for _, s := range states {
		first := SerializeFilter(s)
		again := SerializeFilter(ParseFilter(first, openDefaults))
		assert.Equal(t, first.Encode(), again.Encode(), s.Symbol)
	}
}

func TestFilterStateManagerDefaultsFollowLookback(t *testing.T) {
	m := NewFilterStateManager("BTCUSDT", models.Interval15m, models.GroupByDay, 6*time.Hour)
	m.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC) }

	f := m.Parse(url.Values{})
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), *f.To)
	assert.Equal(t, time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC), *f.From)

	open := NewFilterStateManager("BTCUSDT", models.Interval15m, models.GroupByDay, 0)
	f = open.Parse(url.Values{})
	assert.Nil(t, f.From)
	assert.Nil(t, f.To)
}

func TestFilterStateManagerValidate(t *testing.T) {
	m := NewFilterStateManager("BTCUSDT", models.Interval1m, models.GroupByDay, 0)

	ok := ParseFilter(url.Values{"from": {"2024-03-01T00:00:00Z"}, "to": {"2024-03-02T00:00:00Z"}}, testDefaults())
	assert.NoError(t, m.Validate(ok))

	inverted := ok
	inverted.From, inverted.To = ok.To, ok.From
	err := m.Validate(inverted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFilter))

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "from", verrs[0].Field())
	assert.Equal(t, "ltefield", verrs[0].Tag())

	noSymbol := ok
	noSymbol.Symbol = ""
	assert.ErrorIs(t, m.Validate(noSymbol), ErrInvalidFilter)
}
