package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func minutes(ns ...int) []time.Time {
	out := make([]time.Time, 0, len(ns))
	for _, n := range ns {
		out = append(out, base.Add(time.Duration(n)*time.Minute))
	}
	return out
}

func newCharts() (*Instance, *Instance, *Instance) {
	price := New(Config{Kind: KindPrice, Labels: minutes(0, 1, 2, 3, 4)})
	equity := New(Config{Kind: KindEquity, Labels: minutes(0, 2, 4)})
	drawdown := New(Config{Kind: KindDrawdown, Labels: minutes(0, 1, 2, 3, 4)})
	return price, equity, drawdown
}

func TestPointerMoveActivatesMatchingIndexOnBothCompanions(t *testing.T) {
	price, equity, drawdown := newCharts()
	s := NewSynchronizer()
	s.Register(price, equity, drawdown)

	res := s.PointerMove(base.Add(2*time.Minute + 10*time.Second))

	require.True(t, res.Matched)
	assert.Equal(t, 2, res.PrimaryIndex)
	assert.True(t, res.Time.Equal(base.Add(2*time.Minute)))
	require.Len(t, res.Highlights, 2)

	assert.Equal(t, []ActiveElement{{DatasetIndex: 0, Index: 1}}, equity.State().Active)
	assert.Equal(t, []ActiveElement{{DatasetIndex: 0, Index: 1}}, equity.State().Tooltip)
	assert.Equal(t, []ActiveElement{{DatasetIndex: 0, Index: 2}}, drawdown.State().Active)
	assert.Equal(t, 2, equity.State().Renders)
	assert.Equal(t, 2, drawdown.State().Renders)
	assert.Empty(t, price.State().Active)
}

func TestPointerMoveLeavesCompanionWithoutTimestampUntouched(t *testing.T) {
	price, equity, drawdown := newCharts()
	s := NewSynchronizer()
	s.Register(price, equity, drawdown)

	s.PointerMove(base)
	require.Equal(t, []ActiveElement{{DatasetIndex: 0, Index: 0}}, equity.State().Active)
	rendersBefore := equity.State().Renders

	res := s.PointerMove(base.Add(time.Minute))

	require.Len(t, res.Highlights, 1)
	assert.Equal(t, KindDrawdown, res.Highlights[0].Chart)
	assert.Equal(t, []ActiveElement{{DatasetIndex: 0, Index: 0}}, equity.State().Active)
	assert.Equal(t, rendersBefore, equity.State().Renders)
	assert.Equal(t, []ActiveElement{{DatasetIndex: 0, Index: 1}}, drawdown.State().Active)
}

func TestPointerMoveNearestXTiesGoEarlier(t *testing.T) {
	price, equity, drawdown := newCharts()
	s := NewSynchronizer()
	s.Register(price, equity, drawdown)

	res := s.PointerMove(base.Add(90 * time.Second))
	assert.Equal(t, 1, res.PrimaryIndex)

	res = s.PointerMove(base.Add(-time.Hour))
	assert.Equal(t, 0, res.PrimaryIndex)

	res = s.PointerMove(base.Add(time.Hour))
	assert.Equal(t, 4, res.PrimaryIndex)
}

func TestPointerLeaveClearsCompanions(t *testing.T) {
	price, equity, drawdown := newCharts()
	s := NewSynchronizer()
	s.Register(price, equity, drawdown)

	s.PointerMove(base.Add(4 * time.Minute))
	s.PointerLeave()

	assert.Empty(t, equity.State().Active)
	assert.Empty(t, equity.State().Tooltip)
	assert.Empty(t, drawdown.State().Active)
	assert.Equal(t, 3, drawdown.State().Renders)
}

func TestPointerMoveWithoutCharts(t *testing.T) {
	s := NewSynchronizer()
	assert.False(t, s.PointerMove(base).Matched)
	s.PointerLeave()

	empty := New(Config{Kind: KindPrice})
	s.Register(empty)
	assert.False(t, s.PointerMove(base).Matched)
}

func TestDestroyedInstanceIgnoresUpdates(t *testing.T) {
	price, equity, drawdown := newCharts()
	s := NewSynchronizer()
	s.Register(price, equity, drawdown)

	equity.Destroy()
	s.PointerMove(base)

	st := equity.State()
	assert.True(t, st.Destroyed)
	assert.Empty(t, st.Active)
	assert.Equal(t, 1, st.Renders)

	price.Destroy()
	assert.False(t, s.PointerMove(base).Matched)
}
