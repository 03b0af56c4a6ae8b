package usecase

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BotDash/internal/domain/models"
)

func banditSource() *fakeSource {
	src := newFakeSource()
	src.setBody(PathBanditArms, `[
		{"id":"a1","presetId":"p-low","status":"ACTIVE","role":"CHAMPION","stats":{"pulls":10,"mean":0.1,"variance":0.01}},
		{"id":"a2","presetId":"p-high","status":"ACTIVE","role":"CHALLENGER","stats":{"pulls":4,"mean":"0.35","variance":"0.2"}}
	]`)
	src.setBody(PathBanditPulls, `[
		{"id":2,"armId":"a2","timestamp":"2024-03-01T10:05:00Z","reward":"0.5","decisionId":"d2"},
		{"id":1,"armId":"a1","timestamp":"2024-03-01T10:00:00Z","reward":"-0.25","decisionId":"d1"},
		{"id":3,"armId":"a1","timestamp":"2024-03-01T10:10:00Z"}
	]`)
	src.setBody(PathBanditOverview, `{"algorithm":"THOMPSON","candidateShare":"0.2","totalPulls":14,"candidatePulls":4}`)
	return src
}

func TestFetchBanditComposesPanel(t *testing.T) {
	src := banditSource()
	panel, err := NewBanditPanelService(src, nil).FetchBandit(context.Background(), BanditQuery{
		Symbol: "BTCUSDT", Regime: "TREND_UP", Side: "BUY",
	})
	require.NoError(t, err)

	require.Len(t, panel.Arms, 2)
	assert.Equal(t, "a2", panel.Arms[0].ID, "highest mean first")
	assert.Equal(t, "0.3500", panel.Arms[0].Mean)
	assert.Equal(t, "THOMPSON", panel.Algorithm)
	assert.Equal(t, "20.00%", panel.CandidateShare)

	require.Len(t, panel.Pulls, 3)
	assert.Equal(t, "--", panel.Pulls[2].Reward)

	rewards := panel.Rewards.Datasets[0].Points
	require.Len(t, rewards, 2)
	assert.Equal(t, -0.25, rewards[0].Y)
	assert.Equal(t, 0.5, rewards[1].Y)

	calls := src.paths()
	assert.Equal(t, "50", calls[PathBanditPulls].Get("limit"))
	assert.Equal(t, "TREND_UP", calls[PathBanditArms].Get("regime"))
}

func TestFetchBanditSkipsPullsWithoutContext(t *testing.T) {
	src := banditSource()
	panel, err := NewBanditPanelService(src, nil).FetchBandit(context.Background(), BanditQuery{Symbol: "BTCUSDT"})
	require.NoError(t, err)

	assert.Empty(t, panel.Pulls)
	assert.NotContains(t, src.paths(), PathBanditPulls)
	assert.False(t, src.paths()[PathBanditArms].Has("regime"))
}

func TestFetchBanditFailure(t *testing.T) {
	src := banditSource()
	src.fail[PathBanditOverview] = errors.New("503")

	_, err := NewBanditPanelService(src, nil).FetchBandit(context.Background(), BanditQuery{Symbol: "BTCUSDT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bandit overview")
}

type stubURLs struct{}

func (stubURLs) URL(path string, params url.Values) string {
	return "http://backend" + path + "?" + params.Encode()
}

func TestExportLinksCarryFilterWithoutToggles(t *testing.T) {
	f := models.FilterState{
		Symbol: "BTCUSDT", Interval: models.Interval1h, GroupBy: models.GroupByDay,
		From:    ts("2024-03-01T00:00:00Z"),
		Toggles: models.Toggles{VWAP: true},
	}

	links := BuildExportLinks(stubURLs{}, f)
	assert.Equal(t,
		"http://backend/api/reports/trades/export.csv?from=2024-03-01T00%3A00%3A00.000Z&groupBy=day&interval=1h&symbol=BTCUSDT",
		links.TradesCSV)
	assert.Contains(t, links.HeatmapCSV, "/api/reports/heatmap/export.csv?")
	assert.NotContains(t, links.SummaryCSV, "vwap")

	u, err := ExportURL(stubURLs{}, ExportTradesJSON, f)
	require.NoError(t, err)
	assert.Equal(t, links.TradesJSON, u)

	_, err = ExportURL(stubURLs{}, "pdf", f)
	assert.Error(t, err)
}
