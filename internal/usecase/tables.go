package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"BotDash/internal/domain/models"
	"BotDash/pkg/util"
)

const tradeTimeLayout = "2006-01-02 15:04"

// Heatmap grid extents: hours on x, weekdays on y.
const (
	heatmapMaxX = 23
	heatmapMaxY = 6
)

type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BuildKPI reads headline figures from the last (whole-range) summary bucket.
func BuildKPI(summary []models.SummaryBucket) []KPI {
	if len(summary) == 0 {
		return []KPI{}
	}
	r := summary[len(summary)-1]
	return []KPI{
		{Label: "Net PnL", Value: fmtNum(r.NetPnL)},
		{Label: "Trades", Value: strconv.FormatInt(r.Trades, 10)},
		{Label: "Win Rate", Value: fmtPct(r.WinRate)},
		{Label: "Profit Factor", Value: fmtNum(r.ProfitFactor)},
		{Label: "Max DD", Value: fmtPct(r.MaxDrawdown)},
		{Label: "Sharpe", Value: fmtNum(r.Sharpe)},
		{Label: "Sortino", Value: fmtNum(r.Sortino)},
	}
}

type TradeRow struct {
	ExecutedAt   string `json:"executedAt"`
	Symbol       string `json:"symbol"`
	Side         string `json:"side"`
	Price        string `json:"price"`
	Quantity     string `json:"quantity"`
	Fee          string `json:"fee"`
	PnL          string `json:"pnl"`
	PnLR         string `json:"pnlR"`
	SlippageBps  string `json:"slippageBps"`
	DecisionNote string `json:"decisionNote"`
}

func BuildTradeRows(trades []models.Trade) []TradeRow {
	rows := make([]TradeRow, 0, len(trades))
	for _, t := range trades {
		executed := placeholder
		if t.ExecutedAt != nil {
			executed = t.ExecutedAt.UTC().Format(tradeTimeLayout)
		}
		rows = append(rows, TradeRow{
			ExecutedAt:   executed,
			Symbol:       t.Symbol,
			Side:         t.Side,
			Price:        fmtNum(t.Price),
			Quantity:     fmtNum(t.Quantity),
			Fee:          fmtNum(t.Fee),
			PnL:          fmtNum(t.PnL),
			PnLR:         fmtNum(t.PnLR),
			SlippageBps:  fmtNum(t.SlippageBps),
			DecisionNote: util.EscapeAngles(t.DecisionNote),
		})
	}
	return rows
}

type SummaryRow struct {
	Label        string `json:"label"`
	Trades       int64  `json:"trades"`
	Wins         int64  `json:"wins"`
	Losses       int64  `json:"losses"`
	WinRate      string `json:"winRate"`
	GrossPnL     string `json:"grossPnL"`
	NetPnL       string `json:"netPnL"`
	Fees         string `json:"fees"`
	ProfitFactor string `json:"profitFactor"`
	MaxDrawdown  string `json:"maxDrawdown"`
	Sharpe       string `json:"sharpe"`
	Sortino      string `json:"sortino"`
}

func BuildSummaryRows(summary []models.SummaryBucket) []SummaryRow {
	rows := make([]SummaryRow, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, SummaryRow{
			Label:        s.Label,
			Trades:       s.Trades,
			Wins:         s.Wins,
			Losses:       s.Losses,
			WinRate:      fmtPct(s.WinRate),
			GrossPnL:     fmtNum(s.GrossPnL),
			NetPnL:       fmtNum(s.NetPnL),
			Fees:         fmtNum(s.Fees),
			ProfitFactor: fmtNum(s.ProfitFactor),
			MaxDrawdown:  fmtPct(s.MaxDrawdown),
			Sharpe:       fmtNum(s.Sharpe),
			Sortino:      fmtNum(s.Sortino),
		})
	}
	return rows
}

// HeatPoint places a cell on the unit square; the renderer scales it to its canvas.
type HeatPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

type HeatmapModel struct {
	Max     float64     `json:"max"`
	Points  []HeatPoint `json:"data"`
	XLabels []string    `json:"xLabels,omitempty"`
	YLabels []string    `json:"yLabels,omitempty"`
}

// BuildHeatmap projects hour-by-weekday cells. The scale maximum is the largest
// absolute net PnL, never below 1; a heatmap without cells has max 0.
func BuildHeatmap(h models.Heatmap) HeatmapModel {
	if h.Cells == nil {
		return HeatmapModel{Max: 0, Points: []HeatPoint{}}
	}
	m := HeatmapModel{
		Max:     1,
		Points:  make([]HeatPoint, 0, len(h.Cells)),
		XLabels: h.XLabels,
		YLabels: h.YLabels,
	}
	for _, c := range h.Cells {
		m.Points = append(m.Points, HeatPoint{
			X:     float64(c.X) / heatmapMaxX,
			Y:     float64(c.Y) / heatmapMaxY,
			Value: c.NetPnL,
		})
		m.Max = math.Max(m.Max, math.Abs(c.NetPnL))
	}
	return m
}

type HourlyCost struct {
	Hour int    `json:"hour"`
	Bps  string `json:"bps"`
}

type TCAPanel struct {
	Samples        int64        `json:"samples"`
	AverageBps     string       `json:"averageBps"`
	AverageQueueMs string       `json:"averageQueueMs"`
	Hourly         []HourlyCost `json:"hourly"`
}

func BuildTCAPanel(s models.ExecutionCostStats) TCAPanel {
	p := TCAPanel{
		Samples:        s.Samples,
		AverageBps:     fmtNum(s.AverageBps),
		AverageQueueMs: fmtNum(s.AverageQueueMs),
		Hourly:         make([]HourlyCost, 0, len(s.HourlyAverage)),
	}
	for h, v := range s.HourlyAverage {
		v := v
		p.Hourly = append(p.Hourly, HourlyCost{Hour: h, Bps: fmtNum(&v)})
	}
	sort.Slice(p.Hourly, func(i, j int) bool { return p.Hourly[i].Hour < p.Hourly[j].Hour })
	return p
}

// RiskRow is one VaR snapshot. Reasons holds the parsed reason list; when the
// embedded JSON is malformed ReasonsRaw carries the text verbatim instead.
type RiskRow struct {
	Time       string   `json:"timestamp"`
	Regime     string   `json:"regime"`
	PresetKey  string   `json:"presetKey"`
	VaR        string   `json:"var"`
	CVaR       string   `json:"cvar"`
	QtyRatio   string   `json:"qtyRatio"`
	Reasons    []string `json:"reasons,omitempty"`
	ReasonsRaw string   `json:"reasonsRaw,omitempty"`
}

func BuildRiskRows(snaps []models.VarSnapshot) []RiskRow {
	rows := make([]RiskRow, 0, len(snaps))
	for _, s := range snaps {
		row := RiskRow{
			Time:      placeholder,
			Regime:    s.Regime,
			PresetKey: s.PresetKey,
			VaR:       fmtNum(s.VaR),
			CVaR:      fmtNum(s.CVaR),
			QtyRatio:  fmtNum(s.QtyRatio),
		}
		if !s.Time.IsZero() {
			row.Time = s.Time.UTC().Format(tradeTimeLayout)
		}
		if reasons, ok := parseReasons(s.ReasonsJSON); ok {
			row.Reasons = reasons
		} else {
			row.ReasonsRaw = s.ReasonsJSON
		}
		rows = append(rows, row)
	}
	return rows
}

// parseReasons accepts a JSON array (strings kept, other values re-encoded) or an
// object (rendered as sorted "key: value" pairs).
func parseReasons(raw string) ([]string, bool) {
	if raw == "" {
		return []string{}, true
	}
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, reasonText(e))
		}
		return out, true
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(t))
		for _, k := range keys {
			out = append(out, fmt.Sprintf("%s: %s", k, reasonText(t[k])))
		}
		return out, true
	case nil:
		return []string{}, true
	default:
		return nil, false
	}
}

func reasonText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
