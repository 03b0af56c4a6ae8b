package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"BotDash/pkg/util"
)

// Wire shapes of the reporting backend. Numbers arrive either as JSON numbers or as
// decimal strings, so every numeric field decodes through decimal.NullDecimal and is
// projected to float64 once, here.

// WireTime accepts ISO-8601 strings, epoch seconds or epoch milliseconds, and null.
// Unparseable input decodes to the zero time instead of failing the whole payload.
type WireTime struct {
	time.Time
}

func (t *WireTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		t.Time, _ = util.ParseTime(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || f <= 0 {
		t.Time = time.Time{}
		return nil
	}
	// values past year 5138 in seconds are certainly milliseconds
	if f > 1e11 {
		t.Time = time.UnixMilli(int64(f)).UTC()
		return nil
	}
	sec, frac := math.Modf(f)
	t.Time = time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
	return nil
}

// WireID accepts identifiers sent as JSON numbers or strings.
type WireID string

func (id *WireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = WireID(s)
		return nil
	}
	*id = WireID(b)
	return nil
}

func (t WireTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func num(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.InexactFloat64()
}

func optNum(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

type WireKline struct {
	OpenTime  WireTime            `json:"openTime"`
	CloseTime WireTime            `json:"closeTime"`
	Open      decimal.NullDecimal `json:"open"`
	High      decimal.NullDecimal `json:"high"`
	Low       decimal.NullDecimal `json:"low"`
	Close     decimal.NullDecimal `json:"close"`
	Volume    decimal.NullDecimal `json:"volume"`
}

func (w WireKline) ToModel() Candle {
	return Candle{
		OpenTime:  w.OpenTime.Time,
		CloseTime: w.CloseTime.Time,
		Open:      num(w.Open),
		High:      num(w.High),
		Low:       num(w.Low),
		Close:     num(w.Close),
		Volume:    num(w.Volume),
	}
}

type WirePoint struct {
	Ts    WireTime            `json:"ts"`
	Value decimal.NullDecimal `json:"value"`
}

func (w WirePoint) ToModel() SeriesPoint {
	return SeriesPoint{Time: w.Ts.Time, Value: num(w.Value)}
}

type WireAtrBand struct {
	Ts    WireTime            `json:"ts"`
	Mid   decimal.NullDecimal `json:"mid"`
	Upper decimal.NullDecimal `json:"upper"`
	Lower decimal.NullDecimal `json:"lower"`
}

func (w WireAtrBand) ToModel() AtrBandPoint {
	return AtrBandPoint{Time: w.Ts.Time, Mid: num(w.Mid), Upper: num(w.Upper), Lower: num(w.Lower)}
}

type WireSupertrend struct {
	Ts    WireTime            `json:"ts"`
	Trend string              `json:"trend"`
	Line  decimal.NullDecimal `json:"line"`
}

func (w WireSupertrend) ToModel() SupertrendPoint {
	return SupertrendPoint{Time: w.Ts.Time, Trend: w.Trend, Line: num(w.Line)}
}

type WireAnnotation struct {
	Ts          WireTime            `json:"ts"`
	Type        string              `json:"type"`
	Price       decimal.NullDecimal `json:"price"`
	Qty         decimal.NullDecimal `json:"qty"`
	PnL         decimal.NullDecimal `json:"pnl"`
	PnLR        decimal.NullDecimal `json:"pnlR"`
	Fee         decimal.NullDecimal `json:"fee"`
	SlippageBps decimal.NullDecimal `json:"slippageBps"`
	Text        string              `json:"text"`
}

func (w WireAnnotation) ToModel() Annotation {
	return Annotation{
		Time:        w.Ts.Time,
		Type:        AnnotationType(w.Type),
		Price:       num(w.Price),
		Qty:         optNum(w.Qty),
		PnL:         optNum(w.PnL),
		PnLR:        optNum(w.PnLR),
		Fee:         optNum(w.Fee),
		SlippageBps: optNum(w.SlippageBps),
		Text:        w.Text,
	}
}

type WireTrade struct {
	ID            WireID              `json:"id"`
	Symbol        string              `json:"symbol"`
	Side          string              `json:"side"`
	ExecutedAt    WireTime            `json:"executedAt"`
	Price         decimal.NullDecimal `json:"price"`
	Quantity      decimal.NullDecimal `json:"quantity"`
	Fee           decimal.NullDecimal `json:"fee"`
	FeesBps       decimal.NullDecimal `json:"feesBps"`
	PnL           decimal.NullDecimal `json:"pnl"`
	PnLNet        decimal.NullDecimal `json:"pnlNet"`
	PnLR          decimal.NullDecimal `json:"pnlR"`
	SignalEdge    decimal.NullDecimal `json:"signalEdge"`
	SlippageBps   decimal.NullDecimal `json:"slippageBps"`
	SlippageCost  decimal.NullDecimal `json:"slippageCost"`
	TimingBps     decimal.NullDecimal `json:"timingBps"`
	TimingCost    decimal.NullDecimal `json:"timingCost"`
	ClientOrderID string              `json:"clientOrderId"`
	DecisionKey   string              `json:"decisionKey"`
	DecisionNote  string              `json:"decisionNote"`
}

func (w WireTrade) ToModel() Trade {
	return Trade{
		ID:            string(w.ID),
		Symbol:        w.Symbol,
		Side:          w.Side,
		ExecutedAt:    w.ExecutedAt.ptr(),
		Price:         optNum(w.Price),
		Quantity:      optNum(w.Quantity),
		Fee:           optNum(w.Fee),
		FeesBps:       optNum(w.FeesBps),
		PnL:           optNum(w.PnL),
		PnLNet:        optNum(w.PnLNet),
		PnLR:          optNum(w.PnLR),
		SignalEdge:    optNum(w.SignalEdge),
		SlippageBps:   optNum(w.SlippageBps),
		SlippageCost:  optNum(w.SlippageCost),
		TimingBps:     optNum(w.TimingBps),
		TimingCost:    optNum(w.TimingCost),
		ClientOrderID: w.ClientOrderID,
		DecisionKey:   w.DecisionKey,
		DecisionNote:  w.DecisionNote,
	}
}

// WireTradePage is the paged trades response.
type WireTradePage struct {
	Content       []WireTrade `json:"content"`
	TotalElements int64       `json:"totalElements"`
}

func (w WireTradePage) ToModel() TradePage {
	out := TradePage{Trades: make([]Trade, 0, len(w.Content)), Total: w.TotalElements}
	for _, t := range w.Content {
		out.Trades = append(out.Trades, t.ToModel())
	}
	return out
}

type WireSummaryBucket struct {
	PeriodStart  WireTime            `json:"periodStart"`
	PeriodEnd    WireTime            `json:"periodEnd"`
	Label        string              `json:"label"`
	Trades       int64               `json:"trades"`
	Wins         int64               `json:"wins"`
	Losses       int64               `json:"losses"`
	GrossPnL     decimal.NullDecimal `json:"grossPnL"`
	NetPnL       decimal.NullDecimal `json:"netPnL"`
	Fees         decimal.NullDecimal `json:"fees"`
	WinRate      decimal.NullDecimal `json:"winRate"`
	ProfitFactor decimal.NullDecimal `json:"profitFactor"`
	MaxDrawdown  decimal.NullDecimal `json:"maxDrawdown"`
	Sharpe       decimal.NullDecimal `json:"sharpe"`
	Sortino      decimal.NullDecimal `json:"sortino"`
}

func (w WireSummaryBucket) ToModel() SummaryBucket {
	return SummaryBucket{
		PeriodStart:  w.PeriodStart.ptr(),
		PeriodEnd:    w.PeriodEnd.ptr(),
		Label:        w.Label,
		Trades:       w.Trades,
		Wins:         w.Wins,
		Losses:       w.Losses,
		GrossPnL:     optNum(w.GrossPnL),
		NetPnL:       optNum(w.NetPnL),
		Fees:         optNum(w.Fees),
		WinRate:      optNum(w.WinRate),
		ProfitFactor: optNum(w.ProfitFactor),
		MaxDrawdown:  optNum(w.MaxDrawdown),
		Sharpe:       optNum(w.Sharpe),
		Sortino:      optNum(w.Sortino),
	}
}

type WireHeatmapCell struct {
	X       int                 `json:"x"`
	Y       int                 `json:"y"`
	Trades  int64               `json:"trades"`
	NetPnL  decimal.NullDecimal `json:"netPnl"`
	WinRate decimal.NullDecimal `json:"winRate"`
}

// WireHeatmap leaves Cells nil when the backend omitted them.
type WireHeatmap struct {
	XLabels []string          `json:"xLabels"`
	YLabels []string          `json:"yLabels"`
	Cells   []WireHeatmapCell `json:"cells"`
}

func (w WireHeatmap) ToModel() Heatmap {
	out := Heatmap{XLabels: w.XLabels, YLabels: w.YLabels}
	if w.Cells == nil {
		return out
	}
	out.Cells = make([]HeatmapCell, 0, len(w.Cells))
	for _, c := range w.Cells {
		out.Cells = append(out.Cells, HeatmapCell{
			X:       c.X,
			Y:       c.Y,
			Trades:  c.Trades,
			NetPnL:  num(c.NetPnL),
			WinRate: optNum(c.WinRate),
		})
	}
	return out
}

type WireStatusOverview struct {
	Trading *struct {
		Mode            string   `json:"mode"`
		KillSwitch      bool     `json:"killSwitch"`
		LiveEnabled     bool     `json:"liveEnabled"`
		MarketDataStale bool     `json:"marketDataStale"`
		RiskFlags       []string `json:"riskFlags"`
	} `json:"trading"`
	VaR *struct {
		VaR       decimal.NullDecimal `json:"var"`
		CVaR      decimal.NullDecimal `json:"cvar"`
		QtyRatio  decimal.NullDecimal `json:"qtyRatio"`
		Exposure  decimal.NullDecimal `json:"exposure"`
		Limit     decimal.NullDecimal `json:"limit"`
		Ratio     decimal.NullDecimal `json:"ratio"`
		Timestamp WireTime            `json:"timestamp"`
	} `json:"var"`
	Drift *struct {
		Stage            string              `json:"stage"`
		SizingMultiplier decimal.NullDecimal `json:"sizingMultiplier"`
	} `json:"drift"`
	Health *struct {
		Healthy         bool                `json:"healthy"`
		APIErrorRatePct decimal.NullDecimal `json:"apiErrorRatePct"`
		WSReconnects    int                 `json:"wsReconnects"`
		APISamples      int                 `json:"apiSamples"`
	} `json:"health"`
	Allocator *struct {
		Symbol           string              `json:"symbol"`
		Allowed          bool                `json:"allowed"`
		Reason           string              `json:"reason"`
		SizingMultiplier decimal.NullDecimal `json:"sizingMultiplier"`
	} `json:"allocator"`
	Anomaly *struct {
		Active      bool                `json:"active"`
		Symbol      string              `json:"symbol"`
		Metric      string              `json:"metric"`
		Severity    string              `json:"severity"`
		Action      string              `json:"action"`
		Value       decimal.NullDecimal `json:"value"`
		ZScore      decimal.NullDecimal `json:"zScore"`
		TriggeredAt WireTime            `json:"triggeredAt"`
		ExpiresAt   WireTime            `json:"expiresAt"`
		Cause       string              `json:"cause"`
	} `json:"anomaly"`
}

func (w WireStatusOverview) ToModel() StatusOverview {
	var out StatusOverview
	if t := w.Trading; t != nil {
		out.Trading = &TradingStatus{
			Mode:            TradingMode(t.Mode),
			KillSwitch:      t.KillSwitch,
			LiveEnabled:     t.LiveEnabled,
			MarketDataStale: t.MarketDataStale,
			RiskFlags:       t.RiskFlags,
		}
	}
	if v := w.VaR; v != nil {
		out.VaR = &VarStatus{
			VaR:       optNum(v.VaR),
			CVaR:      optNum(v.CVaR),
			QtyRatio:  optNum(v.QtyRatio),
			Exposure:  optNum(v.Exposure),
			Limit:     optNum(v.Limit),
			Ratio:     optNum(v.Ratio),
			Timestamp: v.Timestamp.ptr(),
		}
	}
	if d := w.Drift; d != nil {
		out.Drift = &DriftStatus{Stage: DriftStage(d.Stage), SizingMultiplier: optNum(d.SizingMultiplier)}
	}
	if h := w.Health; h != nil {
		out.Health = &HealthStatus{
			Healthy:         h.Healthy,
			APIErrorRatePct: optNum(h.APIErrorRatePct),
			WSReconnects:    h.WSReconnects,
			APISamples:      h.APISamples,
		}
	}
	if a := w.Allocator; a != nil {
		out.Allocator = &AllocatorStatus{
			Symbol:           a.Symbol,
			Allowed:          a.Allowed,
			Reason:           a.Reason,
			SizingMultiplier: optNum(a.SizingMultiplier),
		}
	}
	// the backend always sends the object; only an active one is an alert
	if a := w.Anomaly; a != nil && a.Active {
		out.Anomalies = []AnomalyAlert{{
			Symbol:      a.Symbol,
			Metric:      a.Metric,
			Severity:    a.Severity,
			Action:      a.Action,
			Value:       optNum(a.Value),
			ZScore:      optNum(a.ZScore),
			TriggeredAt: a.TriggeredAt.ptr(),
			ExpiresAt:   a.ExpiresAt.ptr(),
			Cause:       a.Cause,
		}}
	}
	return out
}

type WireRegimeSample struct {
	Timestamp  WireTime `json:"timestamp"`
	Ts         WireTime `json:"ts"`
	Trend      string   `json:"trend"`
	Volatility string   `json:"volatility"`
}

// ToModel normalises the engine's short trend names (UP, DOWN) to the ribbon vocabulary.
func (w WireRegimeSample) ToModel() RegimeSample {
	ts := w.Timestamp.Time
	if ts.IsZero() {
		ts = w.Ts.Time
	}
	return RegimeSample{
		Time:       ts,
		Trend:      normaliseTrend(w.Trend),
		Volatility: RegimeVolatility(w.Volatility),
	}
}

func normaliseTrend(s string) RegimeTrend {
	switch s {
	case "UP":
		return TrendUp
	case "DOWN":
		return TrendDown
	}
	return RegimeTrend(s)
}

type WireRegimeStatus struct {
	Symbol          string             `json:"symbol"`
	Regime          *WireRegimeSample  `json:"regime"`
	Changes         int64              `json:"changes"`
	TrendShare      map[string]float64 `json:"trendShare"`
	VolatilityShare map[string]float64 `json:"volatilityShare"`
	Samples         int64              `json:"samples"`
	History         []WireRegimeSample `json:"history"`
}

// WireRegimeResponse wraps the status of the requested symbol.
type WireRegimeResponse struct {
	Symbol string           `json:"symbol"`
	Status WireRegimeStatus `json:"status"`
}

func (w WireRegimeResponse) ToModel() RegimeStatus {
	s := w.Status
	out := RegimeStatus{
		Symbol:          s.Symbol,
		Changes:         s.Changes,
		TrendShare:      s.TrendShare,
		VolatilityShare: s.VolatilityShare,
		Samples:         s.Samples,
		History:         make([]RegimeSample, 0, len(s.History)),
	}
	if out.Symbol == "" {
		out.Symbol = w.Symbol
	}
	if s.Regime != nil {
		cur := s.Regime.ToModel()
		out.Current = &cur
	}
	for _, h := range s.History {
		out.History = append(out.History, h.ToModel())
	}
	return out
}

type WireExecutionCost struct {
	Samples        int64                          `json:"samples"`
	AverageBps     decimal.NullDecimal            `json:"averageBps"`
	AverageQueueMs decimal.NullDecimal            `json:"averageQueueMs"`
	HourlyAverage  map[string]decimal.NullDecimal `json:"hourlyAverage"`
}

func (w WireExecutionCost) ToModel() ExecutionCostStats {
	out := ExecutionCostStats{
		Samples:        w.Samples,
		AverageBps:     optNum(w.AverageBps),
		AverageQueueMs: optNum(w.AverageQueueMs),
		HourlyAverage:  make(map[int]float64, len(w.HourlyAverage)),
	}
	for k, v := range w.HourlyAverage {
		if h, err := strconv.Atoi(k); err == nil {
			out.HourlyAverage[h] = num(v)
		}
	}
	return out
}

// WireReasons keeps reasonsJson verbatim whether the backend sent it as a JSON string
// or inlined it as an array/object.
type WireReasons string

func (r *WireReasons) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = WireReasons(s)
		return nil
	}
	*r = WireReasons(b)
	return nil
}

type WireVarSnapshot struct {
	Timestamp   WireTime            `json:"timestamp"`
	Symbol      string              `json:"symbol"`
	Regime      string              `json:"regime"`
	PresetKey   string              `json:"presetKey"`
	PresetID    string              `json:"presetId"`
	ReasonsJSON WireReasons         `json:"reasonsJson"`
	VaR         decimal.NullDecimal `json:"var"`
	CVaR        decimal.NullDecimal `json:"cvar"`
	QtyRatio    decimal.NullDecimal `json:"qtyRatio"`
}

func (w WireVarSnapshot) ToModel() VarSnapshot {
	return VarSnapshot{
		Time:        w.Timestamp.Time,
		Symbol:      w.Symbol,
		Regime:      w.Regime,
		PresetKey:   w.PresetKey,
		PresetID:    w.PresetID,
		ReasonsJSON: string(w.ReasonsJSON),
		VaR:         optNum(w.VaR),
		CVaR:        optNum(w.CVaR),
		QtyRatio:    optNum(w.QtyRatio),
	}
}

type WireBanditArm struct {
	ID       WireID `json:"id"`
	Symbol   string `json:"symbol"`
	Regime   string `json:"regime"`
	Side     string `json:"side"`
	PresetID string `json:"presetId"`
	Status   string `json:"status"`
	Role     string `json:"role"`
	Stats    struct {
		Pulls          int64               `json:"pulls"`
		Observations   int64               `json:"observations"`
		Mean           decimal.NullDecimal `json:"mean"`
		Variance       decimal.NullDecimal `json:"variance"`
		EffectiveCount decimal.NullDecimal `json:"effectiveCount"`
	} `json:"stats"`
	UpdatedAt WireTime `json:"updatedAt"`
}

func (w WireBanditArm) ToModel() BanditArm {
	return BanditArm{
		ID:       string(w.ID),
		Symbol:   w.Symbol,
		Regime:   w.Regime,
		Side:     w.Side,
		PresetID: w.PresetID,
		Status:   w.Status,
		Role:     w.Role,
		Stats: BanditArmStats{
			Pulls:          w.Stats.Pulls,
			Observations:   w.Stats.Observations,
			Mean:           num(w.Stats.Mean),
			Variance:       num(w.Stats.Variance),
			EffectiveCount: num(w.Stats.EffectiveCount),
		},
		UpdatedAt: w.UpdatedAt.ptr(),
	}
}

type WireBanditPull struct {
	ID          WireID              `json:"id"`
	ArmID       WireID              `json:"armId"`
	Timestamp   WireTime            `json:"timestamp"`
	DecisionID  string              `json:"decisionId"`
	Reward      decimal.NullDecimal `json:"reward"`
	PnLR        decimal.NullDecimal `json:"pnlR"`
	SlippageBps decimal.NullDecimal `json:"slippageBps"`
	FeesBps     decimal.NullDecimal `json:"feesBps"`
	Role        string              `json:"role"`
}

func (w WireBanditPull) ToModel() BanditPull {
	return BanditPull{
		ID:          string(w.ID),
		ArmID:       string(w.ArmID),
		Time:        w.Timestamp.Time,
		DecisionID:  w.DecisionID,
		Reward:      optNum(w.Reward),
		PnLR:        optNum(w.PnLR),
		SlippageBps: optNum(w.SlippageBps),
		FeesBps:     optNum(w.FeesBps),
		Role:        w.Role,
	}
}

type WireBanditOverview struct {
	Algorithm      string              `json:"algorithm"`
	CandidateShare decimal.NullDecimal `json:"candidateShare"`
	TotalPulls     int64               `json:"totalPulls"`
	CandidatePulls int64               `json:"candidatePulls"`
}

func (w WireBanditOverview) ToModel() BanditOverview {
	return BanditOverview{
		Algorithm:      w.Algorithm,
		CandidateShare: num(w.CandidateShare),
		TotalPulls:     w.TotalPulls,
		CandidatePulls: w.CandidatePulls,
	}
}
