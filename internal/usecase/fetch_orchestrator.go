package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"BotDash/internal/domain/models"
	"BotDash/internal/domain/repository"
	"BotDash/pkg/logger"
	"BotDash/pkg/util"
)

// Backend endpoints.
const (
	PathKlines        = "/api/market/klines"
	PathVWAP          = "/api/market/vwap"
	PathTrades        = "/api/reports/trades"
	PathSummary       = "/api/reports/summary"
	PathEquity        = "/api/reports/equity"
	PathDrawdown      = "/api/reports/drawdown"
	PathAnnotations   = "/api/reports/annotations"
	PathHeatmap       = "/api/reports/heatmap"
	PathATRBands      = "/api/indicators/atr-bands"
	PathSupertrend    = "/api/indicators/supertrend"
	PathStatus        = "/api/status/overview"
	PathRegime        = "/api/regime/status"
	PathExecutionCost = "/api/tca/slippage"
	PathRiskSnapshots = "/api/var/snapshots"
)

// Slot is a fixed position in a fetch plan.
type Slot int

const (
	SlotCandles Slot = iota
	SlotTrades
	SlotSummary
	SlotEquity
	SlotDrawdown
	SlotAnnotations
	SlotHeatmap
	SlotStatus
	SlotRegime
	SlotExecutionCost
	SlotRiskSnapshots
	SlotVWAP
	SlotAnchoredVWAP
	SlotATRBands
	SlotSupertrend

	slotCount
)

var slotNames = [slotCount]string{
	"candles", "trades", "summary", "equity", "drawdown", "annotations", "heatmap",
	"status", "regime", "execution_cost", "risk_snapshots",
	"vwap", "anchored_vwap", "atr_bands", "supertrend",
}

func (s Slot) String() string {
	if s < 0 || s >= slotCount {
		return "slot(" + strconv.Itoa(int(s)) + ")"
	}
	return slotNames[s]
}

// Overlay reports whether the slot is gated by a toggle.
func (s Slot) Overlay() bool {
	return s >= SlotVWAP && s < slotCount
}

// RequestDescriptor is one planned backend call. A placeholder is already resolved
// to an empty result and issues no request.
type RequestDescriptor struct {
	Slot        Slot
	Path        string
	Params      url.Values
	Placeholder bool
}

// Overlay is a toggle-gated series: either enabled with (possibly empty) data or disabled.
type Overlay[T any] struct {
	enabled bool
	data    []T
}

func Enabled[T any](data []T) Overlay[T] {
	return Overlay[T]{enabled: true, data: data}
}

func Disabled[T any]() Overlay[T] {
	return Overlay[T]{}
}

func (o Overlay[T]) IsEnabled() bool { return o.enabled }

// Data is nil when the overlay is disabled.
func (o Overlay[T]) Data() []T { return o.data }

// Present reports an enabled overlay with at least one point.
func (o Overlay[T]) Present() bool { return o.enabled && len(o.data) > 0 }

// FetchResult is one complete, positionally fixed set of backend responses.
type FetchResult struct {
	Candles       []models.Candle
	Trades        models.TradePage
	Summary       []models.SummaryBucket
	Equity        []models.SeriesPoint
	Drawdown      []models.SeriesPoint
	Annotations   []models.Annotation
	Heatmap       models.Heatmap
	Status        models.StatusOverview
	Regime        models.RegimeStatus
	ExecutionCost models.ExecutionCostStats
	RiskSnapshots []models.VarSnapshot

	VWAP         Overlay[models.SeriesPoint]
	AnchoredVWAP Overlay[models.SeriesPoint]
	ATRBands     Overlay[models.AtrBandPoint]
	Supertrend   Overlay[models.SupertrendPoint]
}

type OrchestratorConfig struct {
	CandleLimit   int
	TradePageSize int
}

// DataFetchOrchestrator plans and runs the concurrent backend fan-out for one cycle.
type DataFetchOrchestrator struct {
	src     repository.DataSource
	metrics repository.Metrics
	log     *logger.Logger
	cfg     OrchestratorConfig
}

func NewDataFetchOrchestrator(src repository.DataSource, m repository.Metrics, log *logger.Logger, cfg OrchestratorConfig) *DataFetchOrchestrator {
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = 1500
	}
	if cfg.TradePageSize <= 0 {
		cfg.TradePageSize = 500
	}
	if m == nil {
		m = repository.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DataFetchOrchestrator{src: src, metrics: m, log: log, cfg: cfg}
}

// Plan builds one descriptor per slot, in slot order.
func (o *DataFetchOrchestrator) Plan(f models.FilterState) []RequestDescriptor {
	base := baseParams(f)
	with := func(kv ...string) url.Values {
		p := cloneValues(base)
		for i := 0; i+1 < len(kv); i += 2 {
			if kv[i+1] != "" {
				p.Set(kv[i], kv[i+1])
			}
		}
		return p
	}
	symbolOnly := url.Values{keySymbol: {f.Symbol}}

	tca := url.Values{keySymbol: {f.Symbol}}
	if f.From != nil {
		tca.Set(keyFrom, util.FormatTime(*f.From))
	}
	risk := cloneValues(tca)
	if f.To != nil {
		tca.Set(keyTo, util.FormatTime(*f.To))
	}

	plan := []RequestDescriptor{
		{Slot: SlotCandles, Path: PathKlines, Params: with("limit", strconv.Itoa(o.cfg.CandleLimit))},
		{Slot: SlotTrades, Path: PathTrades, Params: with(
			keySide, string(f.Side),
			keyStatus, string(f.Status),
			"size", strconv.Itoa(o.cfg.TradePageSize),
		)},
		{Slot: SlotSummary, Path: PathSummary, Params: with(keyGroupBy, string(f.GroupBy))},
		{Slot: SlotEquity, Path: PathEquity, Params: with()},
		{Slot: SlotDrawdown, Path: PathDrawdown, Params: with()},
		{Slot: SlotAnnotations, Path: PathAnnotations, Params: with("includeAdvanced", strconv.FormatBool(f.Toggles.Markers))},
		{Slot: SlotHeatmap, Path: PathHeatmap, Params: with()},
		{Slot: SlotStatus, Path: PathStatus, Params: symbolOnly},
		{Slot: SlotRegime, Path: PathRegime, Params: cloneValues(symbolOnly)},
		{Slot: SlotExecutionCost, Path: PathExecutionCost, Params: tca},
		{Slot: SlotRiskSnapshots, Path: PathRiskSnapshots, Params: risk},
	}

	overlay := func(slot Slot, path string, enabled bool, params url.Values) RequestDescriptor {
		if !enabled {
			return RequestDescriptor{Slot: slot, Path: path, Placeholder: true}
		}
		return RequestDescriptor{Slot: slot, Path: path, Params: params}
	}
	anchored := url.Values(nil)
	if f.AnchoredActive() {
		anchored = with(keyAnchorTs, util.FormatTime(*f.AnchorTs))
	}

	return append(plan,
		overlay(SlotVWAP, PathVWAP, f.Toggles.VWAP, with()),
		overlay(SlotAnchoredVWAP, PathVWAP, f.AnchoredActive(), anchored),
		overlay(SlotATRBands, PathATRBands, f.Toggles.ATR, with()),
		overlay(SlotSupertrend, PathSupertrend, f.Toggles.Supertrend, with()),
	)
}

// Fetch issues every live descriptor concurrently and waits for all of them.
// The first failure cancels the siblings and aborts the cycle; no partial result is returned.
func (o *DataFetchOrchestrator) Fetch(ctx context.Context, f models.FilterState) (*FetchResult, error) {
	plan := o.Plan(f)
	res := &FetchResult{
		VWAP:         Disabled[models.SeriesPoint](),
		AnchoredVWAP: Disabled[models.SeriesPoint](),
		ATRBands:     Disabled[models.AtrBandPoint](),
		Supertrend:   Disabled[models.SupertrendPoint](),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range plan {
		if d.Placeholder {
			continue
		}
		d := d
		g.Go(func() error {
			start := time.Now()
			err := o.fetchSlot(gctx, d, res)
			o.metrics.ObserveFetch(d.Slot.String(), time.Since(start), err)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", d.Slot, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.log.Error("dashboard fetch aborted",
			logger.String("symbol", f.Symbol),
			logger.String("interval", string(f.Interval)),
			logger.Error(err),
		)
		return nil, err
	}
	return res, nil
}

// fetchSlot writes only the field owned by d.Slot, so concurrent calls never share memory.
func (o *DataFetchOrchestrator) fetchSlot(ctx context.Context, d RequestDescriptor, res *FetchResult) error {
	var err error
	switch d.Slot {
	case SlotCandles:
		res.Candles, err = fetchList[models.WireKline, models.Candle](ctx, o.src, d)
	case SlotTrades:
		res.Trades, err = fetchOne[models.WireTradePage, models.TradePage](ctx, o.src, d)
	case SlotSummary:
		res.Summary, err = fetchList[models.WireSummaryBucket, models.SummaryBucket](ctx, o.src, d)
	case SlotEquity:
		res.Equity, err = fetchList[models.WirePoint, models.SeriesPoint](ctx, o.src, d)
	case SlotDrawdown:
		res.Drawdown, err = fetchList[models.WirePoint, models.SeriesPoint](ctx, o.src, d)
	case SlotAnnotations:
		res.Annotations, err = fetchList[models.WireAnnotation, models.Annotation](ctx, o.src, d)
	case SlotHeatmap:
		res.Heatmap, err = fetchOne[models.WireHeatmap, models.Heatmap](ctx, o.src, d)
	case SlotStatus:
		res.Status, err = fetchOne[models.WireStatusOverview, models.StatusOverview](ctx, o.src, d)
	case SlotRegime:
		res.Regime, err = fetchOne[models.WireRegimeResponse, models.RegimeStatus](ctx, o.src, d)
	case SlotExecutionCost:
		res.ExecutionCost, err = fetchOne[models.WireExecutionCost, models.ExecutionCostStats](ctx, o.src, d)
	case SlotRiskSnapshots:
		res.RiskSnapshots, err = fetchList[models.WireVarSnapshot, models.VarSnapshot](ctx, o.src, d)
	case SlotVWAP:
		res.VWAP, err = fetchOverlay[models.WirePoint, models.SeriesPoint](ctx, o.src, d)
	case SlotAnchoredVWAP:
		res.AnchoredVWAP, err = fetchOverlay[models.WirePoint, models.SeriesPoint](ctx, o.src, d)
	case SlotATRBands:
		res.ATRBands, err = fetchOverlay[models.WireAtrBand, models.AtrBandPoint](ctx, o.src, d)
	case SlotSupertrend:
		res.Supertrend, err = fetchOverlay[models.WireSupertrend, models.SupertrendPoint](ctx, o.src, d)
	default:
		err = fmt.Errorf("unknown slot %d", d.Slot)
	}
	return err
}

type wireModel[M any] interface {
	ToModel() M
}

func fetchList[W wireModel[M], M any](ctx context.Context, src repository.DataSource, d RequestDescriptor) ([]M, error) {
	var ws []W
	if err := src.GetJSON(ctx, d.Path, d.Params, &ws); err != nil {
		return nil, err
	}
	out := make([]M, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.ToModel())
	}
	return out, nil
}

func fetchOne[W wireModel[M], M any](ctx context.Context, src repository.DataSource, d RequestDescriptor) (M, error) {
	var w W
	if err := src.GetJSON(ctx, d.Path, d.Params, &w); err != nil {
		var zero M
		return zero, err
	}
	return w.ToModel(), nil
}

func fetchOverlay[W wireModel[M], M any](ctx context.Context, src repository.DataSource, d RequestDescriptor) (Overlay[M], error) {
	data, err := fetchList[W, M](ctx, src, d)
	if err != nil {
		return Disabled[M](), err
	}
	return Enabled(data), nil
}

func baseParams(f models.FilterState) url.Values {
	p := url.Values{}
	p.Set(keySymbol, f.Symbol)
	p.Set(keyInterval, string(f.Interval))
	if f.From != nil {
		p.Set(keyFrom, util.FormatTime(*f.From))
	}
	if f.To != nil {
		p.Set(keyTo, util.FormatTime(*f.To))
	}
	return p
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
