package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"BotDash/internal/chart"
	"BotDash/internal/domain/models"
	"BotDash/internal/domain/repository"
	"BotDash/pkg/logger"
)

var (
	ErrSuperseded  = errors.New("refresh superseded by a newer one")
	ErrUnmounted   = errors.New("dashboard unmounted")
	ErrNotRendered = errors.New("dashboard not rendered yet")
)

// Cycle outcomes reported to metrics and the event stream.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
)

// Fetcher runs one complete backend fan-out. *DataFetchOrchestrator satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, f models.FilterState) (*FetchResult, error)
}

// Snapshot is everything one render cycle produced.
type Snapshot struct {
	Generation  uint64                `json:"generation"`
	Query       string                `json:"query"`
	Symbol      string                `json:"symbol"`
	Charts      Charts                `json:"charts"`
	KPI         []KPI                 `json:"kpi"`
	Trades      []TradeRow            `json:"trades"`
	TradesTotal int64                 `json:"tradesTotal"`
	Summary     []SummaryRow          `json:"summary"`
	Heatmap     HeatmapModel          `json:"heatmap"`
	Badges      Badges                `json:"badges"`
	Ribbon      Ribbon                `json:"ribbon"`
	TCA         TCAPanel              `json:"tca"`
	Risk        []RiskRow             `json:"risk"`
	Anomalies   []models.AnomalyAlert `json:"anomalies,omitempty"`
	Exports     ExportLinks           `json:"exports"`
	RenderedAt  time.Time             `json:"renderedAt"`
}

// CycleEvent is published once per finished refresh.
type CycleEvent struct {
	SessionID  string    `json:"sessionId"`
	Generation uint64    `json:"generation"`
	Symbol     string    `json:"symbol"`
	Interval   string    `json:"interval"`
	Query      string    `json:"query"`
	Outcome    string    `json:"outcome"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

type ControllerConfig struct {
	// CycleTimeout bounds one refresh; zero means no deadline.
	CycleTimeout time.Duration
	Topic        string
}

// ControllerFactory holds the shared collaborators and builds one controller per session.
type ControllerFactory struct {
	Fetcher   Fetcher
	Composer  *SeriesComposer
	Ribbon    *RegimeRibbonBuilder
	URLs      URLBuilder
	Publisher repository.EventPublisher
	Metrics   repository.Metrics
	Log       *logger.Logger
	Config    ControllerConfig
}

func (f *ControllerFactory) New(id string) *DashboardController {
	c := &DashboardController{
		id:        id,
		fetcher:   f.Fetcher,
		composer:  f.Composer,
		ribbon:    f.Ribbon,
		urls:      f.URLs,
		publisher: f.Publisher,
		metrics:   f.Metrics,
		log:       f.Log,
		cfg:       f.Config,
		sync:      chart.NewSynchronizer(),
	}
	if c.composer == nil {
		c.composer = NewSeriesComposer()
	}
	if c.ribbon == nil {
		c.ribbon = NewRegimeRibbonBuilder()
	}
	if c.publisher == nil {
		c.publisher = repository.NopPublisher{}
	}
	if c.metrics == nil {
		c.metrics = repository.NopMetrics{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.With(logger.String("session", id))
	return c
}

// DashboardController runs fetch → compose → render cycles for one dashboard and owns
// its chart instances. Each cycle destroys the previous charts and creates new ones.
type DashboardController struct {
	id        string
	fetcher   Fetcher
	composer  *SeriesComposer
	ribbon    *RegimeRibbonBuilder
	urls      URLBuilder
	publisher repository.EventPublisher
	metrics   repository.Metrics
	log       *logger.Logger
	cfg       ControllerConfig
	sync      *chart.Synchronizer

	gen atomic.Uint64

	mu        sync.Mutex
	unmounted bool
	filter    models.FilterState
	price     *chart.Instance
	volume    *chart.Instance
	equity    *chart.Instance
	drawdown  *chart.Instance
	last      *Snapshot
}

func (c *DashboardController) ID() string { return c.id }

// Mount performs the first render. It is a Refresh; an unmounted controller cannot be
// mounted again.
func (c *DashboardController) Mount(ctx context.Context, f models.FilterState) (*Snapshot, error) {
	return c.Refresh(ctx, f)
}

// Refresh runs one full cycle for f. Only the most recently triggered refresh may
// render; an older one that completes later returns ErrSuperseded and changes nothing.
func (c *DashboardController) Refresh(ctx context.Context, f models.FilterState) (*Snapshot, error) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return nil, ErrUnmounted
	}
	// the filter and its generation are recorded together so Filter always belongs to
	// the refresh allowed to render
	c.filter = f
	gen := c.gen.Add(1)
	c.mu.Unlock()

	start := time.Now()
	c.log.Debug("dashboard cycle started",
		logger.Uint64("generation", gen),
		logger.String("symbol", f.Symbol),
		logger.String("interval", string(f.Interval)),
	)

	if c.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CycleTimeout)
		defer cancel()
	}

	res, err := c.fetcher.Fetch(ctx, f)
	if err != nil {
		if c.gen.Load() != gen {
			c.finish(ctx, gen, f, OutcomeSuperseded, start, err)
			return nil, fmt.Errorf("%w: %w", ErrSuperseded, err)
		}
		c.finish(ctx, gen, f, OutcomeError, start, err)
		return nil, fmt.Errorf("refresh dashboard: %w", err)
	}

	snap := c.compose(gen, f, res)

	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return nil, ErrUnmounted
	}
	if c.gen.Load() != gen {
		c.mu.Unlock()
		c.finish(ctx, gen, f, OutcomeSuperseded, start, nil)
		return nil, ErrSuperseded
	}
	c.render(snap)
	c.mu.Unlock()

	c.finish(ctx, gen, f, OutcomeOK, start, nil)
	return snap, nil
}

// Unmount destroys the charts and fences every in-flight refresh.
func (c *DashboardController) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return
	}
	c.unmounted = true
	c.gen.Add(1)
	c.destroyCharts()
	c.sync.Reset()
	c.log.Debug("dashboard unmounted")
}

// Hover mirrors a pointer at ts on the price chart onto the equity and drawdown charts.
func (c *DashboardController) Hover(ts time.Time) (chart.HoverResult, error) {
	if err := c.interactive(); err != nil {
		return chart.HoverResult{}, err
	}
	return c.sync.PointerMove(ts), nil
}

// Leave clears companion highlights.
func (c *DashboardController) Leave() error {
	if err := c.interactive(); err != nil {
		return err
	}
	c.sync.PointerLeave()
	return nil
}

// Snapshot returns the last rendered snapshot, if any.
func (c *DashboardController) Snapshot() (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.last != nil
}

// Filter returns the filter of the most recently triggered refresh.
func (c *DashboardController) Filter() models.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// ChartStates reports the live chart instances in price, volume, equity, drawdown order.
func (c *DashboardController) ChartStates() []chart.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chart.State, 0, 4)
	for _, inst := range []*chart.Instance{c.price, c.volume, c.equity, c.drawdown} {
		if inst != nil {
			out = append(out, inst.State())
		}
	}
	return out
}

func (c *DashboardController) Generation() uint64 {
	return c.gen.Load()
}

func (c *DashboardController) interactive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return ErrUnmounted
	}
	if c.price == nil {
		return ErrNotRendered
	}
	return nil
}

func (c *DashboardController) compose(gen uint64, f models.FilterState, res *FetchResult) *Snapshot {
	snap := &Snapshot{
		Generation:  gen,
		Query:       SerializeFilter(f).Encode(),
		Symbol:      f.Symbol,
		Charts:      c.composer.Compose(res, f.Toggles),
		KPI:         BuildKPI(res.Summary),
		Trades:      BuildTradeRows(res.Trades.Trades),
		TradesTotal: res.Trades.Total,
		Summary:     BuildSummaryRows(res.Summary),
		Heatmap:     BuildHeatmap(res.Heatmap),
		Badges:      DeriveBadges(res.Status),
		Ribbon:      c.ribbon.Build(res.Regime.History),
		TCA:         BuildTCAPanel(res.ExecutionCost),
		Risk:        BuildRiskRows(res.RiskSnapshots),
		Anomalies:   res.Status.Anomalies,
		RenderedAt:  time.Now().UTC(),
	}
	if c.urls != nil {
		snap.Exports = BuildExportLinks(c.urls, f)
	}
	return snap
}

// render must be called with c.mu held.
func (c *DashboardController) render(snap *Snapshot) {
	c.destroyCharts()
	c.price = chart.New(snap.Charts.Price)
	c.volume = chart.New(snap.Charts.Volume)
	c.equity = chart.New(snap.Charts.Equity)
	c.drawdown = chart.New(snap.Charts.Drawdown)
	c.sync.Register(c.price, c.equity, c.drawdown)
	c.last = snap
}

// destroyCharts must be called with c.mu held.
func (c *DashboardController) destroyCharts() {
	for _, inst := range []*chart.Instance{c.price, c.volume, c.equity, c.drawdown} {
		if inst != nil {
			inst.Destroy()
		}
	}
	c.price, c.volume, c.equity, c.drawdown = nil, nil, nil, nil
}

func (c *DashboardController) finish(ctx context.Context, gen uint64, f models.FilterState, outcome string, start time.Time, err error) {
	d := time.Since(start)
	c.metrics.ObserveCycle(outcome, d)

	fields := []logger.Field{
		logger.Uint64("generation", gen),
		logger.String("outcome", outcome),
		logger.Duration("duration_ms", d),
	}
	switch {
	case outcome == OutcomeError:
		c.log.Error("dashboard cycle aborted", append(fields, logger.Error(err))...)
	case outcome == OutcomeSuperseded:
		c.log.Info("dashboard cycle superseded", fields...)
	default:
		c.log.Debug("dashboard cycle rendered", fields...)
	}

	if c.cfg.Topic == "" {
		return
	}
	ev := CycleEvent{
		SessionID:  c.id,
		Generation: gen,
		Symbol:     f.Symbol,
		Interval:   string(f.Interval),
		Query:      SerializeFilter(f).Encode(),
		Outcome:    outcome,
		DurationMs: d.Milliseconds(),
		At:         time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	// the cycle context may already be past its deadline
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if perr := c.publisher.Publish(pubCtx, c.cfg.Topic, []byte(c.id), ev); perr != nil {
		c.log.Warn("publish cycle event failed", logger.Error(perr))
	}
}
