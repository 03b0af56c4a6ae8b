package usecase

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"BotDash/internal/domain/models"
	"BotDash/pkg/util"
)

// URL query keys.
const (
	keySymbol     = "symbol"
	keyInterval   = "interval"
	keyFrom       = "from"
	keyTo         = "to"
	keySide       = "side"
	keyStatus     = "status"
	keyGroupBy    = "groupBy"
	keyAnchorTs   = "anchorTs"
	keyVWAP       = "vwap"
	keyAnchored   = "anchored"
	keyATR        = "atr"
	keySupertrend = "supertrend"
	keyVolume     = "volume"
	keyMarkers    = "markers"
)

var ErrInvalidFilter = errors.New("invalid filter")

// FilterStateManager converts dashboard filters to and from their URL form.
type FilterStateManager struct {
	symbol   string
	interval models.Interval
	groupBy  models.GroupBy
	lookback time.Duration
	now      func() time.Time
	validate *validator.Validate
}

type filterRules struct {
	Symbol   string     `validate:"required,max=32"`
	Interval string     `validate:"required"`
	GroupBy  string     `validate:"required"`
	From     *time.Time `validate:"omitempty"`
	To       *time.Time `validate:"omitempty"`
}

// NewFilterStateManager builds a manager whose defaults cover the trailing lookback
// window. A zero lookback leaves from/to open.
func NewFilterStateManager(symbol string, interval models.Interval, groupBy models.GroupBy, lookback time.Duration) *FilterStateManager {
	v := validator.New()
	v.RegisterStructValidation(validateRange, filterRules{})
	return &FilterStateManager{
		symbol:   symbol,
		interval: interval,
		groupBy:  groupBy,
		lookback: lookback,
		now:      time.Now,
		validate: v,
	}
}

// Defaults returns the values a fresh session starts from.
func (m *FilterStateManager) Defaults() models.FilterDefaults {
	d := models.FilterDefaults{Symbol: m.symbol, Interval: m.interval, GroupBy: m.groupBy}
	if m.lookback > 0 {
		to := m.now().UTC().Truncate(time.Minute)
		from := to.Add(-m.lookback)
		d.From, d.To = &from, &to
	}
	return d
}

// Parse is ParseFilter with the manager's current defaults.
func (m *FilterStateManager) Parse(q url.Values) models.FilterState {
	return ParseFilter(q, m.Defaults())
}

func (m *FilterStateManager) Serialize(f models.FilterState) url.Values {
	return SerializeFilter(f)
}

// Validate rejects an empty symbol and a range whose start is after its end.
func (m *FilterStateManager) Validate(f models.FilterState) error {
	err := m.validate.Struct(filterRules{
		Symbol:   f.Symbol,
		Interval: string(f.Interval),
		GroupBy:  string(f.GroupBy),
		From:     f.From,
		To:       f.To,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return nil
}

func validateRange(sl validator.StructLevel) {
	r := sl.Current().Interface().(filterRules)
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		sl.ReportError(r.From, "from", "From", "ltefield", "to")
	}
}

// ParseFilter reads a filter from URL query values. Missing keys take the defaults;
// unparseable timestamps and unknown enum values never fail, they fall back to the
// default or to absent. A parseable anchorTs forces the anchored toggle on.
func ParseFilter(q url.Values, d models.FilterDefaults) models.FilterState {
	f := models.FilterState{
		Symbol:   q.Get(keySymbol),
		Interval: models.Interval(q.Get(keyInterval)),
		Side:     models.Side(q.Get(keySide)),
		Status:   models.OrderStatus(q.Get(keyStatus)),
		GroupBy:  models.GroupBy(q.Get(keyGroupBy)),
	}

	if f.Symbol == "" {
		f.Symbol = d.Symbol
	}
	if !f.Interval.Valid() {
		f.Interval = d.Interval
		if !f.Interval.Valid() {
			f.Interval = models.Interval1m
		}
	}
	if !f.Side.Valid() {
		f.Side = models.SideAny
	}
	if !f.Status.Valid() {
		f.Status = models.StatusAny
	}
	if !f.GroupBy.Valid() {
		f.GroupBy = d.GroupBy
		if !f.GroupBy.Valid() {
			f.GroupBy = models.GroupByDay
		}
	}

	f.From = parseInstant(q.Get(keyFrom), d.From)
	f.To = parseInstant(q.Get(keyTo), d.To)
	f.AnchorTs = parseInstant(q.Get(keyAnchorTs), nil)

	f.Toggles = models.Toggles{
		VWAP:       q.Get(keyVWAP) != "false",
		Anchored:   q.Get(keyAnchored) == "true" || f.AnchorTs != nil,
		ATR:        q.Get(keyATR) != "false",
		Supertrend: q.Get(keySupertrend) == "true",
		Volume:     q.Get(keyVolume) != "false",
		Markers:    q.Get(keyMarkers) != "false",
	}
	return f
}

// SerializeFilter writes f as URL query values. Optional fields are omitted when absent.
func SerializeFilter(f models.FilterState) url.Values {
	q := url.Values{}
	q.Set(keySymbol, f.Symbol)
	q.Set(keyInterval, string(f.Interval))
	if f.From != nil {
		q.Set(keyFrom, util.FormatTime(*f.From))
	}
	if f.To != nil {
		q.Set(keyTo, util.FormatTime(*f.To))
	}
	if f.Side != models.SideAny {
		q.Set(keySide, string(f.Side))
	}
	if f.Status != models.StatusAny {
		q.Set(keyStatus, string(f.Status))
	}
	if f.AnchorTs != nil {
		q.Set(keyAnchorTs, util.FormatTime(*f.AnchorTs))
	}
	q.Set(keyGroupBy, string(f.GroupBy))
	q.Set(keyVWAP, strconv.FormatBool(f.Toggles.VWAP))
	q.Set(keyAnchored, strconv.FormatBool(f.Toggles.Anchored || f.AnchorTs != nil))
	q.Set(keyATR, strconv.FormatBool(f.Toggles.ATR))
	q.Set(keySupertrend, strconv.FormatBool(f.Toggles.Supertrend))
	q.Set(keyVolume, strconv.FormatBool(f.Toggles.Volume))
	q.Set(keyMarkers, strconv.FormatBool(f.Toggles.Markers))
	return q
}

func parseInstant(raw string, def *time.Time) *time.Time {
	if raw == "" {
		if def == nil {
			return nil
		}
		t := def.UTC()
		return &t
	}
	t, ok := util.ParseTime(raw)
	if !ok {
		return nil
	}
	return &t
}
