package chart

import "time"

// Kind identifies one of the dashboard charts.
type Kind string

const (
	KindPrice    Kind = "price"
	KindVolume   Kind = "volume"
	KindEquity   Kind = "equity"
	KindDrawdown Kind = "drawdown"
	KindRewards  Kind = "rewards"
)

// Dataset render types understood by the front end.
const (
	TypeCandlestick = "candlestick"
	TypeLine        = "line"
	TypeBar         = "bar"
	TypeScatter     = "scatter"
)

// Point is one (x, y) sample of a line, bar or scatter dataset.
type Point struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// OHLC is one candlestick sample.
type OHLC struct {
	X time.Time `json:"x"`
	O float64   `json:"o"`
	H float64   `json:"h"`
	L float64   `json:"l"`
	C float64   `json:"c"`
}

// Tooltip carries pre-rendered tooltip lines for datasets whose tooltip is not derived
// from the hovered value alone (trade markers).
type Tooltip struct {
	Label      string `json:"label"`
	AfterLabel string `json:"afterLabel,omitempty"`
}

type Dataset struct {
	Label   string  `json:"label"`
	Type    string  `json:"type"`
	Candles []OHLC  `json:"candles,omitempty"`
	Points  []Point `json:"points,omitempty"`

	BorderColor          string   `json:"borderColor,omitempty"`
	BackgroundColor      string   `json:"backgroundColor,omitempty"`
	BorderWidth          float64  `json:"borderWidth,omitempty"`
	BorderDash           []int    `json:"borderDash,omitempty"`
	PointRadius          float64  `json:"pointRadius"`
	PointStyle           string   `json:"pointStyle,omitempty"`
	PointBackgroundColor string   `json:"pointBackgroundColor,omitempty"`
	PointBorderColor     string   `json:"pointBorderColor,omitempty"`
	PointBorderWidth     float64  `json:"pointBorderWidth,omitempty"`
	Fill                 string   `json:"fill,omitempty"`
	Tension              float64  `json:"tension,omitempty"`
	Tooltip              *Tooltip `json:"tooltip,omitempty"`
	Colors               *UpDown  `json:"colors,omitempty"`
}

// UpDown colours candlestick bodies.
type UpDown struct {
	Up        string `json:"up"`
	Down      string `json:"down"`
	Unchanged string `json:"unchanged"`
}

// Config is everything a renderer needs to draw one chart.
type Config struct {
	Kind     Kind        `json:"kind"`
	Type     string      `json:"type"`
	Labels   []time.Time `json:"labels"`
	Datasets []Dataset   `json:"datasets"`
	Hidden   bool        `json:"hidden,omitempty"`
}

// DatasetLabels lists dataset labels in order.
func (c Config) DatasetLabels() []string {
	out := make([]string, 0, len(c.Datasets))
	for _, d := range c.Datasets {
		out = append(out, d.Label)
	}
	return out
}

// HasDataset reports whether a dataset with the given label exists.
func (c Config) HasDataset(label string) bool {
	for _, d := range c.Datasets {
		if d.Label == label {
			return true
		}
	}
	return false
}
