package models

import "time"

// AnnotationType is the kind of trade event marked on the price chart.
type AnnotationType string

const (
	AnnotationBuy   AnnotationType = "BUY"
	AnnotationSell  AnnotationType = "SELL"
	AnnotationSL    AnnotationType = "SL"
	AnnotationTP    AnnotationType = "TP"
	AnnotationBE    AnnotationType = "BE"
	AnnotationTrail AnnotationType = "TRAIL"
)

// Annotation is a trade event. Absent numeric fields are nil.
type Annotation struct {
	Time        time.Time
	Type        AnnotationType
	Price       float64
	Qty         *float64
	PnL         *float64
	PnLR        *float64
	Fee         *float64
	SlippageBps *float64
	Text        string
}

// Trade is one executed fill as reported by the backend.
type Trade struct {
	ID            string
	Symbol        string
	Side          string
	ExecutedAt    *time.Time
	Price         *float64
	Quantity      *float64
	Fee           *float64
	FeesBps       *float64
	PnL           *float64
	PnLNet        *float64
	PnLR          *float64
	SignalEdge    *float64
	SlippageBps   *float64
	SlippageCost  *float64
	TimingBps     *float64
	TimingCost    *float64
	ClientOrderID string
	DecisionKey   string
	DecisionNote  string
}

// TradePage is one page of trades plus the total match count.
type TradePage struct {
	Trades []Trade
	Total  int64
}

// SummaryBucket aggregates trades over one period.
type SummaryBucket struct {
	PeriodStart  *time.Time
	PeriodEnd    *time.Time
	Label        string
	Trades       int64
	Wins         int64
	Losses       int64
	GrossPnL     *float64
	NetPnL       *float64
	Fees         *float64
	WinRate      *float64
	ProfitFactor *float64
	MaxDrawdown  *float64
	Sharpe       *float64
	Sortino      *float64
}

// HeatmapCell is PnL for one (hour, weekday) bucket: X in [0,23], Y in [0,6].
type HeatmapCell struct {
	X       int
	Y       int
	Trades  int64
	NetPnL  float64
	WinRate *float64
}

// Heatmap is the hour-by-weekday PnL grid. Cells nil means the backend sent none.
type Heatmap struct {
	XLabels []string
	YLabels []string
	Cells   []HeatmapCell
}
