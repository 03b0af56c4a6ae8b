package models

// Requests for the dashboard's own HTTP endpoints.

type BanditRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Regime string `query:"regime" json:"regime"`
	Side   string `query:"side" json:"side" validate:"omitempty,oneof=BUY SELL"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type ExportRequest struct {
	Kind string `param:"kind" validate:"required,oneof=trades-csv trades-json summary-csv heatmap-csv"`
}

type SessionRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}
