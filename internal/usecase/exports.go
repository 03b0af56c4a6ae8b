package usecase

import (
	"fmt"
	"net/url"

	"BotDash/internal/domain/models"
)

type ExportKind string

const (
	ExportTradesCSV  ExportKind = "trades-csv"
	ExportTradesJSON ExportKind = "trades-json"
	ExportSummaryCSV ExportKind = "summary-csv"
	ExportHeatmapCSV ExportKind = "heatmap-csv"
)

var exportPaths = map[ExportKind]string{
	ExportTradesCSV:  "/api/reports/trades/export.csv",
	ExportTradesJSON: "/api/reports/trades/export.json",
	ExportSummaryCSV: "/api/reports/summary/export.csv",
	ExportHeatmapCSV: "/api/reports/heatmap/export.csv",
}

// URLBuilder renders absolute backend links. *backend.Gateway satisfies it.
type URLBuilder interface {
	URL(path string, params url.Values) string
}

// ExportLinks are download URLs the browser opens directly; the service never fetches them.
type ExportLinks struct {
	TradesCSV  string `json:"tradesCsv"`
	TradesJSON string `json:"tradesJson"`
	SummaryCSV string `json:"summaryCsv"`
	HeatmapCSV string `json:"heatmapCsv"`
}

func BuildExportLinks(b URLBuilder, f models.FilterState) ExportLinks {
	p := exportParams(f)
	return ExportLinks{
		TradesCSV:  b.URL(exportPaths[ExportTradesCSV], p),
		TradesJSON: b.URL(exportPaths[ExportTradesJSON], p),
		SummaryCSV: b.URL(exportPaths[ExportSummaryCSV], p),
		HeatmapCSV: b.URL(exportPaths[ExportHeatmapCSV], p),
	}
}

func ExportURL(b URLBuilder, kind ExportKind, f models.FilterState) (string, error) {
	path, ok := exportPaths[kind]
	if !ok {
		return "", fmt.Errorf("unknown export kind %q", kind)
	}
	return b.URL(path, exportParams(f)), nil
}

// exportParams carries the filter without the chart toggles.
func exportParams(f models.FilterState) url.Values {
	p := SerializeFilter(f)
	for _, k := range []string{keyVWAP, keyAnchored, keyATR, keySupertrend, keyVolume, keyMarkers} {
		p.Del(k)
	}
	return p
}
