package driving

import "context"

// VisualizeService renders the financial charts derived from the
// ingested corpus and the static reference tables.
type VisualizeService interface {
	// SalesPerYear renders the vehicles-sold-per-year bar chart.
	// outPath selects file output; empty means the default graphs dir.
	SalesPerYear(ctx context.Context, outPath string) (string, error)

	// StockVsIndex renders the stock-vs-market-index line chart on
	// announcement dates.
	StockVsIndex(ctx context.Context, outPath string) (string, error)

	// SalesStockCorrelation renders the sales-vs-average-stock-price
	// scatter chart.
	SalesStockCorrelation(ctx context.Context, outPath string) (string, error)
}
