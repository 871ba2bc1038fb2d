package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure Visualizer implements the interface.
var _ driving.VisualizeService = (*Visualizer)(nil)

// Quoted symbols the charts are built around.
const (
	DefaultStockSymbol = "RNO.PA"
	DefaultIndexSymbol = "^FCHI"
)

// Default chart filenames under graphs/.
const (
	salesChartName       = "vehicles_sold_per_year.png"
	stockChartName       = "stock_vs_cac40.png"
	correlationChartName = "sales_stock_correlation.png"
)

// Visualizer renders the financial charts from the reference tables and
// market data.
type Visualizer struct {
	paths       Paths
	finance     *FinanceService
	dates       *DatesService
	market      driven.MarketData
	renderer    driven.ChartRenderer
	stockSymbol string
	indexSymbol string
}

// NewVisualizer creates the chart service. Empty symbols fall back to
// the defaults.
func NewVisualizer(
	paths Paths,
	finance *FinanceService,
	dates *DatesService,
	market driven.MarketData,
	renderer driven.ChartRenderer,
	stockSymbol, indexSymbol string,
) *Visualizer {
	if stockSymbol == "" {
		stockSymbol = DefaultStockSymbol
	}
	if indexSymbol == "" {
		indexSymbol = DefaultIndexSymbol
	}
	return &Visualizer{
		paths:       paths,
		finance:     finance,
		dates:       dates,
		market:      market,
		renderer:    renderer,
		stockSymbol: stockSymbol,
		indexSymbol: indexSymbol,
	}
}

// SalesPerYear renders the vehicles-sold-per-year bar chart.
func (v *Visualizer) SalesPerYear(ctx context.Context, outPath string) (string, error) {
	sales, err := v.finance.VehicleSales(ctx)
	if err != nil {
		return "", err
	}

	series := driven.Series{Name: "vehicles sold"}
	for _, row := range sales {
		series.Labels = append(series.Labels, strconv.Itoa(row.Year))
		series.Values = append(series.Values, float64(row.VehiclesSold))
	}

	out := v.resolveOut(outPath, salesChartName)
	if err := v.renderer.Bar("Vehicles sold per year", series, out); err != nil {
		return "", fmt.Errorf("rendering sales chart: %w", err)
	}
	return out, nil
}

// StockVsIndex renders the stock close against the market index close on
// the announcement dates. Dates missing from either price series (market
// holidays) are dropped from both.
func (v *Visualizer) StockVsIndex(ctx context.Context, outPath string) (string, error) {
	dates, err := v.dates.List(ctx)
	if err != nil {
		return "", err
	}
	if len(dates) == 0 {
		return "", fmt.Errorf("%w: no announcement dates extracted", domain.ErrNotFound)
	}

	from, err := time.Parse("2006-01-02", dates[0].Date)
	if err != nil {
		return "", fmt.Errorf("parsing date %s: %w", dates[0].Date, err)
	}

	stockCloses, err := v.closesByDay(ctx, v.stockSymbol, from)
	if err != nil {
		return "", err
	}
	indexCloses, err := v.closesByDay(ctx, v.indexSymbol, from)
	if err != nil {
		return "", err
	}

	stock := driven.Series{Name: v.stockSymbol}
	index := driven.Series{Name: v.indexSymbol}
	for _, d := range dates {
		sc, okStock := stockCloses[d.Date]
		ic, okIndex := indexCloses[d.Date]
		if !okStock || !okIndex {
			logger.Debug("No quote on announcement date %s, skipping", d.Date)
			continue
		}
		stock.Labels = append(stock.Labels, d.Date)
		stock.Values = append(stock.Values, sc)
		index.Labels = append(index.Labels, d.Date)
		index.Values = append(index.Values, ic)
	}

	out := v.resolveOut(outPath, stockChartName)
	title := fmt.Sprintf("%s vs %s on announcement dates", v.stockSymbol, v.indexSymbol)
	if err := v.renderer.Lines(title, []driven.Series{stock, index}, out); err != nil {
		return "", fmt.Errorf("rendering stock chart: %w", err)
	}
	return out, nil
}

// SalesStockCorrelation renders vehicles sold against the average stock
// close for each reference year. Years without quotes are dropped.
func (v *Visualizer) SalesStockCorrelation(ctx context.Context, outPath string) (string, error) {
	sales, err := v.finance.VehicleSales(ctx)
	if err != nil {
		return "", err
	}
	if len(sales) == 0 {
		return "", fmt.Errorf("%w: vehicle sales table is empty", domain.ErrNotFound)
	}

	from := time.Date(sales[0].Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	points, err := v.market.DailyCloses(ctx, v.stockSymbol, from)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", v.stockSymbol, err)
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, pt := range points {
		year := pt.Date.UTC().Year()
		sums[year] += pt.Close
		counts[year]++
	}

	var xs, ys []float64
	var labels []string
	for _, row := range sales {
		if counts[row.Year] == 0 {
			logger.Debug("No %s quotes for %d, skipping", v.stockSymbol, row.Year)
			continue
		}
		xs = append(xs, float64(row.VehiclesSold))
		ys = append(ys, sums[row.Year]/float64(counts[row.Year]))
		labels = append(labels, strconv.Itoa(row.Year))
	}

	out := v.resolveOut(outPath, correlationChartName)
	title := fmt.Sprintf("Vehicles sold vs average %s close", v.stockSymbol)
	if err := v.renderer.Scatter(title, "vehicles sold", "average close", xs, ys, labels, out); err != nil {
		return "", fmt.Errorf("rendering correlation chart: %w", err)
	}
	return out, nil
}

// closesByDay fetches daily closes and keys them by ISO calendar date.
func (v *Visualizer) closesByDay(ctx context.Context, symbol string, from time.Time) (map[string]float64, error) {
	points, err := v.market.DailyCloses(ctx, symbol, from)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	closes := make(map[string]float64, len(points))
	for _, pt := range points {
		closes[pt.Date.UTC().Format("2006-01-02")] = pt.Close
	}
	return closes, nil
}

func (v *Visualizer) resolveOut(outPath, defaultName string) string {
	if outPath != "" {
		return outPath
	}
	return filepath.Join(v.paths.Graphs(), defaultName)
}
