package driven

import (
	"context"
	"time"
)

// PricePoint is one daily closing price for a quoted symbol.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// MarketData fetches historical daily close prices for a symbol.
// Used by the visualization collaborators to plot stock performance on
// announcement dates.
type MarketData interface {
	// DailyCloses returns daily close prices for symbol from the given
	// start date until now, in ascending date order.
	DailyCloses(ctx context.Context, symbol string, from time.Time) ([]PricePoint, error)
}
