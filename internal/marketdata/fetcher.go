package marketdata

import (
	"time"

	"ZoneScout/internal/model"
)

// Supported bar timeframes.
const (
	TimeframeM5      = "5min"
	TimeframeM15     = "15min"
	TimeframeDaily   = "daily"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchBars(symbol, timeframe string, start, end time.Time) ([]model.OHLCV, error)
	FetchCurrentPrice(symbol string) (float64, error)
	Name() string
}

// BarInterval returns the nominal duration of one bar of the given
// timeframe. Calendar timeframes use approximate fixed durations.
func BarInterval(timeframe string) time.Duration {
	switch timeframe {
	case TimeframeM5:
		return 5 * time.Minute
	case TimeframeM15:
		return 15 * time.Minute
	case TimeframeDaily:
		return 24 * time.Hour
	case TimeframeWeekly:
		return 7 * 24 * time.Hour
	case TimeframeMonthly:
		return 30 * 24 * time.Hour
	default:
		return 15 * time.Minute
	}
}
