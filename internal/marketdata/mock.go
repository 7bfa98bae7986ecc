package marketdata

import (
	"math"
	"time"

	"ZoneScout/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// When Bars has no entry for a timeframe, a deterministic oscillating
// series around Price is generated so downstream detection has real
// structure to work with.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.OHLCV
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ string, timeframe string, start, end time.Time) ([]model.OHLCV, error) {
	if bars, ok := m.Bars[timeframe]; ok {
		return bars, nil
	}
	switch timeframe {
	case TimeframeWeekly:
		return AggregateDailyToWeekly(m.generate(TimeframeDaily, start, end)), nil
	case TimeframeMonthly:
		return AggregateDailyToMonthly(m.generate(TimeframeDaily, start, end)), nil
	}
	return m.generate(timeframe, start, end), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ string) (float64, error) {
	return m.Price, nil
}

func (m *MockFetcher) generate(timeframe string, start, end time.Time) []model.OHLCV {
	interval := BarInterval(timeframe)
	count := int(end.Sub(start) / interval)
	if count <= 0 {
		return nil
	}

	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		// Two superimposed cycles produce alternating swing highs and
		// lows plus a longer drift.
		phase := float64(i)
		p := m.Price * (1 +
			0.02*math.Sin(phase*2*math.Pi/40) +
			0.05*math.Sin(phase*2*math.Pi/160))
		spread := m.Price * 0.004
		// Volume concentrates near the base price.
		vol := 500000 + 500000*math.Exp(-math.Pow((p-m.Price)/(m.Price*0.01), 2))
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * interval),
			Open:   p - spread/4,
			High:   p + spread,
			Low:    p - spread,
			Close:  p,
			Volume: vol,
		}
	}
	return bars
}
