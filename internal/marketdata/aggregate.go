package marketdata

import "ZoneScout/internal/model"

// AggregateDailyToWeekly converts daily bars into ISO-week bars.
func AggregateDailyToWeekly(daily []model.OHLCV) []model.OHLCV {
	return aggregate(daily, func(b model.OHLCV) int {
		year, isoWeek := b.Time.ISOWeek()
		return year*100 + isoWeek
	})
}

// AggregateDailyToMonthly converts daily bars into calendar-month bars.
func AggregateDailyToMonthly(daily []model.OHLCV) []model.OHLCV {
	return aggregate(daily, func(b model.OHLCV) int {
		return b.Time.Year()*100 + int(b.Time.Month())
	})
}

func aggregate(daily []model.OHLCV, keyOf func(model.OHLCV) int) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}
	var out []model.OHLCV
	var current model.OHLCV
	var started bool

	for _, d := range daily {
		if !started {
			current = d
			started = true
			continue
		}
		if keyOf(d) != keyOf(current) {
			out = append(out, current)
			current = d
			continue
		}
		if d.High > current.High {
			current.High = d.High
		}
		if d.Low < current.Low {
			current.Low = d.Low
		}
		current.Close = d.Close
		current.Volume += d.Volume
	}
	if started {
		out = append(out, current)
	}
	return out
}
