package calculator

import (
	"errors"
	"math"

	"ZoneScout/internal/model"
)

// TrueRange returns the true range of a bar given the previous close.
// For the first bar of a series (no previous close) pass NaN; the true
// range then degenerates to high-low.
func TrueRange(bar model.OHLCV, prevClose float64) float64 {
	hl := bar.High - bar.Low
	if math.IsNaN(prevClose) {
		return hl
	}
	hc := math.Abs(bar.High - prevClose)
	lc := math.Abs(bar.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

// ATRSeries computes the rolling mean of true range over the trailing
// period. Output is aligned 1:1 with bars; entries with fewer than
// period-1 prior bars are NaN. An empty input yields an empty output.
func ATRSeries(bars []model.OHLCV, period int) ([]float64, error) {
	return atrSeries(bars, period, period)
}

// ATRSeriesRelaxed is ATRSeries with the minimum-periods relaxation:
// every entry uses whatever trailing history is available, starting
// from the first bar.
func ATRSeriesRelaxed(bars []model.OHLCV, period int) ([]float64, error) {
	return atrSeries(bars, period, 1)
}

func atrSeries(bars []model.OHLCV, period, minPeriods int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(bars) == 0 {
		return nil, nil
	}

	tr := make([]float64, len(bars))
	tr[0] = TrueRange(bars[0], math.NaN())
	for i := 1; i < len(bars); i++ {
		tr[i] = TrueRange(bars[i], bars[i-1].Close)
	}

	out := make([]float64, len(bars))
	var sum float64
	for i := range tr {
		sum += tr[i]
		if i >= period {
			sum -= tr[i-period]
		}
		window := i + 1
		if window > period {
			window = period
		}
		if window < minPeriods {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(window)
		}
	}
	return out, nil
}

// ATR returns the most recent ATR value over the given period.
func ATR(bars []model.OHLCV, period int) (float64, error) {
	series, err := ATRSeries(bars, period)
	if err != nil {
		return 0, err
	}
	if len(series) == 0 || math.IsNaN(series[len(series)-1]) {
		return 0, errors.New("not enough data for ATR calculation")
	}
	return series[len(series)-1], nil
}

// MeanATR returns the mean of the defined (non-NaN) entries of an ATR
// series, or an error when no entry is defined.
func MeanATR(series []float64) (float64, error) {
	var sum float64
	var n int
	for _, v := range series {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, errors.New("no defined ATR values")
	}
	return sum / float64(n), nil
}

// MeanClose returns the mean closing price of the bars.
func MeanClose(bars []model.OHLCV) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New("no bars provided")
	}
	var sum float64
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars)), nil
}
