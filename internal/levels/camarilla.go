package levels

import (
	"errors"

	"ZoneScout/internal/model"
)

// Pivot is one Camarilla level for a timeframe.
type Pivot struct {
	Name      string
	Price     float64
	Strength  int
	Timeframe string
}

// CamarillaResult holds the full R1-R6/S1-S6 ladder computed from the
// last completed bar of a timeframe.
type CamarillaResult struct {
	Timeframe    string
	High         float64
	Low          float64
	Close        float64
	CentralPivot float64
	RangeType    string // "higher", "lower" or "neutral"
	Pivots       []Pivot
}

// Camarilla computes the pivot ladder from a single aggregated bar
// (the last completed daily/weekly/monthly bar).
func Camarilla(bar model.OHLCV, timeframe string) (CamarillaResult, error) {
	if bar.High < bar.Low {
		return CamarillaResult{}, errors.New("bar high must be >= low")
	}
	if bar.Low <= 0 {
		return CamarillaResult{}, errors.New("bar low must be positive")
	}

	high, low, close := bar.High, bar.Low, bar.Close
	rng := high - low
	pivot := (high + low + close) / 3

	r1 := close + rng*1.1/12
	r2 := close + rng*1.1/6
	r3 := close + rng*1.1/4
	r4 := close + rng*1.1/2
	r5 := (high / low) * close
	r6 := r5 + 1.168*(r5-r4)

	s1 := close - rng*1.1/12
	s2 := close - rng*1.1/6
	s3 := close - rng*1.1/4
	s4 := close - rng*1.1/2
	s5 := close - (r5 - close)
	s6 := close - (r6 - close)

	rangeType := "neutral"
	if close > pivot {
		rangeType = "higher"
	} else if close < pivot {
		rangeType = "lower"
	}

	return CamarillaResult{
		Timeframe:    timeframe,
		High:         high,
		Low:          low,
		Close:        close,
		CentralPivot: pivot,
		RangeType:    rangeType,
		Pivots: []Pivot{
			{"R6", r6, 6, timeframe},
			{"R5", r5, 5, timeframe},
			{"R4", r4, 4, timeframe},
			{"R3", r3, 3, timeframe},
			{"R2", r2, 2, timeframe},
			{"R1", r1, 1, timeframe},
			{"S1", s1, 1, timeframe},
			{"S2", s2, 2, timeframe},
			{"S3", s3, 3, timeframe},
			{"S4", s4, 4, timeframe},
			{"S5", s5, 5, timeframe},
			{"S6", s6, 6, timeframe},
		},
	}, nil
}

// KeyLevels returns the outer-band pivots (strength >= 3) that feed
// confluence analysis; the inner R1/R2/S1/S2 levels are too close to
// price to be meaningful zone anchors.
func (r CamarillaResult) KeyLevels() []Pivot {
	var out []Pivot
	for _, p := range r.Pivots {
		if p.Strength >= 3 {
			out = append(out, p)
		}
	}
	return out
}
