package swing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"ZoneScout/internal/calculator"
	"ZoneScout/internal/model"
)

// ErrReferenceNotFound is returned when the analysis timestamp has no
// bar within one bar-interval of it.
var ErrReferenceNotFound = errors.New("reference time not found in bar series")

// Detector finds significant alternating swing highs and lows in a bar
// series using ZigZag-style confirmation. A swing is a local extreme
// confirmed by lookback bars on each side, and consecutive swings must
// be at least minSignificanceATR mean-ATRs apart.
type Detector struct {
	fractalLength      int
	minSignificanceATR float64
	atrPeriod          int
	lookback           int
}

// NewDetector validates the configuration eagerly. The fractal length
// must be an odd integer >= 3; the significance multiplier and ATR
// period must be positive.
func NewDetector(fractalLength int, minSignificanceATR float64, atrPeriod int) (*Detector, error) {
	if fractalLength < 3 {
		return nil, fmt.Errorf("fractal length must be >= 3, got %d", fractalLength)
	}
	if fractalLength%2 == 0 {
		return nil, fmt.Errorf("fractal length must be odd, got %d", fractalLength)
	}
	if minSignificanceATR <= 0 {
		return nil, fmt.Errorf("min significance ATR multiple must be positive, got %g", minSignificanceATR)
	}
	if atrPeriod <= 0 {
		return nil, fmt.Errorf("ATR period must be positive, got %d", atrPeriod)
	}
	return &Detector{
		fractalLength:      fractalLength,
		minSignificanceATR: minSignificanceATR,
		atrPeriod:          atrPeriod,
		lookback:           fractalLength / 2,
	}, nil
}

// Detect runs swing detection over bars, bounded by analysisTime.
// Bars must be ascending by timestamp. A window shorter than the
// fractal length yields an empty sequence, not an error.
func (d *Detector) Detect(bars []model.OHLCV, analysisTime time.Time) ([]model.SwingPoint, error) {
	if len(bars) < d.fractalLength {
		return nil, nil
	}

	endIdx, err := d.findReferenceIndex(bars, analysisTime)
	if err != nil {
		return nil, err
	}

	atr, err := calculator.ATRSeriesRelaxed(bars, d.atrPeriod)
	if err != nil {
		return nil, fmt.Errorf("compute ATR: %w", err)
	}

	minMove, err := d.minimumMove(bars, atr)
	if err != nil {
		return nil, err
	}

	swings := d.findZigZagSwings(bars, atr, endIdx, minMove)
	return d.refine(swings, minMove), nil
}

// minimumMove derives the minimum significant price move from the mean
// ATR, falling back to 2% of the mean close when ATR is unavailable.
func (d *Detector) minimumMove(bars []model.OHLCV, atr []float64) (float64, error) {
	if mean, err := calculator.MeanATR(atr); err == nil {
		return mean * d.minSignificanceATR, nil
	}
	mean, err := calculator.MeanClose(bars)
	if err != nil {
		return 0, fmt.Errorf("minimum move fallback: %w", err)
	}
	return mean * 0.02, nil
}

func (d *Detector) findZigZagSwings(bars []model.OHLCV, atr []float64, endIdx int, minMove float64) []model.SwingPoint {
	var swings []model.SwingPoint

	// Seed with the first confirmed local extreme of either kind.
	var last *model.SwingPoint
	for idx := d.lookback; idx <= endIdx && last == nil; idx++ {
		switch {
		case d.isLocalHigh(bars, idx):
			p := swingAt(bars, atr, idx, model.SwingHigh)
			swings = append(swings, p)
			last = &p
		case d.isLocalLow(bars, idx):
			p := swingAt(bars, atr, idx, model.SwingLow)
			swings = append(swings, p)
			last = &p
		}
	}
	if last == nil {
		return nil
	}

	// Alternate: after a high look for the next significant low and
	// vice versa, until no further candidate confirms.
	for {
		var next *model.SwingPoint
		if last.Kind == model.SwingHigh {
			next = d.nextSignificantLow(bars, atr, last.Index+1, endIdx, last.Price, minMove)
		} else {
			next = d.nextSignificantHigh(bars, atr, last.Index+1, endIdx, last.Price, minMove)
		}
		if next == nil {
			break
		}
		swings = append(swings, *next)
		last = next
	}
	return swings
}

// nextSignificantHigh scans forward for the most extreme confirmed
// local high at least minMove above lastPrice. Confirmation fires when
// price reverses back below the best candidate by minMove; until then
// an even higher candidate replaces the pending one.
func (d *Detector) nextSignificantHigh(bars []model.OHLCV, atr []float64, start, end int, lastPrice, minMove float64) *model.SwingPoint {
	var pending *model.SwingPoint
	pendingPrice := lastPrice

	limit := len(bars) - d.lookback
	if end+1 < limit {
		limit = end + 1
	}
	for idx := start + d.lookback; idx < limit; idx++ {
		h := bars[idx].High
		if d.isLocalHigh(bars, idx) && h-lastPrice >= minMove && h > pendingPrice {
			p := swingAt(bars, atr, idx, model.SwingHigh)
			pending = &p
			pendingPrice = h
		}
		if pending != nil && pendingPrice-bars[idx].Low >= minMove {
			return pending
		}
	}
	return pending
}

// nextSignificantLow is the mirror of nextSignificantHigh.
func (d *Detector) nextSignificantLow(bars []model.OHLCV, atr []float64, start, end int, lastPrice, minMove float64) *model.SwingPoint {
	var pending *model.SwingPoint
	pendingPrice := lastPrice

	limit := len(bars) - d.lookback
	if end+1 < limit {
		limit = end + 1
	}
	for idx := start + d.lookback; idx < limit; idx++ {
		l := bars[idx].Low
		if d.isLocalLow(bars, idx) && lastPrice-l >= minMove && l < pendingPrice {
			p := swingAt(bars, atr, idx, model.SwingLow)
			pending = &p
			pendingPrice = l
		}
		if pending != nil && bars[idx].High-pendingPrice >= minMove {
			return pending
		}
	}
	return pending
}

// refine enforces strict alternation and the minimum-move invariant.
// When two consecutive points share a kind only the more extreme one
// survives; opposite-kind pairs closer than minMove are dropped.
func (d *Detector) refine(swings []model.SwingPoint, minMove float64) []model.SwingPoint {
	if len(swings) < 2 {
		return swings
	}
	refined := []model.SwingPoint{swings[0]}
	for _, cur := range swings[1:] {
		last := &refined[len(refined)-1]
		if cur.Kind != last.Kind {
			if math.Abs(cur.Price-last.Price) >= minMove {
				refined = append(refined, cur)
			}
			continue
		}
		if cur.Kind == model.SwingHigh && cur.Price > last.Price {
			*last = cur
		} else if cur.Kind == model.SwingLow && cur.Price < last.Price {
			*last = cur
		}
	}
	return refined
}

// isLocalHigh reports whether the bar's high strictly exceeds every
// high within lookback positions on both sides.
func (d *Detector) isLocalHigh(bars []model.OHLCV, idx int) bool {
	if idx < d.lookback || idx >= len(bars)-d.lookback {
		return false
	}
	h := bars[idx].High
	for i := 1; i <= d.lookback; i++ {
		if bars[idx-i].High >= h || bars[idx+i].High >= h {
			return false
		}
	}
	return true
}

func (d *Detector) isLocalLow(bars []model.OHLCV, idx int) bool {
	if idx < d.lookback || idx >= len(bars)-d.lookback {
		return false
	}
	l := bars[idx].Low
	for i := 1; i <= d.lookback; i++ {
		if bars[idx-i].Low <= l || bars[idx+i].Low <= l {
			return false
		}
	}
	return true
}

// findReferenceIndex locates the bar nearest to analysisTime, erroring
// when the nearest bar is farther away than one bar-interval. The
// interval is the median spacing of the series; sessions may gap, so a
// fixed spacing is never assumed.
func (d *Detector) findReferenceIndex(bars []model.OHLCV, analysisTime time.Time) (int, error) {
	best := 0
	bestDiff := absDuration(bars[0].Time.Sub(analysisTime))
	for i := 1; i < len(bars); i++ {
		diff := absDuration(bars[i].Time.Sub(analysisTime))
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	if tolerance := medianInterval(bars); bestDiff > tolerance {
		return 0, fmt.Errorf("%w: %s (nearest bar %s away)",
			ErrReferenceNotFound, analysisTime.Format(time.RFC3339), bestDiff)
	}
	return best, nil
}

func medianInterval(bars []model.OHLCV) time.Duration {
	deltas := make([]time.Duration, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		deltas = append(deltas, bars[i].Time.Sub(bars[i-1].Time))
	}
	if len(deltas) == 0 {
		return 0
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i] < deltas[j] })
	return deltas[len(deltas)/2]
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func swingAt(bars []model.OHLCV, atr []float64, idx int, kind model.SwingKind) model.SwingPoint {
	price := bars[idx].High
	if kind == model.SwingLow {
		price = bars[idx].Low
	}
	return model.SwingPoint{
		Index: idx,
		Time:  bars[idx].Time,
		Kind:  kind,
		Price: price,
		ATR:   atr[idx],
	}
}
