package levels

import (
	"fmt"
	"sort"

	"ZoneScout/internal/model"
)

// PriceLevel is one bin of a volume profile.
type PriceLevel struct {
	Index          int
	Low            float64
	High           float64
	Center         float64
	Volume         float64
	PercentOfTotal float64
}

// VolumePeak is a locally dominant price level in a volume profile
// (a high-volume node). Rank 1 is the highest-volume peak.
type VolumePeak struct {
	Price         float64
	Rank          int
	VolumePercent float64
	LevelIndex    int
}

// Profile builds fixed-bin volume profiles from bar data and extracts
// high-volume-node peaks from them.
type Profile struct {
	levels            int
	minPeakDistance   int
	prominencePercent float64
}

// NewProfile validates the profile configuration. prominencePercent is
// the minimum peak volume as a percentage of the largest bin.
func NewProfile(levels, minPeakDistance int, prominencePercent float64) (*Profile, error) {
	if levels < 2 {
		return nil, fmt.Errorf("profile levels must be >= 2, got %d", levels)
	}
	if minPeakDistance < 1 {
		return nil, fmt.Errorf("min peak distance must be >= 1, got %d", minPeakDistance)
	}
	if prominencePercent < 0 || prominencePercent > 100 {
		return nil, fmt.Errorf("prominence percent must be in [0, 100], got %g", prominencePercent)
	}
	return &Profile{
		levels:            levels,
		minPeakDistance:   minPeakDistance,
		prominencePercent: prominencePercent,
	}, nil
}

// Build bins the bars' volume into price levels. Each bar's volume is
// spread across the bins its high-low range overlaps, proportionally
// to the overlap. Returns nil for empty input or a degenerate range.
func (p *Profile) Build(bars []model.OHLCV) []PriceLevel {
	if len(bars) == 0 {
		return nil
	}

	low, high := bars[0].Low, bars[0].High
	for _, b := range bars[1:] {
		if b.Low < low {
			low = b.Low
		}
		if b.High > high {
			high = b.High
		}
	}
	if high <= low {
		return nil
	}

	unit := (high - low) / float64(p.levels)
	out := make([]PriceLevel, p.levels)
	for i := range out {
		out[i] = PriceLevel{
			Index:  i,
			Low:    low + float64(i)*unit,
			High:   low + float64(i+1)*unit,
			Center: low + (float64(i)+0.5)*unit,
		}
	}

	var total float64
	for _, b := range bars {
		total += b.Volume
		barRange := b.High - b.Low
		if barRange <= 0 {
			// Point bar: all volume into the containing bin.
			out[p.binFor(b.Low, low, unit)].Volume += b.Volume
			continue
		}
		first := p.binFor(b.Low, low, unit)
		last := p.binFor(b.High, low, unit)
		for i := first; i <= last; i++ {
			overlapLow := maxf(out[i].Low, b.Low)
			overlapHigh := minf(out[i].High, b.High)
			if overlapHigh > overlapLow {
				out[i].Volume += b.Volume * (overlapHigh - overlapLow) / barRange
			}
		}
	}

	if total > 0 {
		for i := range out {
			out[i].PercentOfTotal = out[i].Volume / total * 100
		}
	}
	return out
}

// Peaks extracts ranked high-volume nodes from a profile: strict local
// maxima above the prominence threshold, thinned so that no two peaks
// are closer than the minimum level distance (the higher-volume peak
// wins).
func (p *Profile) Peaks(profile []PriceLevel) []VolumePeak {
	if len(profile) < 3 {
		return nil
	}

	var maxVolume float64
	for _, l := range profile {
		if l.Volume > maxVolume {
			maxVolume = l.Volume
		}
	}
	if maxVolume == 0 {
		return nil
	}
	threshold := maxVolume * p.prominencePercent / 100

	var candidates []PriceLevel
	for i := 1; i < len(profile)-1; i++ {
		l := profile[i]
		if l.Volume > profile[i-1].Volume && l.Volume > profile[i+1].Volume && l.Volume >= threshold {
			candidates = append(candidates, l)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Volume > candidates[j].Volume
	})

	var peaks []VolumePeak
	for _, c := range candidates {
		tooClose := false
		for _, accepted := range peaks {
			if absInt(c.Index-accepted.LevelIndex) < p.minPeakDistance {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		peaks = append(peaks, VolumePeak{
			Price:         c.Center,
			Rank:          len(peaks) + 1,
			VolumePercent: c.PercentOfTotal,
			LevelIndex:    c.Index,
		})
	}
	return peaks
}

// PeaksForBars builds the profile and extracts peaks in one call.
func (p *Profile) PeaksForBars(bars []model.OHLCV) []VolumePeak {
	return p.Peaks(p.Build(bars))
}

func (p *Profile) binFor(price, low, unit float64) int {
	i := int((price - low) / unit)
	if i < 0 {
		i = 0
	}
	if i >= p.levels {
		i = p.levels - 1
	}
	return i
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
