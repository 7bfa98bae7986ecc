package levels

import (
	"math"
	"testing"

	"ZoneScout/internal/model"
)

// backgroundBars covers 95..105 with evenly spread volume so profiles
// have a well-defined range without strict local maxima of their own.
func backgroundBars(volume float64) []model.OHLCV {
	return []model.OHLCV{{High: 105, Low: 95, Close: 100, Volume: volume}}
}

func TestBuild_SpreadsVolumeProportionally(t *testing.T) {
	p, err := NewProfile(10, 3, 5)
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}
	profile := p.Build(backgroundBars(1000))
	if len(profile) != 10 {
		t.Fatalf("expected 10 levels, got %d", len(profile))
	}
	for _, l := range profile {
		if math.Abs(l.Volume-100) > 1e-9 {
			t.Errorf("level %d: expected even spread of 100, got %.4f", l.Index, l.Volume)
		}
		if math.Abs(l.PercentOfTotal-10) > 1e-9 {
			t.Errorf("level %d: expected 10%% of total, got %.4f", l.Index, l.PercentOfTotal)
		}
	}
	if math.Abs(profile[0].Low-95) > 1e-9 || math.Abs(profile[9].High-105) > 1e-9 {
		t.Errorf("profile bounds [%.2f, %.2f] do not span the bar range",
			profile[0].Low, profile[9].High)
	}
}

func TestBuild_PointBarGoesToContainingBin(t *testing.T) {
	p, _ := NewProfile(10, 3, 5)
	bars := append(backgroundBars(100), model.OHLCV{High: 100.5, Low: 100.5, Close: 100.5, Volume: 500})
	profile := p.Build(bars)
	// 100.5 falls in bin 5 (100..101).
	if math.Abs(profile[5].Volume-510) > 1e-9 {
		t.Errorf("expected point-bar volume in bin 5, got %.4f", profile[5].Volume)
	}
}

func TestPeaks_SingleConcentration(t *testing.T) {
	p, _ := NewProfile(10, 3, 5)
	bars := append(backgroundBars(100),
		model.OHLCV{High: 100.8, Low: 100.2, Close: 100.5, Volume: 1000})
	peaks := p.PeaksForBars(bars)
	if len(peaks) != 1 {
		t.Fatalf("expected 1 peak, got %d", len(peaks))
	}
	pk := peaks[0]
	if pk.Rank != 1 {
		t.Errorf("expected rank 1, got %d", pk.Rank)
	}
	if pk.LevelIndex != 5 {
		t.Errorf("expected peak in bin 5, got %d", pk.LevelIndex)
	}
	if math.Abs(pk.Price-100.5) > 1e-9 {
		t.Errorf("expected peak at bin center 100.5, got %.4f", pk.Price)
	}
	// 1010 of 1100 total.
	if math.Abs(pk.VolumePercent-1010.0/1100.0*100) > 1e-6 {
		t.Errorf("unexpected volume percent %.4f", pk.VolumePercent)
	}
}

func TestPeaks_RankedByVolume(t *testing.T) {
	p, _ := NewProfile(10, 3, 5)
	bars := append(backgroundBars(100),
		model.OHLCV{High: 97.8, Low: 97.2, Close: 97.5, Volume: 800},  // bin 2
		model.OHLCV{High: 102.8, Low: 102.2, Close: 102.5, Volume: 1000}, // bin 7
	)
	peaks := p.PeaksForBars(bars)
	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks, got %d", len(peaks))
	}
	if peaks[0].LevelIndex != 7 || peaks[0].Rank != 1 {
		t.Errorf("expected highest-volume peak in bin 7 at rank 1, got bin %d rank %d",
			peaks[0].LevelIndex, peaks[0].Rank)
	}
	if peaks[1].LevelIndex != 2 || peaks[1].Rank != 2 {
		t.Errorf("expected second peak in bin 2 at rank 2, got bin %d rank %d",
			peaks[1].LevelIndex, peaks[1].Rank)
	}
}

func TestPeaks_MinDistanceKeepsStronger(t *testing.T) {
	p, _ := NewProfile(10, 3, 5)
	bars := append(backgroundBars(100),
		model.OHLCV{High: 99.8, Low: 99.2, Close: 99.5, Volume: 800},  // bin 4
		model.OHLCV{High: 101.8, Low: 101.2, Close: 101.5, Volume: 1000}, // bin 6
	)
	peaks := p.PeaksForBars(bars)
	if len(peaks) != 1 {
		t.Fatalf("expected the weaker nearby peak to be thinned, got %d peaks", len(peaks))
	}
	if peaks[0].LevelIndex != 6 {
		t.Errorf("expected the stronger peak in bin 6 to survive, got bin %d", peaks[0].LevelIndex)
	}
}

func TestPeaks_ProminenceThreshold(t *testing.T) {
	p, _ := NewProfile(10, 1, 50)
	bars := append(backgroundBars(100),
		model.OHLCV{High: 97.8, Low: 97.2, Close: 97.5, Volume: 50},   // bin 2, below threshold
		model.OHLCV{High: 102.8, Low: 102.2, Close: 102.5, Volume: 1000}, // bin 7
	)
	peaks := p.PeaksForBars(bars)
	if len(peaks) != 1 {
		t.Fatalf("expected low-prominence bump to be rejected, got %d peaks", len(peaks))
	}
	if peaks[0].LevelIndex != 7 {
		t.Errorf("expected surviving peak in bin 7, got bin %d", peaks[0].LevelIndex)
	}
}

func TestProfile_DegenerateInputs(t *testing.T) {
	p, _ := NewProfile(10, 3, 5)
	if got := p.Build(nil); got != nil {
		t.Error("expected nil profile for empty input")
	}
	flat := []model.OHLCV{{High: 100, Low: 100, Close: 100, Volume: 10}}
	if got := p.Build(flat); got != nil {
		t.Error("expected nil profile for zero price range")
	}
	if peaks := p.Peaks(nil); peaks != nil {
		t.Error("expected no peaks from nil profile")
	}
}

func TestNewProfile_Validation(t *testing.T) {
	if _, err := NewProfile(1, 3, 5); err == nil {
		t.Error("expected error for too few levels")
	}
	if _, err := NewProfile(10, 0, 5); err == nil {
		t.Error("expected error for zero min peak distance")
	}
	if _, err := NewProfile(10, 3, 120); err == nil {
		t.Error("expected error for prominence over 100")
	}
}
