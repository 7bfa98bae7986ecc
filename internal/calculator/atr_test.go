package calculator

import (
	"math"
	"testing"
	"time"

	"ZoneScout/internal/model"
)

func makeBars(rows [][3]float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(rows))
	base := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
	for i, r := range rows {
		bars[i] = model.OHLCV{
			Time:   base.Add(time.Duration(i) * 15 * time.Minute),
			Open:   r[2],
			High:   r[0],
			Low:    r[1],
			Close:  r[2],
			Volume: 1000,
		}
	}
	return bars
}

func TestTrueRange_FirstBarDegeneratesToHighLow(t *testing.T) {
	bar := model.OHLCV{High: 105, Low: 95, Close: 100}
	tr := TrueRange(bar, math.NaN())
	if tr != 10 {
		t.Errorf("expected 10, got %.2f", tr)
	}
}

func TestTrueRange_GapDominates(t *testing.T) {
	// Gap up: previous close far below the bar's low.
	bar := model.OHLCV{High: 110, Low: 108, Close: 109}
	tr := TrueRange(bar, 100)
	if tr != 10 {
		t.Errorf("expected 10 (high-prevClose), got %.2f", tr)
	}
	// Gap down: previous close far above the bar's high.
	bar = model.OHLCV{High: 92, Low: 90, Close: 91}
	tr = TrueRange(bar, 100)
	if tr != 10 {
		t.Errorf("expected 10 (low-prevClose), got %.2f", tr)
	}
}

func TestATRSeries_LeadingValuesUndefined(t *testing.T) {
	bars := makeBars([][3]float64{
		{105, 95, 100}, {106, 96, 101}, {107, 97, 102}, {108, 98, 103}, {109, 99, 104},
	})
	series, err := ATRSeries(bars, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != len(bars) {
		t.Fatalf("expected %d values, got %d", len(bars), len(series))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(series[i]) {
			t.Errorf("series[%d]: expected NaN, got %.2f", i, series[i])
		}
	}
	// Each bar after the first has TR = 10 (high-low dominates); the
	// first bar's TR is also 10, so every defined ATR is exactly 10.
	for i := 2; i < len(series); i++ {
		if math.Abs(series[i]-10) > 1e-9 {
			t.Errorf("series[%d]: expected 10, got %.4f", i, series[i])
		}
	}
}

func TestATRSeriesRelaxed_DefinedFromFirstBar(t *testing.T) {
	bars := makeBars([][3]float64{{105, 95, 100}, {106, 96, 101}})
	series, err := ATRSeriesRelaxed(bars, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range series {
		if math.IsNaN(v) {
			t.Errorf("series[%d]: expected defined value in relaxed mode", i)
		}
	}
}

func TestATRSeries_EmptyInput(t *testing.T) {
	series, err := ATRSeries(nil, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("expected empty output, got %d values", len(series))
	}
}

func TestATRSeries_InvalidPeriod(t *testing.T) {
	if _, err := ATRSeries(makeBars([][3]float64{{105, 95, 100}}), 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestMeanATR_SkipsUndefined(t *testing.T) {
	mean, err := MeanATR([]float64{math.NaN(), 8, 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mean != 10 {
		t.Errorf("expected 10, got %.2f", mean)
	}
	if _, err := MeanATR([]float64{math.NaN()}); err == nil {
		t.Error("expected error when no value is defined")
	}
}

func TestScanRange(t *testing.T) {
	low, high, err := ScanRange(100, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low != 90 || high != 110 {
		t.Errorf("expected [90, 110], got [%.2f, %.2f]", low, high)
	}
	if _, _, err := ScanRange(0, 5, 2); err == nil {
		t.Error("expected error for non-positive price")
	}
}
