package scanner

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ZoneScout/internal/marketdata"
	"ZoneScout/internal/model"
)

var analysisTime = time.Date(2025, 6, 20, 20, 0, 0, 0, time.UTC)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := New(&marketdata.MockFetcher{Price: 100}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestScan_ProducesRankedZones(t *testing.T) {
	s := newTestScanner(t)
	res, err := s.Scan("ES", analysisTime, ManualLevels{Daily: []float64{100.5}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if res.ScanID == "" {
		t.Error("expected a scan id")
	}
	if res.Symbol != "ES" || !res.AnalysisTime.Equal(analysisTime) {
		t.Errorf("result identity wrong: %s %v", res.Symbol, res.AnalysisTime)
	}
	if res.Fetcher != "mock" {
		t.Errorf("expected mock fetcher name, got %s", res.Fetcher)
	}

	m := res.Metrics
	if m.CurrentPrice != 100 {
		t.Errorf("expected current price 100, got %.2f", m.CurrentPrice)
	}
	if m.ATRDaily <= 0 || m.ATRM15 <= 0 {
		t.Errorf("expected positive ATRs, got daily %.4f m15 %.4f", m.ATRDaily, m.ATRM15)
	}
	if m.ScanLow >= m.CurrentPrice || m.ScanHigh <= m.CurrentPrice {
		t.Errorf("scan range [%.2f, %.2f] does not bracket price", m.ScanLow, m.ScanHigh)
	}

	for i := 1; i < len(res.Zones); i++ {
		if res.Zones[i].DistanceFromPrice < res.Zones[i-1].DistanceFromPrice {
			t.Error("zones not ordered nearest first")
			break
		}
	}
	for _, z := range res.Zones {
		if z.Score <= 0 || z.Level < model.LevelL1 {
			t.Errorf("zone %d not scored: score %.2f level %s", z.ID, z.Score, z.Level)
		}
	}
}

func TestScan_SourceAccounting(t *testing.T) {
	s := newTestScanner(t)
	res, err := s.Scan("ES", analysisTime, ManualLevels{
		Weekly: []float64{100.8},
		Daily:  []float64{99.4},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// ATR band levels sit one daily ATR from price, always inside the
	// two-ATR scan range.
	if res.SourceCounts[model.SourceVolatilityBand] != 2 {
		t.Errorf("expected 2 volatility band inputs, got %d", res.SourceCounts[model.SourceVolatilityBand])
	}
	if res.SourceCounts[model.SourceWeeklyLevel] != 1 {
		t.Errorf("expected manual weekly level to be collected, got %d", res.SourceCounts[model.SourceWeeklyLevel])
	}
	if res.SourceCounts[model.SourceDailyLevel] != 1 {
		t.Errorf("expected manual daily level to be collected, got %d", res.SourceCounts[model.SourceDailyLevel])
	}

	total := 0
	for _, n := range res.SourceCounts {
		total += n
	}
	if total != res.InputCount {
		t.Errorf("source counts sum %d != input count %d", total, res.InputCount)
	}
}

func TestScan_ManualLevelOutsideRangeIsDropped(t *testing.T) {
	s := newTestScanner(t)
	res, err := s.Scan("ES", analysisTime, ManualLevels{Daily: []float64{500}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.SourceCounts[model.SourceDailyLevel] != 0 {
		t.Error("level far outside the scan range should be filtered out")
	}
}

// failingFetcher wraps the mock and fails selected calls.
type failingFetcher struct {
	marketdata.MockFetcher
	failPrice      bool
	failTimeframes map[string]bool
}

func (f *failingFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	if f.failPrice {
		return 0, errors.New("quote endpoint down")
	}
	return f.MockFetcher.FetchCurrentPrice(symbol)
}

func (f *failingFetcher) FetchBars(symbol, timeframe string, start, end time.Time) ([]model.OHLCV, error) {
	if f.failTimeframes[timeframe] {
		return nil, errors.New("bars endpoint down")
	}
	return f.MockFetcher.FetchBars(symbol, timeframe, start, end)
}

func TestScan_FailsWithoutPriceOrDailyData(t *testing.T) {
	f := &failingFetcher{MockFetcher: marketdata.MockFetcher{Price: 100}, failPrice: true}
	s, _ := New(f, Options{})
	if _, err := s.Scan("ES", analysisTime, ManualLevels{}); err == nil {
		t.Error("expected error when current price is unavailable")
	}

	f = &failingFetcher{
		MockFetcher:    marketdata.MockFetcher{Price: 100},
		failTimeframes: map[string]bool{marketdata.TimeframeDaily: true},
	}
	s, _ = New(f, Options{})
	if _, err := s.Scan("ES", analysisTime, ManualLevels{}); err == nil {
		t.Error("expected error when daily bars are unavailable")
	}
}

func TestScan_SurvivesOptionalSourceFailures(t *testing.T) {
	f := &failingFetcher{
		MockFetcher: marketdata.MockFetcher{Price: 100},
		failTimeframes: map[string]bool{
			marketdata.TimeframeM5:      true,
			marketdata.TimeframeWeekly:  true,
			marketdata.TimeframeMonthly: true,
		},
	}
	s, err := New(f, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := s.Scan("ES", analysisTime, ManualLevels{})
	if err != nil {
		t.Fatalf("optional source failures must not fail the scan: %v", err)
	}
	if res.SourceCounts[model.SourceVolumePeak] != 0 {
		t.Error("expected no volume peaks when 5min data is down")
	}
	if res.SourceCounts[model.SourceVolatilityBand] != 2 {
		t.Error("remaining sources should still be collected")
	}
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	if _, err := New(&marketdata.MockFetcher{Price: 100}, Options{FractalLength: 4}); err == nil {
		t.Error("expected error for even fractal length")
	}
	if _, err := New(&marketdata.MockFetcher{Price: 100}, Options{ClusterDistanceATR: -1}); err == nil {
		t.Error("expected error for negative cluster distance")
	}
}

func TestFormatReport(t *testing.T) {
	s := newTestScanner(t)
	res, err := s.Scan("ES", analysisTime, ManualLevels{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	report := FormatReport(res)
	for _, want := range []string{"ES", res.ScanID, "Scan range", "Inputs"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
