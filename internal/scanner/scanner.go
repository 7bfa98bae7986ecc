package scanner

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ZoneScout/internal/calculator"
	"ZoneScout/internal/confluence"
	"ZoneScout/internal/levels"
	"ZoneScout/internal/marketdata"
	"ZoneScout/internal/model"
	"ZoneScout/internal/swing"
)

// Options configures a Scanner. Zero values select the defaults below.
type Options struct {
	FractalLength      int
	MinSignificanceATR float64
	ATRPeriod          int
	LookbackDays       int

	ClusterDistanceATR float64
	MaxZoneWidthATR    float64
	MinConfluenceScore float64
	ScanRangeATR       float64
	RefineZones        bool

	Weights model.WeightTable

	ProfileLevels   int
	PeakMinDistance int
	PeakProminence  float64
}

func (o Options) withDefaults() Options {
	if o.FractalLength == 0 {
		o.FractalLength = 5
	}
	if o.MinSignificanceATR == 0 {
		o.MinSignificanceATR = 1.0
	}
	if o.ATRPeriod == 0 {
		o.ATRPeriod = 14
	}
	if o.LookbackDays == 0 {
		o.LookbackDays = 30
	}
	if o.ClusterDistanceATR == 0 {
		o.ClusterDistanceATR = 1.5
	}
	if o.MaxZoneWidthATR == 0 {
		o.MaxZoneWidthATR = 3.0
	}
	if o.MinConfluenceScore == 0 {
		o.MinConfluenceScore = 2.0
	}
	if o.ScanRangeATR == 0 {
		o.ScanRangeATR = 2.0
	}
	if o.ProfileLevels == 0 {
		o.ProfileLevels = 50
	}
	if o.PeakMinDistance == 0 {
		o.PeakMinDistance = 3
	}
	if o.PeakProminence == 0 {
		o.PeakProminence = 5
	}
	return o
}

// ManualLevels are operator-supplied reference prices fed into a scan.
type ManualLevels struct {
	Weekly []float64
	Daily  []float64
}

// Result is the outcome of one symbol scan.
type Result struct {
	ScanID       string
	Symbol       string
	AnalysisTime time.Time
	Fetcher      string
	Metrics      model.MarketMetrics
	Swings       []model.SwingPoint
	Zones        []model.Zone
	SourceCounts map[model.SourceType]int
	InputCount   int
}

// Scanner runs the full confluence pipeline for one symbol at a time:
// metrics, source collection, clustering, scoring.
type Scanner struct {
	fetcher   marketdata.Fetcher
	opts      Options
	detector  *swing.Detector
	clusterer *confluence.Clusterer
	profile   *levels.Profile
}

// New validates the options and builds the pipeline components.
func New(fetcher marketdata.Fetcher, opts Options) (*Scanner, error) {
	opts = opts.withDefaults()

	detector, err := swing.NewDetector(opts.FractalLength, opts.MinSignificanceATR, opts.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("swing detector: %w", err)
	}
	clusterer, err := confluence.NewClusterer(opts.ClusterDistanceATR, opts.MaxZoneWidthATR, opts.MinConfluenceScore)
	if err != nil {
		return nil, fmt.Errorf("clusterer: %w", err)
	}
	profile, err := levels.NewProfile(opts.ProfileLevels, opts.PeakMinDistance, opts.PeakProminence)
	if err != nil {
		return nil, fmt.Errorf("volume profile: %w", err)
	}
	return &Scanner{
		fetcher:   fetcher,
		opts:      opts,
		detector:  detector,
		clusterer: clusterer,
		profile:   profile,
	}, nil
}

// Scan analyzes one symbol at the given time. Individual source
// producers that fail are logged and skipped; the scan fails only when
// price or volatility data is unavailable.
func (s *Scanner) Scan(symbol string, analysisTime time.Time, manual ManualLevels) (*Result, error) {
	currentPrice, err := s.fetcher.FetchCurrentPrice(symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch current price: %w", err)
	}

	dailyBars, err := s.fetcher.FetchBars(symbol, marketdata.TimeframeDaily,
		analysisTime.AddDate(0, 0, -300), analysisTime)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	dailyATR, err := calculator.ATR(dailyBars, s.opts.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("daily ATR: %w", err)
	}

	m15Bars, err := s.fetcher.FetchBars(symbol, marketdata.TimeframeM15,
		analysisTime.AddDate(0, 0, -s.opts.LookbackDays), analysisTime)
	if err != nil {
		return nil, fmt.Errorf("fetch 15min bars: %w", err)
	}
	atrUnit, err := calculator.ATR(m15Bars, s.opts.ATRPeriod)
	if err != nil {
		log.Printf("[WARN] 15min ATR unavailable for %s: %v, falling back to scaled daily ATR", symbol, err)
		atrUnit = dailyATR / 10
	}

	scanLow, scanHigh, err := calculator.ScanRange(currentPrice, dailyATR, s.opts.ScanRangeATR)
	if err != nil {
		return nil, fmt.Errorf("scan range: %w", err)
	}

	metrics := model.MarketMetrics{
		CurrentPrice: currentPrice,
		ATRDaily:     dailyATR,
		ATRM15:       atrUnit,
		ScanLow:      scanLow,
		ScanHigh:     scanHigh,
	}

	collector, err := confluence.NewCollector(s.opts.Weights)
	if err != nil {
		return nil, fmt.Errorf("collector: %w", err)
	}

	// Swings
	swings, err := s.detector.Detect(m15Bars, analysisTime)
	if err != nil {
		log.Printf("[WARN] swing detection failed for %s: %v", symbol, err)
	} else {
		collector.AddSwings(swings)
	}

	s.collectVolumePeaks(collector, symbol, analysisTime)
	s.collectPivots(collector, symbol, analysisTime)

	collector.AddLevels(model.SourceWeeklyLevel, "WL", manual.Weekly)
	collector.AddLevels(model.SourceDailyLevel, "DL", manual.Daily)

	collector.AddLevel(model.SourceVolatilityBand, "ATR_HIGH", currentPrice+dailyATR)
	collector.AddLevel(model.SourceVolatilityBand, "ATR_LOW", currentPrice-dailyATR)

	s.collectMarketStructure(collector, dailyBars)

	inputs := inScanRange(collector.Inputs(), scanLow, scanHigh)

	zones := s.clusterer.Cluster(inputs, currentPrice, atrUnit)
	if s.opts.RefineZones {
		zones = s.clusterer.RefineToUnit(zones, atrUnit)
	}
	confluence.NewScorer(analysisTime).Score(zones, atrUnit)

	counts := make(map[model.SourceType]int)
	for _, in := range inputs {
		counts[in.Source]++
	}

	return &Result{
		ScanID:       uuid.NewString(),
		Symbol:       symbol,
		AnalysisTime: analysisTime,
		Fetcher:      s.fetcher.Name(),
		Metrics:      metrics,
		Swings:       swings,
		Zones:        zones,
		SourceCounts: counts,
		InputCount:   len(inputs),
	}, nil
}

// collectVolumePeaks adds high-volume-node peaks from trailing 30, 14
// and 7 day windows of 5-minute data.
func (s *Scanner) collectVolumePeaks(collector *confluence.Collector, symbol string, analysisTime time.Time) {
	bars, err := s.fetcher.FetchBars(symbol, marketdata.TimeframeM5,
		analysisTime.AddDate(0, 0, -30), analysisTime)
	if err != nil {
		log.Printf("[WARN] 5min bars unavailable for %s, skipping volume peaks: %v", symbol, err)
		return
	}
	for _, days := range []int{30, 14, 7} {
		cutoff := analysisTime.AddDate(0, 0, -days)
		window := barsSince(bars, cutoff)
		peaks := s.profile.PeaksForBars(window)
		for _, pk := range peaks {
			collector.AddTimedLevel(model.SourceVolumePeak,
				fmt.Sprintf("HVN%d_%d", days, pk.Rank), pk.Price, cutoff)
		}
	}
}

// collectPivots adds camarilla key levels for the daily, weekly and
// monthly timeframes, computed from the last completed bar of each.
func (s *Scanner) collectPivots(collector *confluence.Collector, symbol string, analysisTime time.Time) {
	frames := []struct {
		timeframe string
		prefix    string
		lookback  int // days of daily history needed
	}{
		{marketdata.TimeframeDaily, "D", 10},
		{marketdata.TimeframeWeekly, "W", 30},
		{marketdata.TimeframeMonthly, "M", 90},
	}
	for _, fr := range frames {
		bars, err := s.fetcher.FetchBars(symbol, fr.timeframe,
			analysisTime.AddDate(0, 0, -fr.lookback), analysisTime)
		if err != nil {
			log.Printf("[WARN] %s bars unavailable for %s, skipping pivots: %v", fr.timeframe, symbol, err)
			continue
		}
		bar, ok := lastCompleted(bars, analysisTime)
		if !ok {
			log.Printf("[WARN] no completed %s bar for %s, skipping pivots", fr.timeframe, symbol)
			continue
		}
		res, err := levels.Camarilla(bar, fr.timeframe)
		if err != nil {
			log.Printf("[WARN] camarilla %s failed for %s: %v", fr.timeframe, symbol, err)
			continue
		}
		for _, p := range res.KeyLevels() {
			collector.AddLevel(model.SourcePivotLevel, fr.prefix+p.Name, p.Price)
		}
	}
}

// collectMarketStructure adds the prior day's high, low and close plus
// the prior week's high and low.
func (s *Scanner) collectMarketStructure(collector *confluence.Collector, dailyBars []model.OHLCV) {
	if len(dailyBars) >= 2 {
		prev := dailyBars[len(dailyBars)-2]
		collector.AddTimedLevel(model.SourceMarketStructure, "PDH", prev.High, prev.Time)
		collector.AddTimedLevel(model.SourceMarketStructure, "PDL", prev.Low, prev.Time)
		collector.AddTimedLevel(model.SourceMarketStructure, "PDC", prev.Close, prev.Time)
	}
	weekly := marketdata.AggregateDailyToWeekly(dailyBars)
	if len(weekly) >= 2 {
		prev := weekly[len(weekly)-2]
		collector.AddTimedLevel(model.SourceMarketStructure, "PWH", prev.High, prev.Time)
		collector.AddTimedLevel(model.SourceMarketStructure, "PWL", prev.Low, prev.Time)
	}
}

func inScanRange(inputs []model.ConfluenceInput, low, high float64) []model.ConfluenceInput {
	var out []model.ConfluenceInput
	for _, in := range inputs {
		if in.Price >= low && in.Price <= high {
			out = append(out, in)
		}
	}
	return out
}

func barsSince(bars []model.OHLCV, cutoff time.Time) []model.OHLCV {
	for i, b := range bars {
		if !b.Time.Before(cutoff) {
			return bars[i:]
		}
	}
	return nil
}

// lastCompleted returns the latest bar whose period has closed before
// the analysis time, taking the preceding bar when the final bar is
// still forming.
func lastCompleted(bars []model.OHLCV, analysisTime time.Time) (model.OHLCV, bool) {
	if len(bars) == 0 {
		return model.OHLCV{}, false
	}
	last := bars[len(bars)-1]
	if len(bars) >= 2 && !last.Time.Before(analysisTime.Truncate(24*time.Hour)) {
		return bars[len(bars)-2], true
	}
	return last, true
}
