package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ZoneScout/internal/recorder"
	"ZoneScout/internal/scanner"
)

// Scheduler runs periodic confluence scans over a symbol list.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Recorder recorder.Recorder
	Symbols  []string
	Manual   scanner.ManualLevels
}

// NewScheduler creates a new Scheduler.
func NewScheduler(sc *scanner.Scanner, rec recorder.Recorder, symbols []string, manual scanner.ManualLevels) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Recorder: rec,
		Symbols:  symbols,
		Manual:   manual,
	}
}

// Register installs the scan task under the given cron expression.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the scan task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.scanTask()
}

// scanTask scans every configured symbol. Symbols are independent, so
// they run concurrently; each failure is logged without stopping the
// others.
func (s *Scheduler) scanTask() {
	analysisTime := time.Now().UTC()
	log.Printf("[INFO] running scan task for %d symbols", len(s.Symbols))

	var wg sync.WaitGroup
	for _, symbol := range s.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			s.scanSymbol(symbol, analysisTime)
		}(symbol)
	}
	wg.Wait()
}

func (s *Scheduler) scanSymbol(symbol string, analysisTime time.Time) {
	res, err := s.Scanner.Scan(symbol, analysisTime, s.Manual)
	if err != nil {
		log.Printf("[ERROR] scan %s: %v", symbol, err)
		return
	}

	log.Printf("[INFO] scan %s done: %d inputs, %d zones", symbol, res.InputCount, len(res.Zones))
	fmt.Print(scanner.FormatReport(res))

	if err := s.Recorder.RecordScan(&recorder.ScanSnapshot{
		ScanID:       res.ScanID,
		Symbol:       res.Symbol,
		AnalysisTime: res.AnalysisTime,
		Fetcher:      res.Fetcher,
		Metrics:      res.Metrics,
		Zones:        res.Zones,
		SwingCount:   len(res.Swings),
		InputCount:   res.InputCount,
	}); err != nil {
		log.Printf("[ERROR] record scan %s: %v", symbol, err)
	}
}
