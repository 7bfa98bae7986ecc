package recorder

import (
	"time"

	"ZoneScout/internal/model"
)

// ScanSnapshot holds everything worth persisting about one scan.
type ScanSnapshot struct {
	ScanID       string
	Symbol       string
	AnalysisTime time.Time
	Fetcher      string
	Metrics      model.MarketMetrics
	Zones        []model.Zone
	SwingCount   int
	InputCount   int
}

// Recorder persists scan results for later analysis.
type Recorder interface {
	RecordScan(snap *ScanSnapshot) error
	Close() error
}
