package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"ZoneScout/internal/model"
)

func testSnapshot() *ScanSnapshot {
	return &ScanSnapshot{
		ScanID:       "0b2c6f4e-test",
		Symbol:       "ES",
		AnalysisTime: time.Date(2025, 6, 20, 20, 0, 0, 0, time.UTC),
		Fetcher:      "mock",
		Metrics: model.MarketMetrics{
			CurrentPrice: 100,
			ATRDaily:     1.5,
			ATRM15:       0.4,
			ScanLow:      97,
			ScanHigh:     103,
		},
		Zones: []model.Zone{
			{
				ID: 1, Low: 99.5, High: 100.5, Center: 100, Width: 1,
				Type: model.ZoneSupport, Score: 5.5, Level: model.LevelL3,
				DistanceFromPrice: 0, PreCapWidth: 1,
				Inputs: []model.ConfluenceInput{{Price: 100, Source: model.SourceDailyLevel, Weight: 1}},
			},
			{
				ID: 2, Low: 101.5, High: 102.5, Center: 102, Width: 1,
				Type: model.ZoneResistance, Score: 3.1, Level: model.LevelL2,
				DistanceFromPrice: 2, PreCapWidth: 3.4, WidthCapped: true,
			},
		},
		SwingCount: 4,
		InputCount: 9,
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scans.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	snap := testSnapshot()
	if err := r.RecordScan(snap); err != nil {
		t.Fatalf("RecordScan: %v", err)
	}

	var zoneCount int
	if err := r.db.QueryRow(`SELECT zone_count FROM scans WHERE scan_id = ?`, snap.ScanID).Scan(&zoneCount); err != nil {
		t.Fatalf("query scan: %v", err)
	}
	if zoneCount != 2 {
		t.Errorf("expected zone_count 2, got %d", zoneCount)
	}

	var rows int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM zones WHERE scan_id = ?`, snap.ScanID).Scan(&rows); err != nil {
		t.Fatalf("query zones: %v", err)
	}
	if rows != 2 {
		t.Errorf("expected 2 zone rows, got %d", rows)
	}

	var level string
	var capped int
	if err := r.db.QueryRow(`SELECT level, width_capped FROM zones WHERE scan_id = ? AND zone_seq = 2`,
		snap.ScanID).Scan(&level, &capped); err != nil {
		t.Fatalf("query zone 2: %v", err)
	}
	if level != "L2" || capped != 1 {
		t.Errorf("zone 2 persisted wrong: level %s capped %d", level, capped)
	}
}

func TestSQLiteRecorder_DuplicateScanIDRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scans.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	snap := testSnapshot()
	if err := r.RecordScan(snap); err != nil {
		t.Fatalf("first RecordScan: %v", err)
	}
	if err := r.RecordScan(snap); err == nil {
		t.Error("expected unique constraint violation on duplicate scan id")
	}
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoopRecorder()
	if err := n.RecordScan(testSnapshot()); err != nil {
		t.Errorf("noop RecordScan: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("noop Close: %v", err)
	}
}
