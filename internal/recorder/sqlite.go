package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists scan results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while the scanner writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id       TEXT NOT NULL UNIQUE,
			symbol        TEXT NOT NULL,
			analysis_time INTEGER NOT NULL,
			fetcher       TEXT,
			current_price REAL,
			atr_daily     REAL,
			atr_m15       REAL,
			scan_low      REAL,
			scan_high     REAL,
			swing_count   INTEGER,
			input_count   INTEGER,
			zone_count    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_symbol_ts ON scans(symbol, analysis_time)`,

		`CREATE TABLE IF NOT EXISTS zones (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id      TEXT NOT NULL,
			zone_seq     INTEGER NOT NULL,
			low          REAL,
			high         REAL,
			center       REAL,
			width        REAL,
			zone_type    TEXT,
			score        REAL,
			level        TEXT,
			input_count  INTEGER,
			distance     REAL,
			pre_cap_width REAL,
			width_capped INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_zones_scan ON zones(scan_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(snap *ScanSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	m := snap.Metrics
	if _, err := tx.Exec(`INSERT INTO scans
		(scan_id, symbol, analysis_time, fetcher,
		 current_price, atr_daily, atr_m15, scan_low, scan_high,
		 swing_count, input_count, zone_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.ScanID, snap.Symbol, snap.AnalysisTime.Unix(), snap.Fetcher,
		m.CurrentPrice, m.ATRDaily, m.ATRM15, m.ScanLow, m.ScanHigh,
		snap.SwingCount, snap.InputCount, len(snap.Zones),
	); err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	for _, z := range snap.Zones {
		if _, err := tx.Exec(`INSERT INTO zones
			(scan_id, zone_seq, low, high, center, width, zone_type,
			 score, level, input_count, distance, pre_cap_width, width_capped)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			snap.ScanID, z.ID, z.Low, z.High, z.Center, z.Width, string(z.Type),
			z.Score, z.Level.String(), len(z.Inputs), z.DistanceFromPrice,
			z.PreCapWidth, boolToInt(z.WidthCapped),
		); err != nil {
			return fmt.Errorf("insert zone %d: %w", z.ID, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
