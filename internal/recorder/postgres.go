package recorder

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresRecorder persists scan results to PostgreSQL.
type PostgresRecorder struct {
	db *sqlx.DB
}

// NewPostgresRecorder connects, verifies the connection and runs migrations.
func NewPostgresRecorder(dsn string) (*PostgresRecorder, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	r := &PostgresRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Println("[INFO] postgres recorder connected")
	return r, nil
}

func (r *PostgresRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id            BIGSERIAL PRIMARY KEY,
			scan_id       TEXT NOT NULL UNIQUE,
			symbol        TEXT NOT NULL,
			analysis_time TIMESTAMPTZ NOT NULL,
			fetcher       TEXT,
			current_price DOUBLE PRECISION,
			atr_daily     DOUBLE PRECISION,
			atr_m15       DOUBLE PRECISION,
			scan_low      DOUBLE PRECISION,
			scan_high     DOUBLE PRECISION,
			swing_count   INTEGER,
			input_count   INTEGER,
			zone_count    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_symbol_ts ON scans(symbol, analysis_time)`,

		`CREATE TABLE IF NOT EXISTS zones (
			id            BIGSERIAL PRIMARY KEY,
			scan_id       TEXT NOT NULL REFERENCES scans(scan_id),
			zone_seq      INTEGER NOT NULL,
			low           DOUBLE PRECISION,
			high          DOUBLE PRECISION,
			center        DOUBLE PRECISION,
			width         DOUBLE PRECISION,
			zone_type     TEXT,
			score         DOUBLE PRECISION,
			level         TEXT,
			input_count   INTEGER,
			distance      DOUBLE PRECISION,
			pre_cap_width DOUBLE PRECISION,
			width_capped  BOOLEAN
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

type scanRow struct {
	ScanID       string  `db:"scan_id"`
	Symbol       string  `db:"symbol"`
	AnalysisTime int64   `db:"analysis_time"`
	Fetcher      string  `db:"fetcher"`
	CurrentPrice float64 `db:"current_price"`
	ATRDaily     float64 `db:"atr_daily"`
	ATRM15       float64 `db:"atr_m15"`
	ScanLow      float64 `db:"scan_low"`
	ScanHigh     float64 `db:"scan_high"`
	SwingCount   int     `db:"swing_count"`
	InputCount   int     `db:"input_count"`
	ZoneCount    int     `db:"zone_count"`
}

type zoneRow struct {
	ScanID      string  `db:"scan_id"`
	ZoneSeq     int     `db:"zone_seq"`
	Low         float64 `db:"low"`
	High        float64 `db:"high"`
	Center      float64 `db:"center"`
	Width       float64 `db:"width"`
	ZoneType    string  `db:"zone_type"`
	Score       float64 `db:"score"`
	Level       string  `db:"level"`
	InputCount  int     `db:"input_count"`
	Distance    float64 `db:"distance"`
	PreCapWidth float64 `db:"pre_cap_width"`
	WidthCapped bool    `db:"width_capped"`
}

func (r *PostgresRecorder) RecordScan(snap *ScanSnapshot) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	m := snap.Metrics
	if _, err := tx.NamedExec(`INSERT INTO scans
		(scan_id, symbol, analysis_time, fetcher,
		 current_price, atr_daily, atr_m15, scan_low, scan_high,
		 swing_count, input_count, zone_count)
		VALUES (:scan_id, :symbol, to_timestamp(:analysis_time), :fetcher,
		 :current_price, :atr_daily, :atr_m15, :scan_low, :scan_high,
		 :swing_count, :input_count, :zone_count)`,
		scanRow{
			ScanID:       snap.ScanID,
			Symbol:       snap.Symbol,
			AnalysisTime: snap.AnalysisTime.Unix(),
			Fetcher:      snap.Fetcher,
			CurrentPrice: m.CurrentPrice,
			ATRDaily:     m.ATRDaily,
			ATRM15:       m.ATRM15,
			ScanLow:      m.ScanLow,
			ScanHigh:     m.ScanHigh,
			SwingCount:   snap.SwingCount,
			InputCount:   snap.InputCount,
			ZoneCount:    len(snap.Zones),
		}); err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	for _, z := range snap.Zones {
		if _, err := tx.NamedExec(`INSERT INTO zones
			(scan_id, zone_seq, low, high, center, width, zone_type,
			 score, level, input_count, distance, pre_cap_width, width_capped)
			VALUES (:scan_id, :zone_seq, :low, :high, :center, :width, :zone_type,
			 :score, :level, :input_count, :distance, :pre_cap_width, :width_capped)`,
			zoneRow{
				ScanID:      snap.ScanID,
				ZoneSeq:     z.ID,
				Low:         z.Low,
				High:        z.High,
				Center:      z.Center,
				Width:       z.Width,
				ZoneType:    string(z.Type),
				Score:       z.Score,
				Level:       z.Level.String(),
				InputCount:  len(z.Inputs),
				Distance:    z.DistanceFromPrice,
				PreCapWidth: z.PreCapWidth,
				WidthCapped: z.WidthCapped,
			}); err != nil {
			return fmt.Errorf("insert zone %d: %w", z.ID, err)
		}
	}

	return tx.Commit()
}

func (r *PostgresRecorder) Close() error {
	log.Println("[INFO] closing postgres recorder")
	return r.db.Close()
}
