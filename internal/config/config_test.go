package config

import (
	"os"
	"path/filepath"
	"testing"

	"ZoneScout/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Symbols) != 1 || cfg.Symbols[0] != "ES" {
		t.Errorf("expected default symbol list [ES], got %v", cfg.Symbols)
	}
	if cfg.Detection.FractalLength != 5 || cfg.Detection.ATRPeriod != 14 {
		t.Errorf("detection defaults not applied: %+v", cfg.Detection)
	}
	if cfg.Clustering.ClusterDistanceATR != 1.5 || cfg.Clustering.MaxZoneWidthATR != 3.0 {
		t.Errorf("clustering defaults not applied: %+v", cfg.Clustering)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
symbols: [NQ, YM]
detection:
  fractal_length: 7
clustering:
  min_confluence_score: 3.5
weights:
  swing-high: 4.0
`)
	t.Setenv("SCAN_SYMBOLS", "ES, RTY")
	t.Setenv("SQLITE_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "ES" || cfg.Symbols[1] != "RTY" {
		t.Errorf("env symbol override not applied: %v", cfg.Symbols)
	}
	if cfg.Detection.FractalLength != 7 {
		t.Errorf("file value lost: %d", cfg.Detection.FractalLength)
	}
	if cfg.Clustering.MinConfluenceScore != 3.5 {
		t.Errorf("file value lost: %g", cfg.Clustering.MinConfluenceScore)
	}
	if cfg.Database.SQLitePath != "/tmp/override.db" {
		t.Errorf("env sqlite override not applied: %s", cfg.Database.SQLitePath)
	}

	table := cfg.WeightTable()
	if table.Weight(model.SourceSwingHigh) != 4.0 {
		t.Errorf("configured weight not mapped, got %g", table.Weight(model.SourceSwingHigh))
	}
	if table.Weight(model.SourceType("unknown")) != 1.0 {
		t.Errorf("unknown source should default to 1.0")
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"even fractal length", func(c *Config) { c.Detection.FractalLength = 4 }},
		{"tiny fractal length", func(c *Config) { c.Detection.FractalLength = 1 }},
		{"negative significance", func(c *Config) { c.Detection.MinSignificanceATR = -1 }},
		{"zero atr period", func(c *Config) { c.Detection.ATRPeriod = -14 }},
		{"negative cluster distance", func(c *Config) { c.Clustering.ClusterDistanceATR = -0.5 }},
		{"negative min score", func(c *Config) { c.Clustering.MinConfluenceScore = -1 }},
		{"zero weight", func(c *Config) { c.Weights = map[string]float64{"hvn-peak": 0} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWeightTable_NilWhenUnset(t *testing.T) {
	cfg := &Config{}
	if cfg.WeightTable() != nil {
		t.Error("expected nil table so defaults apply downstream")
	}
}
