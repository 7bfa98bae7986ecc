package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ZoneScout/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Symbols    []string `yaml:"symbols"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Detection struct {
		FractalLength      int     `yaml:"fractal_length"`
		MinSignificanceATR float64 `yaml:"min_significance_atr"`
		ATRPeriod          int     `yaml:"atr_period"`
		LookbackDays       int     `yaml:"lookback_days"`
	} `yaml:"detection"`
	Clustering struct {
		ClusterDistanceATR float64 `yaml:"cluster_distance_atr"`
		MaxZoneWidthATR    float64 `yaml:"max_zone_width_atr"`
		MinConfluenceScore float64 `yaml:"min_confluence_score"`
		ScanRangeATR       float64 `yaml:"scan_range_atr"`
		RefineZones        bool    `yaml:"refine_zones"`
	} `yaml:"clustering"`
	Weights  map[string]float64 `yaml:"weights"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"redis"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SCAN_SYMBOLS"); v != "" {
		cfg.Symbols = splitList(v)
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"ES"}
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 */30 * * * *"
	}
	if cfg.Detection.FractalLength == 0 {
		cfg.Detection.FractalLength = 5
	}
	if cfg.Detection.MinSignificanceATR == 0 {
		cfg.Detection.MinSignificanceATR = 1.0
	}
	if cfg.Detection.ATRPeriod == 0 {
		cfg.Detection.ATRPeriod = 14
	}
	if cfg.Detection.LookbackDays == 0 {
		cfg.Detection.LookbackDays = 30
	}
	if cfg.Clustering.ClusterDistanceATR == 0 {
		cfg.Clustering.ClusterDistanceATR = 1.5
	}
	if cfg.Clustering.MaxZoneWidthATR == 0 {
		cfg.Clustering.MaxZoneWidthATR = 3.0
	}
	if cfg.Clustering.MinConfluenceScore == 0 {
		cfg.Clustering.MinConfluenceScore = 2.0
	}
	if cfg.Clustering.ScanRangeATR == 0 {
		cfg.Clustering.ScanRangeATR = 2.0
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/zonescout.db"
	}
	if cfg.Redis.TTLMinutes == 0 {
		cfg.Redis.TTLMinutes = 15
	}

	return cfg, nil
}

// Validate checks that all fields are internally consistent.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	if c.Detection.FractalLength < 3 || c.Detection.FractalLength%2 == 0 {
		return fmt.Errorf("detection.fractal_length must be an odd integer >= 3, got %d", c.Detection.FractalLength)
	}
	if c.Detection.MinSignificanceATR <= 0 {
		return fmt.Errorf("detection.min_significance_atr must be positive")
	}
	if c.Detection.ATRPeriod <= 0 {
		return fmt.Errorf("detection.atr_period must be positive")
	}
	if c.Detection.LookbackDays <= 0 {
		return fmt.Errorf("detection.lookback_days must be positive")
	}
	if c.Clustering.ClusterDistanceATR <= 0 {
		return fmt.Errorf("clustering.cluster_distance_atr must be positive")
	}
	if c.Clustering.MaxZoneWidthATR <= 0 {
		return fmt.Errorf("clustering.max_zone_width_atr must be positive")
	}
	if c.Clustering.MinConfluenceScore < 0 {
		return fmt.Errorf("clustering.min_confluence_score must not be negative")
	}
	if c.Clustering.ScanRangeATR <= 0 {
		return fmt.Errorf("clustering.scan_range_atr must be positive")
	}
	for name, w := range c.Weights {
		if w <= 0 {
			return fmt.Errorf("weights.%s must be positive, got %g", name, w)
		}
	}
	return nil
}

// WeightTable converts the configured weight map into the model's
// typed table, or nil when no weights are configured so the defaults
// apply.
func (c *Config) WeightTable() model.WeightTable {
	if len(c.Weights) == 0 {
		return nil
	}
	table := make(model.WeightTable, len(c.Weights))
	for name, w := range c.Weights {
		table[model.SourceType(name)] = w
	}
	return table
}

// RedisTTL returns the configured cache TTL.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLMinutes) * time.Minute
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
