package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ZoneScout/internal/cache"
	"ZoneScout/internal/config"
	"ZoneScout/internal/marketdata"
	"ZoneScout/internal/recorder"
	"ZoneScout/internal/scanner"
	"ZoneScout/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] ZoneScout starting...")

	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher marketdata.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = marketdata.NewHTTPFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		log.Println("[WARN] no data_source.base_url configured, using mock data")
		fetcher = &marketdata.MockFetcher{Price: 100}
	}

	// Optional Redis bar cache
	if cfg.Redis.Addr != "" {
		bc, err := cache.NewBarCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.RedisTTL())
		if err != nil {
			log.Printf("[WARN] redis unavailable, fetching without cache: %v", err)
		} else {
			defer bc.Close()
			fetcher = cache.NewCachingFetcher(fetcher, bc)
		}
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init scanner
	sc, err := scanner.New(fetcher, scanner.Options{
		FractalLength:      cfg.Detection.FractalLength,
		MinSignificanceATR: cfg.Detection.MinSignificanceATR,
		ATRPeriod:          cfg.Detection.ATRPeriod,
		LookbackDays:       cfg.Detection.LookbackDays,
		ClusterDistanceATR: cfg.Clustering.ClusterDistanceATR,
		MaxZoneWidthATR:    cfg.Clustering.MaxZoneWidthATR,
		MinConfluenceScore: cfg.Clustering.MinConfluenceScore,
		ScanRangeATR:       cfg.Clustering.ScanRangeATR,
		RefineZones:        cfg.Clustering.RefineZones,
		Weights:            cfg.WeightTable(),
	})
	if err != nil {
		log.Fatalf("[FATAL] init scanner: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	switch {
	case cfg.Database.PostgresDSN != "":
		pr, err := recorder.NewPostgresRecorder(cfg.Database.PostgresDSN)
		if err != nil {
			log.Printf("[WARN] init postgres recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = pr
			defer pr.Close()
		}
	case cfg.Database.SQLitePath != "":
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	default:
		rec = recorder.NewNoopRecorder()
	}

	// Init scheduler
	sched := scheduler.NewScheduler(sc, rec, cfg.Symbols, scanner.ManualLevels{})
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, scanning now")
		go sched.RunNow()
	}

	log.Println("[INFO] ZoneScout is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	log.Println("[INFO] ZoneScout stopped")
}
