package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"ZoneScout/internal/marketdata"
	"ZoneScout/internal/model"
)

// BarCache stores fetched bar series in Redis with a TTL so repeated
// scans of the same symbol do not hammer the data API.
type BarCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewBarCache connects to Redis. Ping failures are returned so the
// caller can fall back to uncached fetching.
func NewBarCache(addr, password string, db int, ttl time.Duration) (*BarCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &BarCache{client: client, prefix: "zonescout:", ttl: ttl}, nil
}

func (c *BarCache) key(symbol, timeframe string, start, end time.Time) string {
	return fmt.Sprintf("%sbars:%s:%s:%d:%d", c.prefix, symbol, timeframe, start.Unix(), end.Unix())
}

// Get returns the cached bars for the request, or ok=false on a miss.
func (c *BarCache) Get(symbol, timeframe string, start, end time.Time) ([]model.OHLCV, bool) {
	ctx := context.Background()
	data, err := c.client.Get(ctx, c.key(symbol, timeframe, start, end)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[WARN] redis get failed: %v", err)
		return nil, false
	}
	var bars []model.OHLCV
	if err := json.Unmarshal([]byte(data), &bars); err != nil {
		log.Printf("[WARN] corrupt cache entry discarded: %v", err)
		return nil, false
	}
	return bars, true
}

// Put stores the bars under the request key. Failures are logged, not
// returned; caching is best effort.
func (c *BarCache) Put(symbol, timeframe string, start, end time.Time, bars []model.OHLCV) {
	data, err := json.Marshal(bars)
	if err != nil {
		log.Printf("[WARN] marshal bars for cache: %v", err)
		return
	}
	ctx := context.Background()
	if err := c.client.Set(ctx, c.key(symbol, timeframe, start, end), data, c.ttl).Err(); err != nil {
		log.Printf("[WARN] redis set failed: %v", err)
	}
}

// Close releases the Redis connection.
func (c *BarCache) Close() error {
	return c.client.Close()
}

// CachingFetcher wraps a Fetcher with read-through bar caching. Current
// price lookups always pass through.
type CachingFetcher struct {
	inner marketdata.Fetcher
	cache *BarCache
}

func NewCachingFetcher(inner marketdata.Fetcher, cache *BarCache) *CachingFetcher {
	return &CachingFetcher{inner: inner, cache: cache}
}

func (f *CachingFetcher) Name() string { return f.inner.Name() + "+cache" }

func (f *CachingFetcher) FetchBars(symbol, timeframe string, start, end time.Time) ([]model.OHLCV, error) {
	if bars, ok := f.cache.Get(symbol, timeframe, start, end); ok {
		return bars, nil
	}
	bars, err := f.inner.FetchBars(symbol, timeframe, start, end)
	if err != nil {
		return nil, err
	}
	f.cache.Put(symbol, timeframe, start, end, bars)
	return bars, nil
}

func (f *CachingFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	return f.inner.FetchCurrentPrice(symbol)
}
