package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MarketMetrics holds the volatility context computed at scan time.
// ScanLow/ScanHigh bound the price region considered for confluence.
type MarketMetrics struct {
	CurrentPrice float64
	ATRDaily     float64
	ATRM15       float64
	ScanLow      float64
	ScanHigh     float64
}
