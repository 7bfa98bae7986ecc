package model

import "time"

// SwingKind discriminates swing highs from swing lows.
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// SwingPoint is a confirmed local extreme in a bar series.
// Sequences of SwingPoints produced by the detector strictly alternate
// in Kind, and adjacent points are at least the minimum significant
// move apart.
type SwingPoint struct {
	Index int // position in the bar series the point was detected on
	Time  time.Time
	Kind  SwingKind
	Price float64
	ATR   float64 // volatility at the point, NaN if unavailable
}
