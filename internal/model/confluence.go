package model

import "time"

// SourceType identifies which producer a confluence input came from.
type SourceType string

const (
	SourceSwingHigh       SourceType = "swing-high"
	SourceSwingLow        SourceType = "swing-low"
	SourceVolumePeak      SourceType = "hvn-peak"
	SourcePivotLevel      SourceType = "cam-pivot"
	SourceWeeklyLevel     SourceType = "weekly"
	SourceDailyLevel      SourceType = "daily-level"
	SourceVolatilityBand  SourceType = "atr"
	SourceMarketStructure SourceType = "market-structure"
)

// ConfluenceInput is one normalized price level from any source.
type ConfluenceInput struct {
	Price   float64
	Source  SourceType
	Name    string
	Weight  float64
	Recency time.Time // zero when the source carries no timestamp
}

// WeightTable maps source types to confluence weights.
type WeightTable map[SourceType]float64

// Weight returns the configured weight for a source type, defaulting
// to 1.0 for unknown types.
func (t WeightTable) Weight(s SourceType) float64 {
	if w, ok := t[s]; ok {
		return w
	}
	return 1.0
}

// DefaultWeights returns the standard weight table.
func DefaultWeights() WeightTable {
	return WeightTable{
		SourceSwingHigh:       2.5,
		SourceSwingLow:        2.5,
		SourceVolumePeak:      3.0,
		SourcePivotLevel:      2.0,
		SourceWeeklyLevel:     2.0,
		SourceDailyLevel:      1.0,
		SourceVolatilityBand:  1.0,
		SourceMarketStructure: 0.8,
	}
}
