package model

import "fmt"

// ConfluenceLevel is the discrete confluence tier of a zone, L1 (weakest)
// through L5 (strongest).
type ConfluenceLevel int

const (
	LevelL1 ConfluenceLevel = iota + 1
	LevelL2
	LevelL3
	LevelL4
	LevelL5
)

func (l ConfluenceLevel) String() string {
	return fmt.Sprintf("L%d", int(l))
}

// ZoneType marks a zone as support or resistance relative to the
// current price.
type ZoneType string

const (
	ZoneSupport    ZoneType = "support"
	ZoneResistance ZoneType = "resistance"
)

// Zone is a bounded price interval formed by clustering nearby
// confluence inputs. Invariant: Low <= Center <= High and
// Width == High - Low. The clusterer produces zones; the scorer then
// attaches Score and Level in place, after which a zone is not mutated.
type Zone struct {
	ID     int
	Low    float64
	High   float64
	Center float64
	Width  float64
	Type   ZoneType

	// Inputs are owned by the zone (copied, never shared).
	Inputs []ConfluenceInput

	Score float64
	Level ConfluenceLevel

	DistanceFromPrice float64

	// PreCapWidth is the cluster width before the maximum-width
	// constraint; the scorer uses it for the width penalty.
	PreCapWidth float64
	WidthCapped bool
}

// UniqueSources returns the number of distinct source types among the
// zone's constituent inputs.
func (z *Zone) UniqueSources() int {
	seen := make(map[SourceType]struct{}, len(z.Inputs))
	for _, in := range z.Inputs {
		seen[in.Source] = struct{}{}
	}
	return len(seen)
}

// TotalWeight returns the sum of constituent weights.
func (z *Zone) TotalWeight() float64 {
	var sum float64
	for _, in := range z.Inputs {
		sum += in.Weight
	}
	return sum
}
