package confluence

import (
	"sort"
	"time"

	"ZoneScout/internal/model"
)

// Recency brackets for the score boost: constituents seen within the
// last 5 days boost the zone by 1.2x, within 10 days by 1.1x. Only the
// single most recent constituent's bracket applies.
const (
	recencyNearDays = 5
	recencyFarDays  = 10
)

// Scorer assigns confluence scores and levels to zones, then orders
// them nearest-to-price first. Scoring is deterministic and stateless:
// re-scoring a zone from its constituents yields the same result.
type Scorer struct {
	now time.Time
}

// NewScorer builds a scorer with the given reference time for recency
// boosts; a zero time means time.Now() at each scoring pass.
func NewScorer(now time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score mutates zones in place, attaching Score and Level, and sorts
// them ascending by distance from the current price. Adjustments apply
// in a fixed order: diversity bonus, width penalty, compression,
// recency boost.
func (s *Scorer) Score(zones []model.Zone, atrUnit float64) {
	for i := range zones {
		s.scoreZone(&zones[i], atrUnit)
	}
	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].DistanceFromPrice < zones[j].DistanceFromPrice
	})
}

func (s *Scorer) scoreZone(z *model.Zone, atrUnit float64) {
	score := z.TotalWeight()

	// Diversity bonus for multiple distinct source types.
	if unique := z.UniqueSources(); unique > 1 {
		score *= 1 + 0.1*float64(unique-1)
	}

	// Penalty for clusters that were really a wide price range before
	// the width cap.
	if atrUnit > 0 && z.PreCapWidth > 2*atrUnit {
		widthRatio := z.PreCapWidth / (2 * atrUnit)
		score /= 1 + (widthRatio-1)*0.5
	}

	// Compress extreme outlier scores.
	if score > 50 {
		score = 50 + (score-50)*0.1
	}

	score *= s.recencyBoost(z)

	z.Score = score
	z.Level = Classify(score)
}

// recencyBoost returns the multiplier for the single most recent timed
// constituent; boosts from multiple constituents do not stack.
func (s *Scorer) recencyBoost(z *model.Zone) float64 {
	var mostRecent time.Time
	for _, in := range z.Inputs {
		if in.Recency.After(mostRecent) {
			mostRecent = in.Recency
		}
	}
	if mostRecent.IsZero() {
		return 1.0
	}
	now := s.now
	if now.IsZero() {
		now = time.Now()
	}
	age := now.Sub(mostRecent)
	switch {
	case age <= recencyNearDays*24*time.Hour:
		return 1.2
	case age <= recencyFarDays*24*time.Hour:
		return 1.1
	default:
		return 1.0
	}
}

// Classify maps a confluence score to its discrete level.
func Classify(score float64) model.ConfluenceLevel {
	switch {
	case score >= 10:
		return model.LevelL5
	case score >= 7:
		return model.LevelL4
	case score >= 5:
		return model.LevelL3
	case score >= 3:
		return model.LevelL2
	default:
		return model.LevelL1
	}
}
