package confluence

import (
	"fmt"
	"sort"

	"ZoneScout/internal/model"
)

// Clusterer groups price-sorted confluence inputs into zones using a
// volatility-scaled clustering distance.
type Clusterer struct {
	clusterDistanceATR float64
	maxZoneWidthATR    float64
	minConfluenceScore float64
}

// NewClusterer validates the clustering configuration eagerly.
func NewClusterer(clusterDistanceATR, maxZoneWidthATR, minConfluenceScore float64) (*Clusterer, error) {
	if clusterDistanceATR <= 0 {
		return nil, fmt.Errorf("cluster distance multiple must be positive, got %g", clusterDistanceATR)
	}
	if maxZoneWidthATR <= 0 {
		return nil, fmt.Errorf("max zone width multiple must be positive, got %g", maxZoneWidthATR)
	}
	if minConfluenceScore < 0 {
		return nil, fmt.Errorf("min confluence score must be non-negative, got %g", minConfluenceScore)
	}
	return &Clusterer{
		clusterDistanceATR: clusterDistanceATR,
		maxZoneWidthATR:    maxZoneWidthATR,
		minConfluenceScore: minConfluenceScore,
	}, nil
}

// Cluster partitions inputs into zones. Clustering distance is chained:
// an input joins the current cluster when it is within the distance of
// the last input added, not of the cluster start. Clusters whose total
// weight is below the minimum confluence score are discarded.
func (c *Clusterer) Cluster(inputs []model.ConfluenceInput, currentPrice, atrUnit float64) []model.Zone {
	if len(inputs) == 0 {
		return nil
	}

	sorted := make([]model.ConfluenceInput, len(inputs))
	copy(sorted, inputs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	clusterDistance := atrUnit * c.clusterDistanceATR
	var clusters [][]model.ConfluenceInput
	current := []model.ConfluenceInput{sorted[0]}
	for _, in := range sorted[1:] {
		if in.Price-current[len(current)-1].Price <= clusterDistance {
			current = append(current, in)
		} else {
			clusters = append(clusters, current)
			current = []model.ConfluenceInput{in}
		}
	}
	clusters = append(clusters, current)

	var zones []model.Zone
	zoneID := 1
	for _, cluster := range clusters {
		var totalWeight float64
		for _, in := range cluster {
			totalWeight += in.Weight
		}
		if totalWeight < c.minConfluenceScore {
			continue
		}
		zones = append(zones, c.zoneFromCluster(cluster, zoneID, currentPrice, atrUnit, totalWeight))
		zoneID++
	}
	return zones
}

func (c *Clusterer) zoneFromCluster(cluster []model.ConfluenceInput, id int, currentPrice, atrUnit, totalWeight float64) model.Zone {
	minPrice := cluster[0].Price
	maxPrice := cluster[len(cluster)-1].Price

	var weightedSum float64
	for _, in := range cluster {
		weightedSum += in.Price * in.Weight
	}
	center := weightedSum / totalWeight

	initialLow := minPrice - atrUnit*0.25
	initialHigh := maxPrice + atrUnit*0.25
	initialWidth := initialHigh - initialLow

	low, high := initialLow, initialHigh
	capped := false
	if maxWidth := atrUnit * c.maxZoneWidthATR; initialWidth > maxWidth {
		low = center - maxWidth/2
		high = center + maxWidth/2
		capped = true
	}

	owned := make([]model.ConfluenceInput, len(cluster))
	copy(owned, cluster)

	zoneType := model.ZoneSupport
	if center > currentPrice {
		zoneType = model.ZoneResistance
	}

	return model.Zone{
		ID:                id,
		Low:               low,
		High:              high,
		Center:            center,
		Width:             high - low,
		Type:              zoneType,
		Inputs:            owned,
		DistanceFromPrice: abs(center - currentPrice),
		PreCapWidth:       initialWidth,
		WidthCapped:       capped,
	}
}

// RefineToUnit recenters every zone on its single highest
// weight-concentration price with a width of exactly one atrUnit.
// Applied after scoring when a caller wants maximally precise entries;
// the transform is idempotent.
func (c *Clusterer) RefineToUnit(zones []model.Zone, atrUnit float64) []model.Zone {
	refined := make([]model.Zone, len(zones))
	for i, z := range zones {
		priceWeights := make(map[float64]float64, len(z.Inputs))
		for _, in := range z.Inputs {
			priceWeights[in.Price] += in.Weight
		}
		peak := z.Center
		var best float64
		for price, w := range priceWeights {
			if w > best || (w == best && price < peak) {
				peak = price
				best = w
			}
		}
		z.Low = peak - atrUnit*0.5
		z.High = peak + atrUnit*0.5
		z.Center = peak
		z.Width = atrUnit
		refined[i] = z
	}
	return refined
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
