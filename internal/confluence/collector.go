package confluence

import (
	"fmt"
	"sort"
	"time"

	"ZoneScout/internal/model"
)

// Collector normalizes price levels from heterogeneous sources into a
// single weighted, price-ordered list of confluence inputs.
type Collector struct {
	weights model.WeightTable
	inputs  []model.ConfluenceInput
}

// NewCollector builds a collector over the given weight table (nil
// selects the default table). Non-positive weights are rejected.
func NewCollector(weights model.WeightTable) (*Collector, error) {
	if weights == nil {
		weights = model.DefaultWeights()
	}
	for st, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("weight for source %q must be positive, got %g", st, w)
		}
	}
	return &Collector{weights: weights}, nil
}

// AddSwings adds detected swing points, tagging highs and lows with
// their respective source types and the swing time as recency.
func (c *Collector) AddSwings(points []model.SwingPoint) {
	for _, p := range points {
		source := model.SourceSwingHigh
		if p.Kind == model.SwingLow {
			source = model.SourceSwingLow
		}
		c.add(model.ConfluenceInput{
			Price:   p.Price,
			Source:  source,
			Name:    fmt.Sprintf("SW_%s_%d", p.Kind, p.Index),
			Recency: p.Time,
		})
	}
}

// AddLevel adds a single untimed price level.
func (c *Collector) AddLevel(source model.SourceType, name string, price float64) {
	c.add(model.ConfluenceInput{Price: price, Source: source, Name: name})
}

// AddLevels adds a flat list of untimed price levels, naming them
// prefix1, prefix2, ...
func (c *Collector) AddLevels(source model.SourceType, prefix string, prices []float64) {
	for i, p := range prices {
		c.AddLevel(source, fmt.Sprintf("%s%d", prefix, i+1), p)
	}
}

// AddTimedLevel adds a price level carrying a recency timestamp.
func (c *Collector) AddTimedLevel(source model.SourceType, name string, price float64, recency time.Time) {
	c.add(model.ConfluenceInput{Price: price, Source: source, Name: name, Recency: recency})
}

func (c *Collector) add(in model.ConfluenceInput) {
	in.Weight = c.weights.Weight(in.Source)
	c.inputs = append(c.inputs, in)
}

// Len returns the number of collected inputs.
func (c *Collector) Len() int { return len(c.inputs) }

// Inputs returns a copy of the collected inputs ordered by price.
func (c *Collector) Inputs() []model.ConfluenceInput {
	out := make([]model.ConfluenceInput, len(c.inputs))
	copy(out, c.inputs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}
