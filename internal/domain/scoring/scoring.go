// Package scoring computes composite scores from raw participant metrics.
package scoring

import (
	"math"

	"github.com/okian/teamforge/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultExponent = 3
	// midpointValue is assigned when a dimension is flat across the roster
	// (max == min) and min-max normalization is undefined.
	midpointValue = 0.5
)

// DefaultWeights returns the default per-dimension weights. They sum to 1.0.
func DefaultWeights() model.ScoreVector {
	return model.ScoreVector{
		model.Hackathon:      0.25,
		model.Projects:       0.20,
		model.Contributions:  0.15,
		model.Experience:     0.10,
		model.ProblemSolving: 0.15,
		model.Innovation:     0.15,
	}
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWeights sets per-dimension weights. Weights should sum to 1.0 so
// composite scores stay in the 0-1 range; negative entries are ignored.
func WithWeights(weights model.ScoreVector) Option {
	return func(c *Calculator) {
		for d, w := range weights {
			if w >= 0 {
				c.weights[d] = w
			}
		}
	}
}

// WithExponent sets the normalization exponent. Values above 1 accentuate
// strong performers; 1 keeps the weighted sum linear.
func WithExponent(exp float64) Option {
	return func(c *Calculator) {
		if exp > 0 {
			c.exponent = exp
		}
	}
}

// Calculator computes composite scores over a fixed roster. Normalization
// bounds are derived from the roster once at construction, so scoring is a
// pure function of the profile afterwards.
type Calculator struct {
	weights  model.ScoreVector
	exponent float64
	min      model.ScoreVector
	max      model.ScoreVector
}

// NewCalculator builds a Calculator for the given roster with configuration
// options. The roster may be empty; Composite then returns 0 for any input.
func NewCalculator(roster []model.Participant, opts ...Option) *Calculator {
	c := &Calculator{
		weights:  DefaultWeights(),
		exponent: defaultExponent,
	}

	for _, opt := range opts {
		opt(c)
	}

	for d := 0; d < model.DimensionCount; d++ {
		c.min[d] = math.Inf(1)
		c.max[d] = math.Inf(-1)
	}
	for i := range roster {
		for d := 0; d < model.DimensionCount; d++ {
			v := roster[i].Scores[d]
			if v < c.min[d] {
				c.min[d] = v
			}
			if v > c.max[d] {
				c.max[d] = v
			}
		}
	}

	return c
}

// Normalize maps a raw value in the given dimension to [0,1] using the
// roster's min-max bounds. A flat dimension normalizes to the midpoint.
func (c *Calculator) Normalize(d model.Dimension, value float64) float64 {
	lo, hi := c.min[d], c.max[d]
	if math.IsInf(lo, 1) || hi == lo {
		return midpointValue
	}
	return (value - lo) / (hi - lo)
}

// Composite returns the weighted composite score for one participant:
// the sum over dimensions of weight * normalized^exponent.
func (c *Calculator) Composite(p *model.Participant) float64 {
	score := 0.0
	for d := 0; d < model.DimensionCount; d++ {
		norm := c.Normalize(model.Dimension(d), p.Scores[d])
		score += c.weights[d] * math.Pow(norm, c.exponent)
	}
	return score
}

// All computes composite scores for every participant in roster order.
func (c *Calculator) All(roster []model.Participant) []float64 {
	scores := make([]float64, len(roster))
	for i := range roster {
		scores[i] = c.Composite(&roster[i])
	}
	return scores
}
