package formation

import (
	"github.com/okian/teamforge/internal/domain/anneal"
	"github.com/okian/teamforge/internal/domain/cost"
)

// Option applies a configuration option to a formation run.
type Option func(*former)

// WithWeights overrides the cost-term weights.
func WithWeights(w cost.Weights) Option {
	return func(f *former) {
		f.weights = w
	}
}

// WithLeaderPolicy overrides the leader aptitude policy.
func WithLeaderPolicy(p cost.LeaderPolicy) Option {
	return func(f *former) {
		f.policy = p
	}
}

// WithSchedule overrides the annealing cooling schedule.
func WithSchedule(s anneal.Schedule) Option {
	return func(f *former) {
		f.schedule = s
	}
}

// WithSeed sets the random seed for the search. Identical inputs and seed
// reproduce the exact same teams and leaders.
func WithSeed(seed int64) Option {
	return func(f *former) {
		f.seed = seed
	}
}

// WithScoreExponent overrides the composite-score exponent used for the
// per-team summaries.
func WithScoreExponent(exp float64) Option {
	return func(f *former) {
		if exp > 0 {
			f.scoreExponent = exp
		}
	}
}
