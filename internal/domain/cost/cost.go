// Package cost defines the objective function minimized by the partition search.
package cost

import (
	"math"

	"github.com/okian/teamforge/internal/domain/model"
)

// Default term weights. RoleGap is deliberately steep: role coverage is a
// hard constraint expressed as a penalty so the move space stays connected.
const (
	defaultBalanceWeight    = 1.0
	defaultRoleGapWeight    = 10.0
	defaultLeadershipWeight = 4.0
	defaultSizeDriftWeight  = 8.0
)

// Default leader policy constants.
const (
	defaultSignalWeight     = 0.7
	defaultExperienceWeight = 0.3
	defaultLeaderThreshold  = 5.0
)

// Weights configures the relative strength of each cost term.
// All weights are non-negative; a zero weight disables the term.
type Weights struct {
	Balance    float64 // variance of team score means across teams
	RoleGap    float64 // unmet required-role counts
	Leadership float64 // teams without a plausible leader candidate
	SizeDrift  float64 // team sizes outside the allowed remainder slack
}

// DefaultWeights returns the documented default term weights.
func DefaultWeights() Weights {
	return Weights{
		Balance:    defaultBalanceWeight,
		RoleGap:    defaultRoleGapWeight,
		Leadership: defaultLeadershipWeight,
		SizeDrift:  defaultSizeDriftWeight,
	}
}

// LeaderPolicy defines what counts as a plausible leader. The same aptitude
// formula drives both the leadership cost term and final leader selection,
// so the search optimizes for the leaders that will actually be picked.
type LeaderPolicy struct {
	SignalWeight     float64 // weight of the self-reported leadership signal
	ExperienceWeight float64 // weight of the experience-level score
	Threshold        float64 // minimum aptitude for a member to count as a candidate
}

// DefaultLeaderPolicy returns the documented default leader policy.
func DefaultLeaderPolicy() LeaderPolicy {
	return LeaderPolicy{
		SignalWeight:     defaultSignalWeight,
		ExperienceWeight: defaultExperienceWeight,
		Threshold:        defaultLeaderThreshold,
	}
}

// Aptitude returns the leadership aptitude of a participant under the policy.
func (p LeaderPolicy) Aptitude(participant *model.Participant) float64 {
	return p.SignalWeight*participant.Leadership +
		p.ExperienceWeight*participant.Scores[model.Experience]
}

// roleReq is a precomputed required-role row: which participants hold it.
type roleReq struct {
	count   int
	holders []bool
}

// Evaluator computes partition costs for one fixed roster and spec.
// Construction precomputes per-participant rows so Cost is a tight loop
// over the assignment; the evaluator itself is read-only after New and
// safe for use by a single search at a time.
type Evaluator struct {
	numTeams   int
	targetSize int
	baseSize   int
	weights    Weights

	scores   []model.ScoreVector
	roles    []roleReq
	leaderOK []bool
}

// NewEvaluator builds an evaluator for the given roster partitioned into
// numTeams teams of target size spec.TeamSize.
func NewEvaluator(roster []model.Participant, spec model.CompetitionSpec, numTeams int, w Weights, policy LeaderPolicy) *Evaluator {
	e := &Evaluator{
		numTeams:   numTeams,
		targetSize: spec.TeamSize,
		baseSize:   len(roster) / numTeams,
		weights:    w,
		scores:     make([]model.ScoreVector, len(roster)),
		leaderOK:   make([]bool, len(roster)),
	}

	for i := range roster {
		e.scores[i] = roster[i].Scores
		e.leaderOK[i] = policy.Aptitude(&roster[i]) > policy.Threshold
	}

	for role, count := range spec.RequiredRoles {
		if count <= 0 {
			continue
		}
		req := roleReq{count: count, holders: make([]bool, len(roster))}
		for i := range roster {
			req.holders[i] = roster[i].HasRole(role)
		}
		e.roles = append(e.roles, req)
	}

	return e
}

// Cost maps an assignment (participant index -> team index) to a scalar.
// Lower is better; zero is the theoretical ideal. Pure and deterministic:
// the same assignment always yields the same cost.
func (e *Evaluator) Cost(assign []int) float64 {
	sizes := make([]int, e.numTeams)
	var sums [model.DimensionCount][]float64
	for d := range sums {
		sums[d] = make([]float64, e.numTeams)
	}
	for i, t := range assign {
		sizes[t]++
		for d := 0; d < model.DimensionCount; d++ {
			sums[d][t] += e.scores[i][d]
		}
	}

	total := e.balanceTerm(sizes, &sums)*e.weights.Balance +
		float64(e.roleDeficit(assign))*e.weights.RoleGap +
		float64(e.leaderlessTeams(assign))*e.weights.Leadership +
		float64(e.sizeDrift(sizes))*e.weights.SizeDrift

	return total
}

// balanceTerm sums, over dimensions, the population variance of team means.
func (e *Evaluator) balanceTerm(sizes []int, sums *[model.DimensionCount][]float64) float64 {
	n := float64(e.numTeams)
	total := 0.0
	for d := 0; d < model.DimensionCount; d++ {
		mean := 0.0
		means := make([]float64, e.numTeams)
		for t := 0; t < e.numTeams; t++ {
			if sizes[t] > 0 {
				means[t] = sums[d][t] / float64(sizes[t])
			}
			mean += means[t]
		}
		mean /= n
		variance := 0.0
		for t := 0; t < e.numTeams; t++ {
			diff := means[t] - mean
			variance += diff * diff
		}
		total += variance / n
	}
	return total
}

// roleDeficit sums, over teams and required roles, the shortfall between
// the required count and the members holding the role.
func (e *Evaluator) roleDeficit(assign []int) int {
	deficit := 0
	for _, req := range e.roles {
		counts := make([]int, e.numTeams)
		for i, t := range assign {
			if req.holders[i] {
				counts[t]++
			}
		}
		for t := 0; t < e.numTeams; t++ {
			if gap := req.count - counts[t]; gap > 0 {
				deficit += gap
			}
		}
	}
	return deficit
}

// leaderlessTeams counts teams with no member above the aptitude threshold.
func (e *Evaluator) leaderlessTeams(assign []int) int {
	has := make([]bool, e.numTeams)
	for i, t := range assign {
		if e.leaderOK[i] {
			has[t] = true
		}
	}
	missing := 0
	for t := 0; t < e.numTeams; t++ {
		if !has[t] {
			missing++
		}
	}
	return missing
}

// sizeDrift penalizes sizes outside the remainder slack. With balanced
// front-loaded sizes the slack absorbs the off-by-one teams, so every
// partition reachable by the search scores zero here; structurally wrong
// sizes handed to Cost directly score positive.
func (e *Evaluator) sizeDrift(sizes []int) int {
	slack := e.targetSize - e.baseSize
	if slack < 0 {
		slack = 0
	}
	drift := 0
	for _, size := range sizes {
		dev := int(math.Abs(float64(size - e.targetSize)))
		if dev > slack {
			drift += dev - slack
		}
	}
	return drift
}
