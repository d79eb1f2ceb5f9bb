// Package formation orchestrates team formation: feasibility checks, the
// annealing search, leader selection, and result materialization.
//
// Form is a pure computation with no I/O and no shared state; concurrent
// calls are independent. Either a complete team set covering every
// participant exactly once is returned, or a typed error - never a partial
// result.
package formation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/teamforge/internal/domain/anneal"
	"github.com/okian/teamforge/internal/domain/cost"
	"github.com/okian/teamforge/internal/domain/leader"
	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/scoring"
)

// Default formation configuration constants.
const (
	defaultSeed          = 42
	defaultScoreExponent = 3
	minRosterSize        = 2
)

// TeamSummary aggregates one finalized team for reporting.
type TeamSummary struct {
	Index          int               `json:"index"`
	Size           int               `json:"size"`
	DimensionMeans model.ScoreVector `json:"dimension_means"`
	AvgComposite   float64           `json:"avg_composite"`
	CoveredRoles   map[string]int    `json:"covered_roles,omitempty"`
	LeaderAptitude float64           `json:"leader_aptitude"`
}

// Result is the complete outcome of one formation run.
type Result struct {
	Teams       []model.Team  `json:"teams"`
	Summaries   []TeamSummary `json:"summaries"`
	NumTeams    int           `json:"num_teams"`
	Cost        float64       `json:"cost"`
	InitialCost float64       `json:"initial_cost"`
	Iterations  int           `json:"iterations"`
	Accepted    int           `json:"accepted"`
	Seed        int64         `json:"seed"`
	Duration    time.Duration `json:"duration_ns"`
}

// former carries the resolved configuration of one Form call.
type former struct {
	weights       cost.Weights
	policy        cost.LeaderPolicy
	schedule      anneal.Schedule
	seed          int64
	scoreExponent float64
}

// Form partitions roster into teams of spec.TeamSize, balanced across score
// dimensions and covering the required roles, and assigns a leader to each
// team.
//
// The number of teams is ceil(N / TeamSize), fixed for the whole run. Team
// sizes follow the balanced front-loaded policy: with base = N/numTeams
// (floor) and extras = N mod numTeams, the first extras teams hold base+1
// members and the rest hold base, so sizes never differ by more than one.
func Form(ctx context.Context, roster []model.Participant, spec model.CompetitionSpec, opts ...Option) (*Result, error) {
	f := &former{
		weights:       cost.DefaultWeights(),
		policy:        cost.DefaultLeaderPolicy(),
		schedule:      anneal.DefaultSchedule(),
		seed:          defaultSeed,
		scoreExponent: defaultScoreExponent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := validate(roster, spec); err != nil {
		return nil, err
	}

	numTeams := (len(roster) + spec.TeamSize - 1) / spec.TeamSize
	if err := checkFeasibility(roster, spec, numTeams); err != nil {
		return nil, err
	}

	evaluator := cost.NewEvaluator(roster, spec, numTeams, f.weights, f.policy)
	search := anneal.Search(ctx, len(roster), numTeams, evaluator, f.schedule, f.seed)

	res := &Result{
		Teams:       materialize(roster, search.Assign, numTeams, f.policy),
		NumTeams:    numTeams,
		Cost:        search.Cost,
		InitialCost: search.InitialCost,
		Iterations:  search.Iterations,
		Accepted:    search.Accepted,
		Seed:        f.seed,
		Duration:    search.Duration,
	}
	res.Summaries = summarize(roster, spec, res.Teams, f)
	return res, nil
}

// validate rejects malformed input before any search state is built.
func validate(roster []model.Participant, spec model.CompetitionSpec) error {
	if len(roster) == 0 {
		return fmt.Errorf("%w: empty roster", ErrInvalidInput)
	}
	if spec.TeamSize < 1 {
		return fmt.Errorf("%w: team size must be positive, got %d", ErrInvalidInput, spec.TeamSize)
	}
	seen := make(map[string]struct{}, len(roster))
	for i := range roster {
		if roster[i].ID == "" {
			return fmt.Errorf("%w: participant %d has empty id", ErrInvalidInput, i)
		}
		if _, dup := seen[roster[i].ID]; dup {
			return fmt.Errorf("%w: duplicate participant id %q", ErrInvalidInput, roster[i].ID)
		}
		seen[roster[i].ID] = struct{}{}
	}
	for role, count := range spec.RequiredRoles {
		if count < 0 {
			return fmt.Errorf("%w: required role %q has negative count %d", ErrInvalidInput, role, count)
		}
	}
	return nil
}

// checkFeasibility rejects rosters that no partition can satisfy. Coverage
// must be possible everywhere: each required role needs at least
// count * numTeams holders roster-wide.
func checkFeasibility(roster []model.Participant, spec model.CompetitionSpec, numTeams int) error {
	if len(roster) < minRosterSize {
		return fmt.Errorf("%w: need at least %d participants, have %d", ErrInfeasible, minRosterSize, len(roster))
	}
	for role, count := range spec.RequiredRoles {
		if count == 0 {
			continue
		}
		holders := 0
		for i := range roster {
			if roster[i].HasRole(role) {
				holders++
			}
		}
		if need := count * numTeams; holders < need {
			return fmt.Errorf("%w: insufficient participants with role %q: have %d, need %d across %d teams",
				ErrInfeasible, role, holders, need, numTeams)
		}
	}
	return nil
}

// materialize turns the final assignment into Team records with leaders.
func materialize(roster []model.Participant, assign []int, numTeams int, policy cost.LeaderPolicy) []model.Team {
	byID := make(map[string]*model.Participant, len(roster))
	for i := range roster {
		byID[roster[i].ID] = &roster[i]
	}

	teams := make([]model.Team, numTeams)
	for t := range teams {
		teams[t].Index = t
	}
	for i, t := range assign {
		teams[t].Members = append(teams[t].Members, roster[i].ID)
	}
	// Relocate moves may migrate the remainder between teams during the
	// search. Re-rank so larger teams come first, keeping the documented
	// front-loaded size policy in the output.
	sort.SliceStable(teams, func(a, b int) bool {
		return len(teams[a].Members) > len(teams[b].Members)
	})
	for t := range teams {
		teams[t].Index = t
	}
	for t := range teams {
		sort.Strings(teams[t].Members)
		teams[t].LeaderID = leader.Select(teams[t].Members, byID, policy)
	}
	return teams
}

// summarize computes per-team reporting aggregates from the final teams.
func summarize(roster []model.Participant, spec model.CompetitionSpec, teams []model.Team, f *former) []TeamSummary {
	byID := make(map[string]*model.Participant, len(roster))
	for i := range roster {
		byID[roster[i].ID] = &roster[i]
	}
	calc := scoring.NewCalculator(roster, scoring.WithExponent(f.scoreExponent))

	summaries := make([]TeamSummary, len(teams))
	for t := range teams {
		s := TeamSummary{Index: teams[t].Index, Size: len(teams[t].Members)}
		if len(spec.RequiredRoles) > 0 {
			s.CoveredRoles = make(map[string]int, len(spec.RequiredRoles))
		}
		for _, id := range teams[t].Members {
			p := byID[id]
			for d := 0; d < model.DimensionCount; d++ {
				s.DimensionMeans[d] += p.Scores[d]
			}
			s.AvgComposite += calc.Composite(p)
			for role := range spec.RequiredRoles {
				if p.HasRole(role) {
					s.CoveredRoles[role]++
				}
			}
		}
		if s.Size > 0 {
			for d := 0; d < model.DimensionCount; d++ {
				s.DimensionMeans[d] /= float64(s.Size)
			}
			s.AvgComposite /= float64(s.Size)
		}
		if lead, ok := byID[teams[t].LeaderID]; ok {
			s.LeaderAptitude = f.policy.Aptitude(lead)
		}
		summaries[t] = s
	}
	return summaries
}
