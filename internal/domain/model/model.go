// Package model contains domain models passed between layers.
package model

import "time"

// Dimension identifies one of the fixed score dimensions on a participant
// profile. Adding a dimension means extending this enum and DimensionNames;
// the optimizer iterates the enum and never needs to change.
type Dimension int

// Score dimensions, in profile order.
const (
	Hackathon Dimension = iota
	Projects
	Contributions
	Experience
	ProblemSolving
	Innovation
)

// DimensionCount is the number of score dimensions in a ScoreVector.
const DimensionCount = int(Innovation) + 1

// dimensionNames maps dimensions to their wire/profile names.
var dimensionNames = [DimensionCount]string{
	"hackathon_score",
	"projects_completed",
	"github_contributions",
	"experience_level",
	"problem_solving",
	"innovation_index",
}

// String returns the profile name of the dimension.
func (d Dimension) String() string {
	if d < 0 || int(d) >= DimensionCount {
		return "unknown"
	}
	return dimensionNames[d]
}

// Dimensions returns all score dimensions in profile order.
func Dimensions() [DimensionCount]Dimension {
	var ds [DimensionCount]Dimension
	for i := range ds {
		ds[i] = Dimension(i)
	}
	return ds
}

// ScoreVector holds one value per dimension. Values are self-reported and
// nominally bounded to a 0-10 range; the composite calculator normalizes
// per roster so differing ranges do not skew results.
type ScoreVector [DimensionCount]float64

// At returns the value for the given dimension.
func (v ScoreVector) At(d Dimension) float64 { return v[d] }

// Participant is an immutable profile record. The optimizer only reads it;
// ownership stays with the caller.
type Participant struct {
	ID         string      // unique, opaque identifier
	Name       string      // display only
	Scores     ScoreVector // per-dimension scores
	Roles      []string    // role tags the participant can fill; non-empty
	Leadership float64     // willingness/aptitude signal, used only by leader selection
}

// HasRole reports whether the participant carries the given role tag.
func (p *Participant) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CompetitionSpec describes the team shape for one competition.
type CompetitionSpec struct {
	Name          string         // competition name, display only
	Kind          string         // e.g. "AI Hackathon", display only
	TeamSize      int            // target members per team, positive
	RequiredRoles map[string]int // role tag -> minimum count per team; may be empty
}

// Team is one finalized team in a formation result.
// Invariant: LeaderID is one of Members.
type Team struct {
	Index    int      // team number, zero-based
	Members  []string // participant IDs, sorted ascending
	LeaderID string   // selected leader, member of the team
}

// TuningOverrides carries optional per-job knobs submitted alongside a
// formation request. Nil fields fall back to the service defaults.
type TuningOverrides struct {
	BalanceWeight    *float64
	RoleGapWeight    *float64
	LeadershipWeight *float64
	SizeDriftWeight  *float64
	LeaderThreshold  *float64
	InitialTemp      *float64
	CoolingFactor    *float64
	StopTemp         *float64
	MaxIterations    *int
}

// FormationJob is the unit of work flowing through the queue: one roster,
// one competition spec, and the knobs the search should run with.
type FormationJob struct {
	ID          string
	Spec        CompetitionSpec
	Roster      []Participant
	Tuning      TuningOverrides
	Seed        int64
	SubmittedAt time.Time
}
