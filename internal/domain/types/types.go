// Package types contains common read shapes used across the application
package types

import "time"

// JobStatus enumerates the lifecycle states of a formation job.
type JobStatus string

// Job lifecycle states.
const (
	StatusQueued     JobStatus = "queued"
	StatusRunning    JobStatus = "running"
	StatusCompleted  JobStatus = "completed"
	StatusInfeasible JobStatus = "infeasible"
	StatusInvalid    JobStatus = "invalid"
)

// Terminal reports whether the job has reached a final state.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusInfeasible, StatusInvalid:
		return true
	case StatusQueued, StatusRunning:
		return false
	default:
		return false
	}
}

// Team is the read shape of one formed team.
type Team struct {
	Index    int      `json:"index"`
	Members  []string `json:"members"`
	LeaderID string   `json:"leader_id"`
}

// TeamSummary is the read shape of per-team aggregates.
type TeamSummary struct {
	Index          int                `json:"index"`
	Size           int                `json:"size"`
	DimensionMeans map[string]float64 `json:"dimension_means"`
	AvgComposite   float64            `json:"avg_composite"`
	CoveredRoles   map[string]int     `json:"covered_roles,omitempty"`
	LeaderAptitude float64            `json:"leader_aptitude"`
}

// FormationView is the read shape of a completed formation result.
type FormationView struct {
	Teams       []Team        `json:"teams"`
	Summaries   []TeamSummary `json:"summaries"`
	NumTeams    int           `json:"num_teams"`
	Cost        float64       `json:"cost"`
	InitialCost float64       `json:"initial_cost"`
	Iterations  int           `json:"iterations"`
	Accepted    int           `json:"accepted"`
	Seed        int64         `json:"seed"`
	DurationMS  float64       `json:"duration_ms"`
}

// JobView is the read shape of one formation job as served by the API.
type JobView struct {
	ID           string         `json:"id"`
	Status       JobStatus      `json:"status"`
	Competition  string         `json:"competition"`
	Kind         string         `json:"kind,omitempty"`
	TeamSize     int            `json:"team_size"`
	Participants int            `json:"participants"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	Error        string         `json:"error,omitempty"`
	Result       *FormationView `json:"result,omitempty"`
}
