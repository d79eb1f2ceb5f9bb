package rostertest

import "time"

// Config holds configuration for the roster test
type Config struct {
	BaseURL         string         // Base URL of the service
	NumParticipants int            // Number of participants to generate
	TeamSize        int            // Target members per team
	RequiredRoles   map[string]int // Role tag -> minimum count per team
	Seed            int64          // Random seed submitted with the job
	Timeout         time.Duration  // HTTP request timeout
	PollInterval    time.Duration  // Delay between job status polls
	PollTimeout     time.Duration  // Give up polling after this long
	OutputFile      string         // Output file for the generated roster
	LogFile         string         // Log file for test output
	Verbose         bool           // Enable verbose logging
}

// Participant mirrors the wire shape of one roster entry
type Participant struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Scores     map[string]float64 `json:"scores"`
	Roles      []string           `json:"roles"`
	Leadership float64            `json:"leadership"`
}

// Competition mirrors the wire shape of the competition spec
type Competition struct {
	Name          string         `json:"name"`
	Kind          string         `json:"kind"`
	TeamSize      int            `json:"team_size"`
	RequiredRoles map[string]int `json:"required_roles,omitempty"`
}

// FormationRequest mirrors the wire shape of POST /formations
type FormationRequest struct {
	RequestID   string        `json:"request_id"`
	Competition Competition   `json:"competition"`
	Roster      []Participant `json:"roster"`
	Seed        *int64        `json:"seed,omitempty"`
}

// AckResponse represents the response from job submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id"`
}

// Team mirrors the wire shape of one formed team
type Team struct {
	Index    int      `json:"index"`
	Members  []string `json:"members"`
	LeaderID string   `json:"leader_id"`
}

// TeamSummary mirrors the wire shape of per-team aggregates
type TeamSummary struct {
	Index          int                `json:"index"`
	Size           int                `json:"size"`
	DimensionMeans map[string]float64 `json:"dimension_means"`
	AvgComposite   float64            `json:"avg_composite"`
	CoveredRoles   map[string]int     `json:"covered_roles,omitempty"`
	LeaderAptitude float64            `json:"leader_aptitude"`
}

// FormationResult mirrors the wire shape of a completed result
type FormationResult struct {
	Teams       []Team        `json:"teams"`
	Summaries   []TeamSummary `json:"summaries"`
	NumTeams    int           `json:"num_teams"`
	Cost        float64       `json:"cost"`
	InitialCost float64       `json:"initial_cost"`
	Iterations  int           `json:"iterations"`
	Seed        int64         `json:"seed"`
	DurationMS  float64       `json:"duration_ms"`
}

// JobResponse mirrors the wire shape of GET /formations/{id}
type JobResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Competition  string           `json:"competition"`
	TeamSize     int              `json:"team_size"`
	Participants int              `json:"participants"`
	Error        string           `json:"error"`
	Result       *FormationResult `json:"result"`
}

// Stats holds test statistics
type Stats struct {
	ParticipantsGenerated int
	JobsSubmitted         int
	Polls                 int
	TeamsFormed           int
	FinalCost             float64
	InitialCost           float64
	Iterations            int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
