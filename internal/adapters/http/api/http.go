// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/teamforge/internal/adapters/repository"
	"github.com/okian/teamforge/internal/domain/dedupe"
	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Submit queues a formation job and assigns its id.
	// Returns ok=false on backpressure.
	Submit(ctx context.Context, job model.FormationJob) (string, bool)

	// Read operations expose job state.
	Job(ctx context.Context, id string) (types.JobView, error)
	Recent(ctx context.Context, n int) ([]types.JobView, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	formationsHandler *FormationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		formationsHandler: NewFormationsHandler(deps, maxListLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/formations", MetricsMiddleware(s.formationsHandler.HandleFormations, "formations"))
	mux.HandleFunc("/formations/", MetricsMiddleware(s.formationsHandler.HandleGetFormation, "formation"))
}

// participantRequest mirrors the OpenAPI schema for one roster entry.
type participantRequest struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Scores     map[string]float64 `json:"scores"`
	Roles      []string           `json:"roles"`
	Leadership float64            `json:"leadership"`
}

// tuningRequest mirrors the OpenAPI schema for optional per-job knobs.
type tuningRequest struct {
	BalanceWeight    *float64 `json:"balance_weight,omitempty"`
	RoleGapWeight    *float64 `json:"role_gap_weight,omitempty"`
	LeadershipWeight *float64 `json:"leadership_weight,omitempty"`
	SizeDriftWeight  *float64 `json:"size_drift_weight,omitempty"`
	LeaderThreshold  *float64 `json:"leader_threshold,omitempty"`
	InitialTemp      *float64 `json:"initial_temp,omitempty"`
	CoolingFactor    *float64 `json:"cooling_factor,omitempty"`
	StopTemp         *float64 `json:"stop_temp,omitempty"`
	MaxIterations    *int     `json:"max_iterations,omitempty"`
}

// formationRequest mirrors the OpenAPI schema for POST /formations.
type formationRequest struct {
	RequestID   string `json:"request_id"`
	Competition struct {
		Name          string         `json:"name"`
		Kind          string         `json:"kind"`
		TeamSize      int            `json:"team_size"`
		RequiredRoles map[string]int `json:"required_roles"`
	} `json:"competition"`
	Roster []participantRequest `json:"roster"`
	Tuning *tuningRequest       `json:"tuning,omitempty"`
	Seed   *int64               `json:"seed,omitempty"`
}

func (f *formationRequest) validate() error {
	switch {
	case strings.TrimSpace(f.RequestID) == "":
		return errors.New("missing request_id")
	case strings.TrimSpace(f.Competition.Name) == "":
		return errors.New("missing competition.name")
	case f.Competition.TeamSize < 1:
		return errors.New("competition.team_size must be positive")
	case len(f.Roster) == 0:
		return errors.New("missing roster")
	}
	for i := range f.Roster {
		if strings.TrimSpace(f.Roster[i].ID) == "" {
			return errors.New("roster entries must carry an id")
		}
	}
	return nil
}

// toJob converts the wire shape into the domain job. The job id and
// submission time are assigned by the service on submit.
func (f *formationRequest) toJob() model.FormationJob {
	roster := make([]model.Participant, 0, len(f.Roster))
	for i := range f.Roster {
		p := model.Participant{
			ID:         f.Roster[i].ID,
			Name:       f.Roster[i].Name,
			Roles:      f.Roster[i].Roles,
			Leadership: f.Roster[i].Leadership,
		}
		for _, d := range model.Dimensions() {
			p.Scores[d] = f.Roster[i].Scores[d.String()]
		}
		roster = append(roster, p)
	}

	job := model.FormationJob{
		Spec: model.CompetitionSpec{
			Name:          f.Competition.Name,
			Kind:          f.Competition.Kind,
			TeamSize:      f.Competition.TeamSize,
			RequiredRoles: f.Competition.RequiredRoles,
		},
		Roster: roster,
	}
	if f.Seed != nil {
		job.Seed = *f.Seed
	}
	if f.Tuning != nil {
		job.Tuning = model.TuningOverrides{
			BalanceWeight:    f.Tuning.BalanceWeight,
			RoleGapWeight:    f.Tuning.RoleGapWeight,
			LeadershipWeight: f.Tuning.LeadershipWeight,
			SizeDriftWeight:  f.Tuning.SizeDriftWeight,
			LeaderThreshold:  f.Tuning.LeaderThreshold,
			InitialTemp:      f.Tuning.InitialTemp,
			CoolingFactor:    f.Tuning.CoolingFactor,
			StopTemp:         f.Tuning.StopTemp,
			MaxIterations:    f.Tuning.MaxIterations,
		}
	}
	return job
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
