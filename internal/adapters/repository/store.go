// Package repository defines the formation job store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/teamforge/internal/domain/formation"
	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/types"
)

// Job is the stored record of one formation job. The roster itself is not
// retained; the store keeps only the job shape and the optimizer's output.
type Job struct {
	ID           string
	Status       types.JobStatus
	Competition  string
	Kind         string
	TeamSize     int
	RequiredRole map[string]int
	RosterSize   int
	Seed         int64
	SubmittedAt  time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
	Reason       string // failure reason for infeasible/invalid jobs
	Result       *formation.Result
}

// NewJob builds a queued Job record from a submitted formation job.
func NewJob(j *model.FormationJob) Job {
	return Job{
		ID:           j.ID,
		Status:       types.StatusQueued,
		Competition:  j.Spec.Name,
		Kind:         j.Spec.Kind,
		TeamSize:     j.Spec.TeamSize,
		RequiredRole: j.Spec.RequiredRoles,
		RosterSize:   len(j.Roster),
		Seed:         j.Seed,
		SubmittedAt:  j.SubmittedAt,
	}
}

// Store provides read/write access to formation job state.
type Store interface {
	// Create records a new queued job. Returns ErrDuplicateJob when the id
	// is already tracked.
	Create(ctx context.Context, job Job) error

	// SetRunning marks a queued job as running.
	SetRunning(ctx context.Context, id string) error

	// Complete stores the optimizer result and marks the job completed.
	Complete(ctx context.Context, id string, result *formation.Result) error

	// Fail marks the job terminal with the given failure status and reason.
	Fail(ctx context.Context, id string, status types.JobStatus, reason string) error

	// Delete removes a job record. Used to roll back a submission that
	// could not be queued. Unknown ids are ignored.
	Delete(ctx context.Context, id string)

	// Get returns the job by id. Returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (Job, error)

	// Recent returns up to n jobs, newest submission first.
	Recent(ctx context.Context, n int) ([]Job, error)

	// Count returns the number of jobs currently retained.
	Count(ctx context.Context) int
}
