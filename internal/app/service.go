// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/teamforge/internal/adapters/mq/queue"
	workerpool "github.com/okian/teamforge/internal/adapters/mq/worker"
	repository "github.com/okian/teamforge/internal/adapters/repository"
	"github.com/okian/teamforge/internal/domain/anneal"
	"github.com/okian/teamforge/internal/domain/cost"
	"github.com/okian/teamforge/internal/domain/dedupe"
	"github.com/okian/teamforge/internal/domain/formation"
	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/types"
	"github.com/okian/teamforge/pkg/logger"
	"github.com/okian/teamforge/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize    = 1024
	defaultDedupeSize   = 50_000
	defaultJobRetention = 1000
)

// Defaults bundles the optimizer knobs applied to jobs that do not
// override them.
type Defaults struct {
	Weights       cost.Weights
	Policy        cost.LeaderPolicy
	Schedule      anneal.Schedule
	Seed          int64
	ScoreExponent float64
}

// solver adapts formation.Form to the worker.Solver interface, resolving
// per-job tuning overrides against the service defaults.
type solver struct {
	defaults Defaults
}

func (s *solver) Solve(ctx context.Context, job workerpool.Job) (*formation.Result, error) {
	weights := s.defaults.Weights
	policy := s.defaults.Policy
	schedule := s.defaults.Schedule

	t := job.Tuning
	if t.BalanceWeight != nil {
		weights.Balance = *t.BalanceWeight
	}
	if t.RoleGapWeight != nil {
		weights.RoleGap = *t.RoleGapWeight
	}
	if t.LeadershipWeight != nil {
		weights.Leadership = *t.LeadershipWeight
	}
	if t.SizeDriftWeight != nil {
		weights.SizeDrift = *t.SizeDriftWeight
	}
	if t.LeaderThreshold != nil {
		policy.Threshold = *t.LeaderThreshold
	}
	if t.InitialTemp != nil {
		schedule.InitialTemp = *t.InitialTemp
	}
	if t.CoolingFactor != nil {
		schedule.Cooling = *t.CoolingFactor
	}
	if t.StopTemp != nil {
		schedule.StopTemp = *t.StopTemp
	}
	if t.MaxIterations != nil {
		schedule.MaxIterations = *t.MaxIterations
	}

	seed := job.Seed
	if seed == 0 {
		seed = s.defaults.Seed
	}

	return formation.Form(ctx, job.Roster, job.Spec,
		formation.WithWeights(weights),
		formation.WithLeaderPolicy(policy),
		formation.WithSchedule(schedule),
		formation.WithSeed(seed),
		formation.WithScoreExponent(s.defaults.ScoreExponent),
	)
}

// Service implements the API dependencies for the formation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	solver     *solver
	workerPool *workerpool.Pool

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	jobRetention int
	defaults     Defaults

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithJobRetention bounds how many finished jobs the store keeps.
func WithJobRetention(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.jobRetention = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaults sets the optimizer defaults applied to submitted jobs.
func WithDefaults(d Defaults) Option {
	return func(s *Service) {
		s.defaults = d
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  0, // worker pool falls back to NumCPU
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		jobRetention: defaultJobRetention,
		defaults: Defaults{
			Weights:       cost.DefaultWeights(),
			Policy:        cost.DefaultLeaderPolicy(),
			Schedule:      anneal.DefaultSchedule(),
			Seed:          42,
			ScoreExponent: 3,
		},
		stopCh: make(chan struct{}),
		logger: nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting formation service...")

	// Initialize components
	s.store = repository.NewMemStore(ctx,
		repository.WithRetention(s.jobRetention),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.solver = &solver{defaults: s.defaults}

	// Create and start worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.solver, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "formation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("jobRetention", s.jobRetention),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping formation service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close job store
	if s.store != nil {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	// Close queue
	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "formation service stopped")
}

// SeenAndRecord atomically checks if a request id was seen and records it
// if not. Returns true if the request was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordJobDuplicate()
	}
	return seen
}

// Unrecord removes a request ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Submit assigns an id to the job and queues it for asynchronous solving.
// A zero seed selects the service default. Returns ok=false on backpressure.
func (s *Service) Submit(ctx context.Context, job model.FormationJob) (string, bool) {
	job.ID = uuid.New().String()
	job.SubmittedAt = time.Now()

	if err := s.store.Create(ctx, repository.NewJob(&job)); err != nil {
		s.logger.Error(ctx, "failed to track job", logger.Error(err))
		return "", false
	}

	if ok := s.jobQueue.Enqueue(ctx, job); !ok {
		// Roll back the record so the submission leaves no trace
		s.store.Delete(ctx, job.ID)
		s.logger.Warn(ctx, "job queue full, rejecting submission",
			logger.String("jobID", job.ID),
		)
		return "", false
	}

	metrics.RecordJobSubmitted()
	metrics.UpdateQueueSize(s.jobQueue.Len(ctx))

	s.logger.Debug(ctx, "formation job queued",
		logger.String("jobID", job.ID),
		logger.String("competition", job.Spec.Name),
		logger.Int("roster", len(job.Roster)),
	)
	return job.ID, true
}

// Job returns the current state of one formation job.
func (s *Service) Job(ctx context.Context, id string) (types.JobView, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return types.JobView{}, err
	}
	return toJobView(&job), nil
}

// Recent returns up to n jobs, newest submission first.
func (s *Service) Recent(ctx context.Context, n int) ([]types.JobView, error) {
	jobs, err := s.store.Recent(ctx, n)
	if err != nil {
		return nil, err
	}

	views := make([]types.JobView, len(jobs))
	for i := range jobs {
		views[i] = toJobView(&jobs[i])
	}
	return views, nil
}

// toJobView converts a stored job into the API read shape.
func toJobView(job *repository.Job) types.JobView {
	view := types.JobView{
		ID:           job.ID,
		Status:       job.Status,
		Competition:  job.Competition,
		Kind:         job.Kind,
		TeamSize:     job.TeamSize,
		Participants: job.RosterSize,
		SubmittedAt:  job.SubmittedAt,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
		Error:        job.Reason,
	}
	if job.Result != nil {
		view.Result = toFormationView(job.Result)
	}
	return view
}

// toFormationView converts an optimizer result into the API read shape.
func toFormationView(res *formation.Result) *types.FormationView {
	view := &types.FormationView{
		NumTeams:    res.NumTeams,
		Cost:        res.Cost,
		InitialCost: res.InitialCost,
		Iterations:  res.Iterations,
		Accepted:    res.Accepted,
		Seed:        res.Seed,
		DurationMS:  float64(res.Duration.Microseconds()) / 1000.0,
	}

	view.Teams = make([]types.Team, len(res.Teams))
	for i, t := range res.Teams {
		view.Teams[i] = types.Team{
			Index:    t.Index,
			Members:  t.Members,
			LeaderID: t.LeaderID,
		}
	}

	view.Summaries = make([]types.TeamSummary, len(res.Summaries))
	for i := range res.Summaries {
		sum := &res.Summaries[i]
		means := make(map[string]float64, model.DimensionCount)
		for _, d := range model.Dimensions() {
			means[d.String()] = sum.DimensionMeans.At(d)
		}
		view.Summaries[i] = types.TeamSummary{
			Index:          sum.Index,
			Size:           sum.Size,
			DimensionMeans: means,
			AvgComposite:   sum.AvgComposite,
			CoveredRoles:   sum.CoveredRoles,
			LeaderAptitude: sum.LeaderAptitude,
		}
	}
	return view
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"jobRetention": s.jobRetention,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		totalJobs := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalJobs"] = totalJobs

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalJobs(totalJobs)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
