// Package worker defines worker contracts for asynchronous formation solving.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/teamforge/internal/domain/formation"
	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/types"
	"github.com/okian/teamforge/pkg/logger"
	"github.com/okian/teamforge/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job abstracts what workers read off the queue.
// Using the model.FormationJob type for consistency.
type Job = model.FormationJob

// Solver runs the partition search for one job.
type Solver interface {
	Solve(ctx context.Context, job Job) (*formation.Result, error)
}

// Recorder tracks job lifecycle transitions in the store.
type Recorder interface {
	SetRunning(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, result *formation.Result) error
	Fail(ctx context.Context, id string, status types.JobStatus, reason string) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes formation jobs and records outcomes using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining jobs before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing formation jobs.
type InMemoryWorker struct {
	queue    Queue
	solver   Solver
	recorder Recorder
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, solver Solver, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		solver:   solver,
		recorder: recorder,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			// Process the job
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob handles a single formation job.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	if err := w.recorder.SetRunning(ctx, job.ID); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		w.logger.Error(ctx, "failed to mark job running",
			logger.String("jobID", job.ID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to mark job %s running: %w", job.ID, err)
	}

	solveStart := time.Now()
	result, err := w.solver.Solve(ctx, job)
	solveLatency := time.Since(solveStart)

	if err != nil {
		return w.recordFailure(ctx, job.ID, err)
	}

	if err := w.recorder.Complete(ctx, job.ID, result); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("failed to store result for job %s: %w", job.ID, err)
	}

	metrics.RecordJobCompleted()
	metrics.RecordFormationDuration(float64(solveLatency.Milliseconds()))
	metrics.RecordSearchIterations(result.Iterations)
	metrics.RecordSearchFinalCost(result.Cost)
	if result.InitialCost > 0 {
		metrics.RecordSearchImprovement((result.InitialCost - result.Cost) / result.InitialCost)
	}
	metrics.RecordTeamsFormed(result.NumTeams)
	metrics.RecordParticipantsPlaced(len(job.Roster))

	w.logger.Info(ctx, "formation job completed",
		logger.String("jobID", job.ID),
		logger.Int("teams", result.NumTeams),
		logger.Float64("cost", result.Cost),
		logger.Duration("duration", solveLatency),
	)
	return nil
}

// recordFailure classifies a solver error and marks the job terminal.
func (w *InMemoryWorker) recordFailure(ctx context.Context, jobID string, solveErr error) error {
	var status types.JobStatus
	switch {
	case errors.Is(solveErr, formation.ErrInfeasible):
		status = types.StatusInfeasible
		metrics.RecordJobInfeasible()
		metrics.RecordErrorByComponent("worker", "infeasible")
	case errors.Is(solveErr, formation.ErrInvalidInput):
		status = types.StatusInvalid
		metrics.RecordJobInvalid()
		metrics.RecordErrorByComponent("worker", "invalid_input")
	default:
		status = types.StatusInvalid
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "solver_error")
		metrics.RecordErrorByType("solver_error", "high")
	}

	w.logger.Warn(ctx, "formation job failed",
		logger.String("jobID", jobID),
		logger.String("status", string(status)),
		logger.Error(solveErr),
	)

	if err := w.recorder.Fail(ctx, jobID, status, solveErr.Error()); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("failed to mark job %s as %s: %w", jobID, status, err)
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	solver   Solver
	recorder Recorder

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Metrics tracking
	processedCount    int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, solver Solver, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		solver:            solver,
		recorder:          recorder,
		shutdown:          make(chan struct{}),
		done:              make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			solver,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerJobsPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	// Start metrics updater
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval) // Update metrics every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics updates worker-related metrics.
func (p *Pool) updateMetrics() {
	// Calculate jobs per second
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		jobsPerSecond := float64(p.processedCount) / timeDiff
		metrics.UpdateWorkerJobsPerSecond(jobsPerSecond)
	}

	// Reset counters
	p.processedCount = 0
	p.lastProcessedTime = now
}

// RecordProcessedJob increments the processed job count.
func (p *Pool) RecordProcessedJob() {
	p.processedCount++
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish
	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new jobs
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
