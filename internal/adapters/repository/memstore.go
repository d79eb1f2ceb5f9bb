package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/teamforge/internal/domain/formation"
	"github.com/okian/teamforge/internal/domain/types"
	"github.com/okian/teamforge/pkg/metrics"
)

// Default retention bound for finished jobs.
const defaultRetention = 1000

// MemStore is an in-memory Store implementation. Jobs are tracked in a map
// keyed by id plus an insertion-order list used for eviction and listing.
// Retention is bounded: once the store holds more than the configured number
// of jobs, the oldest records are evicted.
type MemStore struct {
	mu    sync.RWMutex
	byID  map[string]*Job
	order []string // job ids, oldest first

	retention             int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemStore constructs an in-memory job store with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		byID:                  make(map[string]*Job),
		retention:             defaultRetention,
		metricsUpdateInterval: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// startMetricsUpdater starts a background goroutine that refreshes store gauges.
func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				count := len(s.byID)
				s.mu.RUnlock()
				metrics.UpdateTotalJobs(count)
			}
		}
	}()
}

// Close gracefully shuts down the metrics updater goroutine.
func (s *MemStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Create implements Store.Create.
func (s *MemStore) Create(_ context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[job.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
	}

	s.byID[job.ID] = &job
	s.order = append(s.order, job.ID)
	s.evictLocked()

	metrics.UpdateTotalJobs(len(s.byID))
	return nil
}

// evictLocked drops the oldest jobs until the retention bound holds.
// Callers must hold the write lock.
func (s *MemStore) evictLocked() {
	for len(s.order) > s.retention {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, oldest)
		metrics.RecordStoreEviction()
	}
}

// SetRunning implements Store.SetRunning.
func (s *MemStore) SetRunning(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := time.Now()
	job.Status = types.StatusRunning
	job.StartedAt = &now
	return nil
}

// Complete implements Store.Complete.
func (s *MemStore) Complete(_ context.Context, id string, result *formation.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := time.Now()
	job.Status = types.StatusCompleted
	job.FinishedAt = &now
	job.Result = result
	return nil
}

// Fail implements Store.Fail.
func (s *MemStore) Fail(_ context.Context, id string, status types.JobStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := time.Now()
	job.Status = status
	job.FinishedAt = &now
	job.Reason = reason
	return nil
}

// Delete implements Store.Delete.
func (s *MemStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i := range s.order {
		if s.order[i] == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	metrics.UpdateTotalJobs(len(s.byID))
}

// Get implements Store.Get.
func (s *MemStore) Get(_ context.Context, id string) (Job, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.byID[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return *job, nil
}

// Recent implements Store.Recent.
func (s *MemStore) Recent(_ context.Context, n int) ([]Job, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.order) {
		n = len(s.order)
	}

	out := make([]Job, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, *s.byID[s.order[i]])
	}

	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

// Count implements Store.Count.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
