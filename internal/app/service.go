// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	eventqueue "github.com/okian/possessions/internal/adapters/mq/queue"
	workerpool "github.com/okian/possessions/internal/adapters/mq/worker"
	repository "github.com/okian/possessions/internal/adapters/repository"
	"github.com/okian/possessions/internal/domain/dedupe"
	"github.com/okian/possessions/internal/domain/game"
	"github.com/okian/possessions/internal/domain/lineup"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/possession"
	"github.com/okian/possessions/internal/domain/types"
	"github.com/okian/possessions/pkg/logger"
	"github.com/okian/possessions/pkg/metrics"
)

// Service implements the API dependencies for the possession service.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	source    lineup.MinutesSource
	deduper   dedupe.Deduper
	jobQueue  *eventqueue.InMemoryQueue
	processor *game.Processor
	pool      *workerpool.Pool
	cancelRun context.CancelFunc

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	jobHistory  int

	// Job bookkeeping, oldest first
	jobsMu   sync.RWMutex
	jobs     map[string]*types.JobStatus
	jobOrder []string

	started bool
	logger  logger.Logger
}

// New constructs a new Service over a result store and a minutes source.
func New(store repository.Store, source lineup.MinutesSource, opts ...Option) *Service {
	s := &Service{
		store:       store,
		source:      source,
		workerCount: runtime.NumCPU(),
		queueSize:   1000,
		dedupeSize:  10000,
		jobHistory:  10000,
		jobs:        make(map[string]*types.JobStatus),
	}

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
	if s.store == nil || s.source == nil {
		return ErrMisconfigured
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting possession service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.processor = game.NewProcessor(s.source, game.WithLogger(s.logger.Named("game")))
	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.processor, s.store,
		workerpool.WithObserver(s),
		workerpool.WithLogger(s.logger.Named("worker")),
	)
	// Workers outlive ctx so Stop can drain the queue after a signal.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "possession service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop stops accepting games and drains the queue. Games still queued when
// the drain gives up are marked failed, so every accepted job ends done or
// failed and its game can be submitted again.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	// Submit holds the read lock, so no submission is half done from here on.
	s.started = false
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping possession service...")
	err := s.pool.Shutdown(ctx)
	// Games abandoned by a timed-out drain see their context cancelled and
	// report through Finished.
	s.cancelRun()

	left := s.jobQueue.Drain()
	for _, job := range left {
		s.Finished(ctx, job, nil, fmt.Errorf("%w: %w", ErrStopped, context.Canceled))
	}
	s.logger.Info(ctx, "possession service stopped", logger.Int("abandoned", len(left)))
	return err
}

// Submit queues a game for processing and returns its job. A game already
// queued or running is refused with ErrDuplicate; a full queue or dedupe
// set is refused with ErrBackpressure.
func (s *Service) Submit(ctx context.Context, gameID string, events []model.Event) (types.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.JobStatus{}, ErrNotStarted
	}
	if gameID == "" {
		return types.JobStatus{}, ErrInvalidGameID
	}
	if len(events) == 0 {
		return types.JobStatus{}, fmt.Errorf("%w: game %s", game.ErrNoEvents, gameID)
	}

	if err := s.deduper.Claim(ctx, gameID); err != nil {
		switch {
		case errors.Is(err, dedupe.ErrInFlight):
			metrics.RecordGameDuplicate()
			return types.JobStatus{}, fmt.Errorf("%w: %s", ErrDuplicate, gameID)
		case errors.Is(err, dedupe.ErrFull):
			return types.JobStatus{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return types.JobStatus{}, err
	}

	job := eventqueue.Job{
		ID:          uuid.NewString(),
		GameID:      gameID,
		Events:      events,
		SubmittedAt: time.Now().UTC(),
	}
	status := types.JobStatus{
		JobID:       job.ID,
		GameID:      gameID,
		State:       types.JobQueued,
		SubmittedAt: job.SubmittedAt,
	}
	// Recorded before enqueueing so a fast worker always finds the job.
	s.recordJob(status)

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		s.forgetJob(job.ID)
		s.deduper.Release(ctx, gameID)
		if errors.Is(err, eventqueue.ErrFull) {
			return types.JobStatus{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return types.JobStatus{}, err
	}

	s.logger.Debug(ctx, "game queued",
		logger.String("job_id", job.ID),
		logger.String("game_id", gameID),
		logger.Int("events", len(events)),
	)
	return status, nil
}

// Finished implements worker.Observer. It records the outcome and frees
// the game for resubmission.
func (s *Service) Finished(ctx context.Context, job eventqueue.Job, res *game.Result, err error) { //nolint:gocritic // hugeParam: Job is passed by value through the queue
	now := time.Now().UTC()

	s.jobsMu.Lock()
	if status, ok := s.jobs[job.ID]; ok {
		status.FinishedAt = &now
		if err != nil {
			status.State = types.JobFailed
			status.Reason = game.FailureReason(err)
			status.Error = err.Error()
		} else {
			status.State = types.JobDone
			status.Possessions = len(res.Possessions)
			status.Unresolved = res.Unresolved()
		}
	}
	s.jobsMu.Unlock()

	s.deduper.Release(ctx, job.GameID)
}

// Job returns the status of a submitted job.
func (s *Service) Job(_ context.Context, jobID string) (types.JobStatus, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	status, ok := s.jobs[jobID]
	if !ok {
		return types.JobStatus{}, ErrJobNotFound
	}
	out := *status
	if status.FinishedAt != nil {
		finished := *status.FinishedAt
		out.FinishedAt = &finished
	}
	return out, nil
}

// Possessions returns the stored possessions of a game.
func (s *Service) Possessions(ctx context.Context, gameID string) ([]possession.Summary, error) {
	return s.store.Possessions(ctx, gameID)
}

// Timeline returns the stored timeline of a game.
func (s *Service) Timeline(ctx context.Context, gameID string) ([]possession.TimelineRow, error) {
	return s.store.Timeline(ctx, gameID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:   s.started,
		Workers:   s.workerCount,
		QueueSize: s.queueSize,
	}

	s.jobsMu.RLock()
	for _, status := range s.jobs {
		switch status.State {
		case types.JobQueued:
			stats.JobsQueued++
		case types.JobDone:
			stats.JobsDone++
		case types.JobFailed:
			stats.JobsFailed++
		}
	}
	s.jobsMu.RUnlock()

	if s.deduper != nil {
		stats.InFlight = s.deduper.Size()
	}
	if s.jobQueue != nil {
		stats.QueueLength = s.jobQueue.Len(ctx)
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats.StoredGames = n
	} else if s.logger != nil {
		s.logger.Warn(ctx, "counting stored games failed", logger.Error(err))
	}

	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateWorkerCount(s.workerCount)
	return stats
}

// recordJob adds a job, dropping the oldest finished jobs beyond the
// history limit.
func (s *Service) recordJob(status types.JobStatus) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	s.jobs[status.JobID] = &status
	s.jobOrder = append(s.jobOrder, status.JobID)

	for len(s.jobs) > s.jobHistory && len(s.jobOrder) > 0 {
		oldest := s.jobOrder[0]
		if st, ok := s.jobs[oldest]; ok && !st.State.Terminal() {
			break
		}
		s.jobOrder = s.jobOrder[1:]
		delete(s.jobs, oldest)
	}
}

func (s *Service) forgetJob(jobID string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	delete(s.jobs, jobID)
}
