// Package worker runs queued games through the possession pipeline, one game
// per worker at a time.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/possessions/internal/adapters/mq/queue"
	"github.com/okian/possessions/internal/domain/game"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/pkg/logger"
	"github.com/okian/possessions/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Processor segments one game.
type Processor interface {
	Process(ctx context.Context, gameID string, events []model.Event) (*game.Result, error)
}

// Saver persists a processed game.
type Saver interface {
	Save(ctx context.Context, res *game.Result) error
}

// Observer is told the outcome of every job. err is nil on success.
type Observer interface {
	Finished(ctx context.Context, job queue.Job, res *game.Result, err error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing games.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	saver     Saver
	observer  Observer
	name      string
	active    *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, processor Processor, saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: processor,
		saver:     saver,
		name:      "worker",
		active:    &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			// Failures are logged and reported inside processJob.
			_ = w.processJob(ctx, job)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob runs one game and saves its result. A failed game is skipped
// entirely: nothing is saved for it.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) (err error) { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	var res *game.Result
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		if w.observer != nil {
			w.observer.Finished(ctx, job, res, err)
		}
	}()

	res, err = w.processor.Process(ctx, job.GameID, job.Events)
	if err != nil {
		reason := game.FailureReason(err)
		metrics.RecordGameFailed(reason)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", reason)
		w.logger.Error(ctx, "game skipped",
			logger.String("job_id", job.ID),
			logger.String("game_id", job.GameID),
			logger.String("reason", reason),
			logger.Error(err),
		)
		res = nil
		return fmt.Errorf("process game %s: %w", job.GameID, err)
	}

	if err = w.saver.Save(ctx, res); err != nil {
		metrics.RecordGameFailed("store")
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store")
		w.logger.Error(ctx, "saving game failed",
			logger.String("job_id", job.ID),
			logger.String("game_id", job.GameID),
			logger.Error(err),
		)
		res = nil
		return fmt.Errorf("save game %s: %w", job.GameID, err)
	}

	metrics.RecordGameProcessed(len(res.Possessions), res.Unresolved(), len(res.Unclassified),
		float64(time.Since(start).Milliseconds()))
	w.logger.Info(ctx, "game processed",
		logger.String("job_id", job.ID),
		logger.String("game_id", job.GameID),
		logger.Int("possessions", len(res.Possessions)),
		logger.Int("unresolved", res.Unresolved()),
	)
	return nil
}

// Pool manages multiple workers. Workers share nothing but the queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. Options are applied to every worker.
func NewPool(workerCount int, q Queue, processor Processor, saver Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	active := &atomic.Int64{}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, processor, saver, workerOpts...)
		w.active = active
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets the workers drain what is already
// queued. Workers still busy when ctx or the pool timeout expires are told
// to stop after their current game and are not waited for; jobs they never
// received stay in the queue.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			// Signal only; waiting on ctx could block on a game that never ends.
			_ = w.Shutdown(shutdownCtx)
		}
	}

	return nil
}
