// Package worker runs import jobs taken off the queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

const (
	defaultJobTimeout   = 5 * time.Minute
	poolShutdownTimeout = 30 * time.Second
)

// ErrPoolShutdown is recorded on jobs still queued when the pool shuts down.
var ErrPoolShutdown = errors.New("worker pool shut down before the job ran")

// Importer loads the source named by a job and publishes the result.
type Importer interface {
	Import(ctx context.Context, job model.ImportJob) (model.ImportResult, error)
}

// StatusRecorder receives every status transition of a job.
type StatusRecorder interface {
	Record(status model.ImportStatus)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.ImportJob
}

// Worker processes import jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in flight, if any.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	importer   Importer
	recorder   StatusRecorder
	name       string
	jobTimeout time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options. A nil
// recorder discards status updates.
func NewInMemoryWorker(queue Queue, importer Importer, recorder StatusRecorder, opts ...Option) *InMemoryWorker {
	if recorder == nil {
		recorder = discard{}
	}
	w := &InMemoryWorker{
		queue:      queue,
		importer:   importer,
		recorder:   recorder,
		name:       "worker",
		jobTimeout: defaultJobTimeout,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		// A pending shutdown wins over jobs still buffered in the queue.
		select {
		case <-w.shutdown:
			return
		default:
		}
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			_ = w.process(ctx, job)
		}
	}
}

// Shutdown signals the loop to stop and waits for it.
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

// Done is closed when the loop has exited.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, job model.ImportJob) error {
	start := time.Now()
	status := model.ImportStatus{Job: job, State: model.ImportRunning, StartedAt: start}
	w.recorder.Record(status)
	w.logger.Info(ctx, "import started", logger.String("job_id", job.ID), logger.String("source", job.Source))

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()
	res, err := w.importer.Import(jobCtx, job)

	elapsed := time.Since(start)
	status.FinishedAt = time.Now()
	status.Result = res
	if err != nil {
		status.State = model.ImportFailed
		status.Error = err.Error()
		w.recorder.Record(status)

		metrics.RecordImportJob("failed", float64(elapsed.Milliseconds()))
		metrics.RecordErrorByComponent("worker", "import_failed")
		w.logger.Error(ctx, "import failed",
			logger.String("job_id", job.ID),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return fmt.Errorf("import job %s: %w", job.ID, err)
	}

	status.State = model.ImportSucceeded
	w.recorder.Record(status)
	metrics.RecordImportJob("succeeded", float64(elapsed.Milliseconds()))
	w.logger.Info(ctx, "import finished",
		logger.String("job_id", job.ID),
		logger.Int("imported", res.Imported),
		logger.Int("skipped", res.Skipped),
		logger.Any("generation", res.Generation),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

type discard struct{}

func (discard) Record(model.ImportStatus) {}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	recorder StatusRecorder

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. With fewer than one worker
// requested a single worker is used, which also keeps imports applied in
// submission order.
func NewPool(workerCount int, queue Queue, importer Importer, recorder StatusRecorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		recorder: recorder,
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("import-worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(queue, importer, recorder, wopts...)
	}
	metrics.UpdateWorkerActiveCount(workerCount)
	return p
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, when it supports closing, stops every worker
// and waits for them up to the pool timeout. Jobs that never left the queue
// are then recorded as failed with ErrPoolShutdown when the recorder
// supports it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	metrics.UpdateWorkerActiveCount(0)

	if f, ok := p.recorder.(interface{ FailQueued(reason string) int }); ok {
		if n := f.FailQueued(ErrPoolShutdown.Error()); n > 0 {
			p.logger.Warn(ctx, "queued imports dropped on shutdown", logger.Int("jobs", n))
		}
	}
	return firstErr
}
