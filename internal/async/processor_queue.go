package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

// FileProcessor is the part of pipeline.Processor the queue drives.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, force bool) (*pipeline.Outcome, error)
}

// ResultHook observes every finished job.
type ResultHook func(job Job, out *pipeline.Outcome, err error)

type ProcessorQueue struct {
	proc    FileProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	hook    ResultHook

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*ProcessorQueue)(nil)

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithResultHook(h ResultHook) Option {
	return func(q *ProcessorQueue) { q.hook = h }
}

func NewProcessorQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *ProcessorQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Debug("queue.worker.started", "worker_id", workerID)

	for job := range q.ch {
		ctx := context.Background()
		if job.RequestID != "" {
			ctx = common.WithRequestID(ctx, job.RequestID)
		}
		ctx, cancel := context.WithTimeout(ctx, q.timeout)
		out, err := q.proc.ProcessFile(ctx, job.Path, job.Force)
		cancel()

		if err != nil {
			q.logger.Error("queue.job.failed", "worker_id", workerID, "path", job.Path, "err", err)
		} else {
			q.logger.Info("queue.job.ok",
				"worker_id", workerID,
				"path", job.Path,
				"reused", out.Reused,
				"wait_ms", time.Since(job.SubmittedAt).Milliseconds(),
			)
		}
		if q.hook != nil {
			q.hook(job, out, err)
		}
	}

	q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueued", "path", job.Path, "force", job.Force)
		return nil
	default:
	}
	q.logger.Warn("queue.full", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
