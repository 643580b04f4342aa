package async

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job asks for one batch run. Jobs submitted while another is waiting are
// merged into it.
type Job struct {
	Reason      string
	Paths       []string // changed paths that triggered the run, if any
	SubmittedAt time.Time
	TraceID     string
}

// RunFunc performs one batch run.
type RunFunc func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// RunQueue runs jobs one at a time on a single worker. At most one job waits
// behind the running one; later submissions coalesce into it, so a burst of
// changes costs one extra run.
type RunQueue struct {
	run     RunFunc
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *Job
	closed  bool
	wake    chan struct{}

	wg   sync.WaitGroup
	once sync.Once
	stop chan struct{}
}

type Option func(*RunQueue)

func WithProcessTimeout(d time.Duration) Option {
	return func(q *RunQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewRunQueue(run RunFunc, logger *slog.Logger, opts ...Option) *RunQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &RunQueue{
		run:     run,
		logger:  logger,
		timeout: 30 * time.Minute,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *RunQueue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Info("run worker started")
			for {
				job, ok := q.next()
				if !ok {
					q.logger.Info("run worker stopped")
					return
				}
				ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
				start := time.Now()
				err := q.run(ctx, job)
				cancel()
				if err != nil {
					q.logger.Error("run failed", "trace_id", job.TraceID, "reason", job.Reason, "error", err)
				} else {
					q.logger.Info("run finished", "trace_id", job.TraceID, "reason", job.Reason,
						"changed", len(job.Paths), "duration_ms", time.Since(start).Milliseconds())
				}
			}
		}()
	})
}

// next blocks until a job is pending or the queue is shut down with nothing
// left to do.
func (q *RunQueue) next() (Job, bool) {
	for {
		q.mu.Lock()
		if q.pending != nil {
			job := *q.pending
			q.pending = nil
			q.mu.Unlock()
			return job, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return Job{}, false
		}
		select {
		case <-q.wake:
		case <-q.stop:
		}
	}
}

// Enqueue schedules a run, merging into the waiting job when there is one.
func (q *RunQueue) Enqueue(_ context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "reason", job.Reason)
		return nil
	}
	if q.pending == nil {
		q.pending = &job
		q.logger.Info("queued run", "trace_id", job.TraceID, "reason", job.Reason, "changed", len(job.Paths))
	} else {
		q.pending.Paths = mergePaths(q.pending.Paths, job.Paths)
		q.logger.Debug("coalesced run", "trace_id", q.pending.TraceID, "reason", job.Reason)
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Shutdown stops accepting jobs, lets the worker finish what is pending and
// waits for it or for ctx.
func (q *RunQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.stop)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

func mergePaths(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, p := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
