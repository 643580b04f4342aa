package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
	"github.com/joseph-ayodele/candidate-dossiers/internal/fields"
	"github.com/joseph-ayodele/candidate-dossiers/internal/parallel"
	"github.com/joseph-ayodele/candidate-dossiers/internal/roster"
)

// Report is the outcome of one batch run.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Records    []Record
	Failed     int
}

// Runner fans a roster out over a bounded worker pool and collects one
// record per candidate in roster order.
type Runner struct {
	proc    *Processor
	workers int
	logger  *slog.Logger
}

func NewRunner(proc *Processor, workers int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = parallel.DefaultWorkers
	}
	return &Runner{proc: proc, workers: workers, logger: logger}
}

// Run processes every candidate. It never returns fewer records than
// candidates: failed or canceled units yield FAILED records.
func (r *Runner) Run(ctx context.Context, candidates []roster.Candidate) Report {
	rep := Report{RunID: uuid.New(), StartedAt: time.Now().UTC()}
	ctx = common.WithRunID(ctx, rep.RunID.String())
	logger := r.logger.With("run_id", rep.RunID.String())
	logger.Info("pipeline.run.start", "candidates", len(candidates), "workers", r.workers)

	total := len(candidates)
	tracker := newTracker(total, logger)
	var done atomic.Int64

	results := parallel.OrderedMap(ctx, candidates, r.workers, func(ctx context.Context, i int, c roster.Candidate) (Record, error) {
		tracker.move(i, c.Slug, constants.TaskRunning)
		ctx = common.WithSlug(ctx, c.Slug)
		rec, err := r.proc.Process(ctx, i, c)
		n := done.Add(1)
		if err != nil {
			logger.Warn(fmt.Sprintf("[%d/%d] %s failed", n, total, c.Slug), "slug", c.Slug, "code", common.ErrorCode(err), "err", err)
			return rec, err
		}
		tracker.move(i, c.Slug, constants.TaskSucceeded)
		logger.Info(fmt.Sprintf("[%d/%d] %s", n, total, c.Slug), "slug", c.Slug)
		return rec, nil
	})

	names := r.proc.Fields.Lib.Fields()
	rep.Records = make([]Record, total)
	for i, res := range results {
		c := candidates[i]
		if res.Err == nil {
			rep.Records[i] = res.Value
			continue
		}
		err := fmt.Errorf("%w: %s: %w", common.ErrCandidateTask, c.Slug, res.Err)
		switch {
		case tracker.status(i) == constants.TaskPending:
			logger.Warn(fmt.Sprintf("[%d/%d] %s not started", done.Add(1), total, c.Slug), "slug", c.Slug, "err", res.Err)
		case errors.Is(res.Err, parallel.ErrPanic):
			logger.Error(fmt.Sprintf("[%d/%d] %s panicked", done.Add(1), total, c.Slug), "slug", c.Slug, "err", res.Err)
		}
		tracker.move(i, c.Slug, constants.TaskFailed)
		base := Record{Position: i, Slug: c.Slug, Name: c.Name, Age: -1}
		rep.Records[i] = failedRecord(base, names, err)
		rep.Failed++
	}

	rep.FinishedAt = time.Now().UTC()
	for _, s := range Summarize(rep.Records, names) {
		logger.Info("pipeline.summary.field",
			"field", s.Field,
			"found", s.Found,
			"not_found", s.NotFound,
			"not_applicable", s.NotApplicable,
			"failed", s.Failed,
		)
	}
	logger.Info("pipeline.run.done",
		"candidates", total,
		"failed", rep.Failed,
		"duration_ms", rep.FinishedAt.Sub(rep.StartedAt).Milliseconds(),
	)
	return rep
}

// FieldSummary counts the outcome of one field across a run.
type FieldSummary struct {
	Field         string
	Found         int
	NotFound      int
	NotApplicable int
	Failed        int
}

// Summarize tallies each named field over records, in names order.
func Summarize(records []Record, names []string) []FieldSummary {
	idx := make(map[string]int, len(names))
	out := make([]FieldSummary, len(names))
	for i, n := range names {
		idx[n] = i
		out[i].Field = n
	}
	for _, rec := range records {
		for _, v := range rec.Fields {
			i, ok := idx[v.Field]
			if !ok {
				continue
			}
			switch v.State {
			case fields.Found:
				out[i].Found++
			case fields.NotApplicable:
				out[i].NotApplicable++
			case fields.Failed:
				out[i].Failed++
			default:
				out[i].NotFound++
			}
		}
	}
	return out
}

// tracker holds the lifecycle state of every unit by roster position.
type tracker struct {
	mu     sync.Mutex
	states []constants.TaskStatus
	logger *slog.Logger
}

func newTracker(n int, logger *slog.Logger) *tracker {
	t := &tracker{states: make([]constants.TaskStatus, n), logger: logger}
	for i := range t.states {
		t.states[i] = constants.TaskPending
	}
	return t
}

func (t *tracker) move(i int, slug string, next constants.TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.states[i]
	if !cur.CanTransition(next) {
		t.logger.Warn("pipeline.status.invalid_transition", "slug", slug, "from", cur, "to", next)
		return
	}
	t.states[i] = next
	t.logger.Debug("pipeline.status", "slug", slug, "from", cur, "to", next)
}

func (t *tracker) status(i int) constants.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[i]
}
