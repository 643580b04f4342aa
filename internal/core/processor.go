package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
	"github.com/joseph-ayodele/candidate-dossiers/internal/export"
	"github.com/joseph-ayodele/candidate-dossiers/internal/extract"
	"github.com/joseph-ayodele/candidate-dossiers/internal/pipeline"
	"github.com/joseph-ayodele/candidate-dossiers/internal/repository"
	"github.com/joseph-ayodele/candidate-dossiers/internal/roster"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
	"github.com/joseph-ayodele/candidate-dossiers/internal/scoring"
)

// Processor runs a full batch: load the roster and biography store, run the
// pipeline, write the exports and, when a store is configured, the SQL sink.
// The roster and biographies are re-read on every run.
type Processor struct {
	logger   *slog.Logger
	cfg      *common.Config
	lib      *rules.Library
	source   extract.TextSource
	exporter *export.Service
	store    *repository.Store // nil disables the SQL sink
}

func NewProcessor(
	logger *slog.Logger,
	cfg *common.Config,
	lib *rules.Library,
	source extract.TextSource,
	exporter *export.Service,
	store *repository.Store,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, cfg: cfg, lib: lib, source: source, exporter: exporter, store: store}
}

// Outcome summarizes one batch.
type Outcome struct {
	Report pipeline.Report
	Files  []string
}

// Run executes one batch. Per-candidate failures are FAILED records, not
// errors; only input, export and sink problems are returned.
func (p *Processor) Run(ctx context.Context) (Outcome, error) {
	start := time.Now()
	cands, err := roster.Load(p.cfg.Input.RosterFile)
	if err != nil {
		return Outcome{}, err
	}
	bios, err := roster.LoadBiographies(p.cfg.Input.BiographyFile)
	if err != nil {
		return Outcome{}, err
	}
	p.logger.Info("batch.inputs.loaded", "candidates", len(cands), "biographies", bios.Len())

	runner := pipeline.New(pipeline.Deps{
		Rules:     p.lib,
		Source:    p.source,
		Bios:      bios,
		Ceilings:  scoring.CeilingsFromConfig(p.cfg.Scoring),
		Reference: p.cfg.Pipeline.ReferenceDate,
		Workers:   p.cfg.Pipeline.Workers,
		Logger:    p.logger,
	})
	rep := runner.Run(ctx, cands)
	out := Outcome{Report: rep}

	// Exports are written even when the run was interrupted: every record is
	// present, canceled ones as FAILED.
	files, err := p.exporter.WriteAll(rep.Records, p.lib.Fields())
	out.Files = files
	if err != nil {
		return out, err
	}

	if p.store != nil {
		if err := p.store.SaveRun(context.WithoutCancel(ctx), rep); err != nil {
			return out, common.NewAppError("SINK_ERROR", "save run", err)
		}
	}

	p.logger.Info("batch.done",
		"run_id", rep.RunID.String(),
		"candidates", len(rep.Records),
		"failed", rep.Failed,
		"files", len(files),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("batch interrupted: %w", err)
	}
	return out, nil
}
