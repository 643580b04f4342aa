package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/extract"
	"github.com/joseph-ayodele/candidate-dossiers/internal/features"
	"github.com/joseph-ayodele/candidate-dossiers/internal/roster"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
	"github.com/joseph-ayodele/candidate-dossiers/internal/scoring"
)

// Deps are the collaborators of a run.
type Deps struct {
	Rules     *rules.Library
	Source    extract.TextSource
	Bios      *roster.BiographyStore
	Ceilings  scoring.Ceilings
	Reference time.Time
	Workers   int
	Logger    *slog.Logger
}

// New wires the stages into a Runner.
func New(d Deps) *Runner {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	proc := NewProcessor(logger,
		NewTextStage(d.Source, d.Bios, logger),
		NewFieldStage(d.Rules, logger),
		NewScoreStage(features.NewAggregator(d.Rules.Features, d.Reference), scoring.NewNormalizer(d.Ceilings)),
		d.Reference,
	)
	return NewRunner(proc, d.Workers, logger)
}

// Processor runs one candidate end to end: text, then fields, then scores.
type Processor struct {
	Logger    *slog.Logger
	Text      *TextStage
	Fields    *FieldStage
	Scores    *ScoreStage
	Reference time.Time
}

func NewProcessor(logger *slog.Logger, text *TextStage, fieldStage *FieldStage, scores *ScoreStage, reference time.Time) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Fields: fieldStage, Scores: scores, Reference: reference}
}

// Process builds the record of c. The returned error is set only when the
// unit was interrupted; the record is then incomplete and the caller
// replaces it with a FAILED one.
func (p *Processor) Process(ctx context.Context, position int, c roster.Candidate) (Record, error) {
	rec := Record{Position: position, Slug: c.Slug, Name: c.Name, Age: -1}

	docs, bio := p.Text.Run(ctx, c)
	if err := ctx.Err(); err != nil {
		return rec, err
	}
	if rec.Name == "" {
		rec.Name = bio.Name
	}
	rec.Party = bio.Party
	rec.BirthDate = bio.BirthDate
	rec.Age = bio.Age(p.Reference)

	rec.Fields = p.Fields.Run(docs)
	rec.Features, rec.Scores = p.Scores.Run(docs)
	rec.Status = constants.TaskSucceeded

	p.Logger.Debug("pipeline.candidate.processed",
		"slug", c.Slug,
		"propuestas", rec.Features.PropuestasCount,
		"anios_experiencia", rec.Features.AniosExperiencia,
		"grado_max", rec.Features.GradoMax,
	)
	return rec, nil
}
