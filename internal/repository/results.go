package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/candidate-dossiers/internal/pipeline"
)

// ErrSink marks failures of the SQL results sink.
var ErrSink = errors.New("results sink error")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS dossier_runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		candidates INTEGER NOT NULL,
		failed INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_features (
		run_id TEXT NOT NULL,
		slug TEXT NOT NULL,
		position INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL,
		propuestas_count INTEGER NOT NULL,
		metas_cuantificadas_count INTEGER NOT NULL,
		anios_experiencia INTEGER NOT NULL,
		actividades_count INTEGER NOT NULL,
		grado_max TEXT NOT NULL,
		PRIMARY KEY (run_id, slug)
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_scores (
		run_id TEXT NOT NULL,
		slug TEXT NOT NULL,
		position INTEGER NOT NULL,
		propuestas DOUBLE PRECISION NOT NULL,
		experiencia DOUBLE PRECISION NOT NULL,
		gestion DOUBLE PRECISION NOT NULL,
		formacion DOUBLE PRECISION NOT NULL,
		impacto_social DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		PRIMARY KEY (run_id, slug)
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_fields (
		run_id TEXT NOT NULL,
		slug TEXT NOT NULL,
		field TEXT NOT NULL,
		value TEXT NOT NULL,
		state TEXT NOT NULL,
		source TEXT NOT NULL,
		PRIMARY KEY (run_id, slug, field)
	)`,
}

// Migrate creates the result tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, ddl := range schema {
		if err := s.drv.Exec(ctx, ddl, []any{}, nil); err != nil {
			return fmt.Errorf("%w: migrate: %w", ErrSink, err)
		}
	}
	return nil
}

// SaveRun upserts one run and all of its records in a single transaction,
// keyed by (run_id, slug[, field]).
func (s *Store) SaveRun(ctx context.Context, rep pipeline.Report) (err error) {
	start := time.Now()
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrSink, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("results.rollback.failed", "err", rbErr)
			}
		}
	}()

	b := entsql.Dialect(s.drv.Dialect())
	runID := rep.RunID.String()
	exec := func(q string, args []any) error {
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("%w: %w", ErrSink, err)
		}
		return nil
	}

	q, args := b.Insert("dossier_runs").
		Columns("run_id", "started_at", "finished_at", "candidates", "failed").
		Values(runID, rep.StartedAt.UTC().Format(time.RFC3339Nano), rep.FinishedAt.UTC().Format(time.RFC3339Nano), len(rep.Records), rep.Failed).
		OnConflict(entsql.ConflictColumns("run_id"), entsql.ResolveWithNewValues()).
		Query()
	if err = exec(q, args); err != nil {
		return err
	}

	for _, r := range rep.Records {
		f := r.Features
		q, args = b.Insert("candidate_features").
			Columns("run_id", "slug", "position", "status", "error",
				"propuestas_count", "metas_cuantificadas_count", "anios_experiencia", "actividades_count", "grado_max").
			Values(runID, r.Slug, r.Position, string(r.Status), r.Error,
				f.PropuestasCount, f.MetasCuantificadasCount, f.AniosExperiencia, f.ActividadesCount, string(f.GradoMax)).
			OnConflict(entsql.ConflictColumns("run_id", "slug"), entsql.ResolveWithNewValues()).
			Query()
		if err = exec(q, args); err != nil {
			return err
		}

		sc := r.Scores
		q, args = b.Insert("candidate_scores").
			Columns("run_id", "slug", "position", "propuestas", "experiencia", "gestion", "formacion", "impacto_social", "status").
			Values(runID, r.Slug, r.Position, sc.Propuestas, sc.Experiencia, sc.Gestion, sc.Formacion, sc.ImpactoSocial, string(r.Status)).
			OnConflict(entsql.ConflictColumns("run_id", "slug"), entsql.ResolveWithNewValues()).
			Query()
		if err = exec(q, args); err != nil {
			return err
		}

		for _, v := range r.Fields {
			q, args = b.Insert("candidate_fields").
				Columns("run_id", "slug", "field", "value", "state", "source").
				Values(runID, r.Slug, v.Field, v.Display(), v.State.String(), v.Provenance()).
				OnConflict(entsql.ConflictColumns("run_id", "slug", "field"), entsql.ResolveWithNewValues()).
				Query()
			if err = exec(q, args); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrSink, err)
	}
	s.logger.Info("results.saved",
		"run_id", runID,
		"records", len(rep.Records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// ScoreRow is one stored score line.
type ScoreRow struct {
	Slug          string
	Propuestas    float64
	Experiencia   float64
	Gestion       float64
	Formacion     float64
	ImpactoSocial float64
	Status        string
}

// Scores returns the stored scores of a run in roster order.
func (s *Store) Scores(ctx context.Context, runID string) ([]ScoreRow, error) {
	q, args := entsql.Dialect(s.drv.Dialect()).
		Select("slug", "propuestas", "experiencia", "gestion", "formacion", "impacto_social", "status").
		From(entsql.Table("candidate_scores")).
		Where(entsql.EQ("run_id", runID)).
		OrderBy("position").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: query scores: %w", ErrSink, err)
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		if err := rows.Scan(&r.Slug, &r.Propuestas, &r.Experiencia, &r.Gestion, &r.Formacion, &r.ImpactoSocial, &r.Status); err != nil {
			return nil, fmt.Errorf("%w: scan scores: %w", ErrSink, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunRow is one stored run header.
type RunRow struct {
	RunID      string
	StartedAt  string
	Candidates int
	Failed     int
}

// Runs lists the most recent runs first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRow, error) {
	sel := entsql.Dialect(s.drv.Dialect()).
		Select("run_id", "started_at", "candidates", "failed").
		From(entsql.Table("dossier_runs")).
		OrderBy(entsql.Desc("started_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: query runs: %w", ErrSink, err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Candidates, &r.Failed); err != nil {
			return nil, fmt.Errorf("%w: scan runs: %w", ErrSink, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FieldCount is the number of stored field rows of a run.
func (s *Store) FieldCount(ctx context.Context, runID string) (int, error) {
	q, args := entsql.Dialect(s.drv.Dialect()).
		Select(entsql.Count("*")).
		From(entsql.Table("candidate_fields")).
		Where(entsql.EQ("run_id", runID)).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return 0, fmt.Errorf("%w: count fields: %w", ErrSink, err)
	}
	defer rows.Close()
	n := 0
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("%w: scan count: %w", ErrSink, err)
		}
	}
	return n, rows.Err()
}

