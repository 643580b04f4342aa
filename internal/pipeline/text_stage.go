package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/extract"
	"github.com/joseph-ayodele/candidate-dossiers/internal/roster"
)

// Documents is the raw text of one candidate, by source kind. Missing
// sources are empty strings.
type Documents map[constants.SourceKind]string

// TextStage gathers every source text of a candidate: the narrative from
// the biography store, the rest from the document source.
type TextStage struct {
	Source extract.TextSource
	Bios   *roster.BiographyStore
	Logger *slog.Logger
}

func NewTextStage(src extract.TextSource, bios *roster.BiographyStore, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Source: src, Bios: bios, Logger: logger}
}

// Run returns the candidate's documents and biography entry.
func (s *TextStage) Run(ctx context.Context, c roster.Candidate) (Documents, roster.Biography) {
	docs := Documents{}
	bio, ok := s.Bios.Get(c.Slug)
	if !ok {
		s.Logger.Info("pipeline.text.no_biography", "slug", c.Slug)
	}
	docs[constants.SourceBiography] = bio.Text

	for _, kind := range constants.DocumentKinds {
		if s.Source == nil {
			docs[kind] = ""
			continue
		}
		docs[kind] = s.Source.Text(ctx, c.Slug, kind)
	}
	return docs, bio
}
