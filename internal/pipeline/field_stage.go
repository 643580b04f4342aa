package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/fields"
	"github.com/joseph-ayodele/candidate-dossiers/internal/merge"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
)

// FieldStage extracts every field from every source that defines rules for
// it, then merges the per-source results by precedence.
type FieldStage struct {
	Lib       *rules.Library
	Extractor *fields.Extractor
	Logger    *slog.Logger
}

func NewFieldStage(lib *rules.Library, logger *slog.Logger) *FieldStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldStage{Lib: lib, Extractor: fields.NewExtractor(lib, logger), Logger: logger}
}

func (s *FieldStage) Run(docs Documents) []fields.Value {
	bySource := make(map[constants.SourceKind][]fields.Value, len(docs))
	for _, kind := range s.Lib.Sources() {
		bySource[kind] = s.Extractor.ExtractAll(kind, docs[kind])
	}
	return merge.MergeAll(s.Lib, bySource)
}
