package pipeline

import (
	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/features"
	"github.com/joseph-ayodele/candidate-dossiers/internal/scoring"
)

// ScoreStage computes raw features and their normalized scores.
type ScoreStage struct {
	Aggregator *features.Aggregator
	Normalizer *scoring.Normalizer
}

func NewScoreStage(agg *features.Aggregator, norm *scoring.Normalizer) *ScoreStage {
	return &ScoreStage{Aggregator: agg, Normalizer: norm}
}

func (s *ScoreStage) Run(docs Documents) (features.Set, scoring.Set) {
	f := s.Aggregator.Compute(features.Texts{
		Biography:   docs[constants.SourceBiography],
		CV:          docs[constants.SourceCV],
		Plan:        docs[constants.SourcePlan],
		PlanSummary: docs[constants.SourcePlanSummary],
	})
	return f, s.Normalizer.Score(f)
}
