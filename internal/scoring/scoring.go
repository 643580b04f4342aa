package scoring

import (
	"math"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
	"github.com/joseph-ayodele/candidate-dossiers/internal/features"
)

// Ceilings are the truncation points of the normalizer. A raw value at or
// above its ceiling scores 100.
type Ceilings struct {
	Propuestas    float64
	Experiencia   float64
	Gestion       float64
	ImpactoSocial float64
}

// DefaultCeilings returns the stock ceilings.
func DefaultCeilings() Ceilings {
	return Ceilings{Propuestas: 50, Experiencia: 30, Gestion: 30, ImpactoSocial: 25}
}

// CeilingsFromConfig maps the scoring section of the process config.
func CeilingsFromConfig(cfg common.ScoringConfig) Ceilings {
	return Ceilings{
		Propuestas:    cfg.MaxPropuestas,
		Experiencia:   cfg.MaxExperiencia,
		Gestion:       cfg.MaxGestion,
		ImpactoSocial: cfg.MaxImpactoSocial,
	}
}

// Set holds the five normalized scores, each in [0,100] with two decimals.
type Set struct {
	Propuestas    float64 `json:"propuestas"`
	Experiencia   float64 `json:"experiencia"`
	Gestion       float64 `json:"gestion"`
	Formacion     float64 `json:"formacion"`
	ImpactoSocial float64 `json:"impacto_social"`
}

var formacion = map[constants.EducationTier]float64{
	constants.TierSecundaria:   30,
	constants.TierBachiller:    50,
	constants.TierTitulo:       70,
	constants.TierLicenciatura: 70,
	constants.TierMaestria:     85,
	constants.TierDoctorado:    100,
}

// Formacion scores an education tier. Unknown tiers score like secondary.
func Formacion(tier constants.EducationTier) float64 {
	t, _ := constants.Canonicalize(string(tier))
	return formacion[t]
}

// NormalizeTruncated clamps v to [0,max] and maps it linearly onto [0,100],
// rounded to two decimals. A non-positive ceiling yields 0.
func NormalizeTruncated(v, max float64) float64 {
	if max <= 0 || math.IsNaN(v) {
		return 0
	}
	v = math.Min(math.Max(v, 0), max)
	return round2(v / max * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Normalizer turns raw features into scores.
type Normalizer struct {
	ceil Ceilings
}

func NewNormalizer(c Ceilings) *Normalizer {
	return &Normalizer{ceil: c}
}

// Score computes the five scores of one feature set. Gestión blends
// activities with half the proposal count.
func (n *Normalizer) Score(f features.Set) Set {
	gestion := float64(f.ActividadesCount) + 0.5*float64(f.PropuestasCount)
	return Set{
		Propuestas:    NormalizeTruncated(float64(f.PropuestasCount), n.ceil.Propuestas),
		Experiencia:   NormalizeTruncated(float64(f.AniosExperiencia), n.ceil.Experiencia),
		Gestion:       NormalizeTruncated(gestion, n.ceil.Gestion),
		Formacion:     Formacion(f.GradoMax),
		ImpactoSocial: NormalizeTruncated(float64(f.MetasCuantificadasCount), n.ceil.ImpactoSocial),
	}
}
