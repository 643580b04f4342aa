// Package features computes raw countable features of a candidate from the
// document texts. Counts are structural: only list, label and paragraph
// markup is counted, never free keyword mentions.
package features

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
)

// Set holds the raw features of one candidate.
type Set struct {
	PropuestasCount         int                     `json:"propuestas_count"`
	MetasCuantificadasCount int                     `json:"metas_cuantificadas_count"`
	AniosExperiencia        int                     `json:"anios_experiencia"`
	ActividadesCount        int                     `json:"actividades_count"`
	GradoMax                constants.EducationTier `json:"grado_max"`
}

// Texts are the documents of one candidate. Any of them may be empty.
type Texts struct {
	Biography   string
	CV          string
	Plan        string
	PlanSummary string
}

type GoalKind string

const (
	GoalPercentage GoalKind = "porcentaje"
	GoalPeople     GoalKind = "unidad"
	GoalDeadline   GoalKind = "plazo"
)

// Goal is one deduplicated quantified claim.
type Goal struct {
	Kind   GoalKind
	Bucket int64
}

// Aggregator is stateless apart from its read-only pattern tables.
type Aggregator struct {
	rules   *rules.FeatureRules
	refYear int
}

// NewAggregator projects "N años de experiencia" phrases onto the year of
// reference.
func NewAggregator(fr *rules.FeatureRules, reference time.Time) *Aggregator {
	return &Aggregator{rules: fr, refYear: reference.Year()}
}

// Compute derives the feature set. Plan features are only computed when the
// plan text itself is present; the summary alone does not count.
func (a *Aggregator) Compute(t Texts) Set {
	var s Set
	if strings.TrimSpace(t.Plan) != "" {
		plan := t.Plan + "\n" + t.PlanSummary
		s.PropuestasCount = a.CountProposals(plan)
		s.ActividadesCount = a.CountActivities(plan)
		s.MetasCuantificadasCount = len(a.QuantifiedGoals(plan))
	}
	s.AniosExperiencia = a.ExperienceYears(t.CV)

	tierText := t.CV
	if strings.TrimSpace(tierText) == "" {
		tierText = t.Biography
	}
	s.GradoMax = DetectTier(tierText)
	return s
}

func (a *Aggregator) CountProposals(text string) int {
	return countAll(a.rules.Proposals, text)
}

func (a *Aggregator) CountActivities(text string) int {
	return countAll(a.rules.Activities, text)
}

func countAll(patterns []*regexp.Regexp, text string) int {
	if text == "" {
		return 0
	}
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

// QuantifiedGoals returns the set of (kind, bucket) claims in text.
// Percentages bucket to the nearest multiple of 5, people counts of 1000 or
// more to the nearest thousand, and deadlines must fall in the configured
// year window.
func (a *Aggregator) QuantifiedGoals(text string) map[Goal]struct{} {
	goals := map[Goal]struct{}{}
	if text == "" {
		return goals
	}
	for _, re := range a.rules.Percentages {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			p, err := strconv.Atoi(m[1])
			if err != nil || p > 100 {
				continue
			}
			goals[Goal{GoalPercentage, int64(roundTo(float64(p), 5))}] = struct{}{}
		}
	}
	for _, re := range a.rules.People {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, ok := parseCount(m[1], m[2])
			if !ok {
				continue
			}
			if n >= 1000 {
				n = roundTo(n, 1000)
			}
			goals[Goal{GoalPeople, int64(math.Round(n))}] = struct{}{}
		}
	}
	for _, re := range a.rules.Deadlines {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			y, err := strconv.Atoi(m[1])
			if err != nil || y < a.rules.DeadlineMin || y > a.rules.DeadlineMax {
				continue
			}
			goals[Goal{GoalDeadline, int64(y)}] = struct{}{}
		}
	}
	return goals
}

// SortedGoals lists goals in a stable order, for logs and debugging output.
func SortedGoals(goals map[Goal]struct{}) []Goal {
	out := make([]Goal, 0, len(goals))
	for g := range goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Bucket < out[j].Bucket
	})
	return out
}

var reGrouped = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

// parseCount reads "1.500", "2,5" or "300" with an optional mil/millones
// multiplier.
func parseCount(num, mult string) (float64, bool) {
	num = strings.TrimSpace(num)
	if num == "" {
		return 0, false
	}
	if reGrouped.MatchString(num) {
		num = strings.NewReplacer(".", "", ",", "").Replace(num)
	} else {
		num = strings.ReplaceAll(num, ",", ".")
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch m := strings.ToLower(mult); {
	case m == "mil":
		n *= 1_000
	case strings.HasPrefix(m, "mill"):
		n *= 1_000_000
	}
	return n, true
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

// ExperienceYears is the cardinality of the union of years covered by range
// mentions and by "N años de experiencia" phrases. Overlapping mentions are
// counted once.
func (a *Aggregator) ExperienceYears(text string) int {
	if text == "" {
		return 0
	}
	years := map[int]struct{}{}
	fr := a.rules
	for _, re := range fr.Ranges {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			start, err1 := strconv.Atoi(m[1])
			end, err2 := strconv.Atoi(m[2])
			if err1 != nil || err2 != nil {
				continue
			}
			if start < fr.YearMin || start > fr.YearMax || end < fr.YearMin || end > fr.YearMax {
				continue
			}
			if end < start || end-start > fr.MaxSpan {
				continue
			}
			for y := start; y <= end; y++ {
				years[y] = struct{}{}
			}
		}
	}
	for _, re := range fr.Durations {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 || n > fr.MaxDuration {
				continue
			}
			// Assumes the stated experience ends at the reference year.
			for y := a.refYear - n + 1; y <= a.refYear; y++ {
				years[y] = struct{}{}
			}
		}
	}
	return len(years)
}

// DetectTier returns the highest education tier with a keyword in text.
func DetectTier(text string) constants.EducationTier {
	if text == "" {
		return constants.DefaultTier
	}
	lower := strings.ToLower(text)
	for _, t := range constants.TierKeywords {
		for _, k := range t.Keywords {
			if strings.Contains(lower, k) {
				return t.Tier
			}
		}
	}
	return constants.DefaultTier
}
