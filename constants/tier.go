package constants

import "strings"

// EducationTier is the highest academic level detected for a candidate.
type EducationTier string

const (
	TierDoctorado    EducationTier = "doctorado"
	TierMaestria     EducationTier = "maestria"
	TierTitulo       EducationTier = "titulo"
	TierLicenciatura EducationTier = "licenciatura"
	TierBachiller    EducationTier = "bachiller"
	TierSecundaria   EducationTier = "secundaria"
)

// TierKeywords lists each tier with its lowercase keywords, highest first.
// Detection returns the first tier with any keyword present.
var TierKeywords = []struct {
	Tier     EducationTier
	Keywords []string
}{
	{TierDoctorado, []string{"doctorado", "phd", "doctor"}},
	{TierMaestria, []string{"maestría", "maestria", "master", "magíster", "magister"}},
	{TierTitulo, []string{"título", "titulo", "licenciatura", "licenciado"}},
	{TierBachiller, []string{"bachiller", "bachillerato"}},
	{TierSecundaria, []string{"secundaria", "secundario"}},
}

// DefaultTier is used when no keyword is present.
const DefaultTier = TierSecundaria

// Canonicalize maps free text to a known tier.
func Canonicalize(input string) (EducationTier, bool) {
	if input == "" {
		return DefaultTier, false
	}
	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]EducationTier{
		"doctor":       TierDoctorado,
		"phd":          TierDoctorado,
		"maestría":     TierMaestria,
		"magister":     TierMaestria,
		"magíster":     TierMaestria,
		"master":       TierMaestria,
		"título":       TierTitulo,
		"licenciado":   TierLicenciatura,
		"bachillerato": TierBachiller,
	}
	if t, ok := synonyms[normalized]; ok {
		return t, true
	}
	for _, t := range []EducationTier{TierDoctorado, TierMaestria, TierTitulo, TierLicenciatura, TierBachiller, TierSecundaria} {
		if normalized == string(t) {
			return t, true
		}
	}
	return DefaultTier, false
}
