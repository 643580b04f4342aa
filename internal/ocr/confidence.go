package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reYear     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	reCVLabels = regexp.MustCompile(`(?i)\b(dni|nacimiento|universidad|experiencia|domicilio|estudios)\b`)
	rePlanHint = regexp.MustCompile(`(?i)\b(propuesta|objetivo|meta|gobierno|estrategia)\b`)
)

func hasYearPattern(s string) bool { return reYear.MatchString(s) }
func hasCVLabels(s string) bool { return reCVLabels.MatchString(s) }
func hasPlanVocabulary(s string) bool { return rePlanHint.MatchString(s) }

// textQuality is a naive 0..1 readability score of decoded text: the share of
// letters among non-space runes, boosted by dossier-like vocabulary.
func textQuality(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	var letters, visible int
	for _, r := range txt {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	score := float32(0.6) * float32(letters) / float32(visible)
	if hasYearPattern(txt) {
		score += 0.1
	}
	if hasCVLabels(txt) {
		score += 0.15
	}
	if hasPlanVocabulary(txt) {
		score += 0.15
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
