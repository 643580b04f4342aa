// Package fields applies the rule families of the pattern library to text.
package fields

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
)

var reBareYear = regexp.MustCompile(`\b\d{4}\b`)

// Extractor is the single parametrized field extractor. It holds no mutable
// state and may be shared between goroutines.
type Extractor struct {
	lib    *rules.Library
	logger *slog.Logger
}

func NewExtractor(lib *rules.Library, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{lib: lib, logger: logger}
}

// ExtractAll evaluates every field defined for kind, in declaration order.
// Gate fields are resolved first; a negative gate answer marks its
// dependents not applicable without evaluating their rules.
func (e *Extractor) ExtractAll(kind constants.SourceKind, text string) []Value {
	defs := e.lib.DefsFor(kind)
	text = norm.NFKC.String(text)

	gated := map[string]bool{}
	resolved := make(map[string]Value, len(defs))
	for _, d := range defs {
		if !d.IsGate() {
			continue
		}
		v := e.extract(d, text)
		resolved[d.Field] = v
		if v.State == Found && v.Text == d.Binary.NegativeValue {
			for _, dep := range d.Gates {
				gated[dep] = true
			}
		}
	}

	out := make([]Value, 0, len(defs))
	for _, d := range defs {
		v, ok := resolved[d.Field]
		switch {
		case ok:
		case gated[d.Field]:
			v = Value{Field: d.Field, State: NotApplicable, Source: kind}
		default:
			v = e.extract(d, text)
		}
		out = append(out, v)
	}
	return out
}

// Extract applies one field definition to text.
func (e *Extractor) Extract(def *rules.FieldDef, text string) Value {
	return e.extract(def, norm.NFKC.String(text))
}

func (e *Extractor) extract(def *rules.FieldDef, text string) Value {
	if strings.TrimSpace(text) == "" {
		return NotFoundValue(def.Field)
	}
	span, ok := e.scope(def.Section, text)
	if !ok {
		return NotFoundValue(def.Field)
	}
	for _, r := range def.Rules {
		m := r.Pattern.FindStringSubmatch(span)
		if m == nil {
			continue
		}
		var val string
		if def.Binary != nil {
			val, ok = classify(m[r.Group], def.Binary)
		} else {
			val, ok = clean(m[r.Group], r.Policy)
		}
		if !ok {
			e.logger.Debug("capture rejected", "field", def.Field, "source", def.Source, "rule", r.Name)
			continue
		}
		return Value{Field: def.Field, Text: val, State: Found, Source: def.Source, Rule: r.Name}
	}
	return NotFoundValue(def.Field)
}

// scope narrows text to the named section. Without a header the parent text
// is searched, unless the section is strict.
func (e *Extractor) scope(name, text string) (string, bool) {
	if name == "" {
		return text, true
	}
	sec, ok := e.lib.Section(name)
	if !ok {
		return "", false
	}
	parent := text
	if sec.Within != "" {
		if parent, ok = e.scope(sec.Within, text); !ok {
			return "", false
		}
	}

	var loc []int
	for _, h := range sec.Headers {
		if loc = h.FindStringIndex(parent); loc != nil {
			break
		}
	}
	if loc == nil {
		if sec.Strict {
			return "", false
		}
		return parent, true
	}

	rest := parent[loc[0]:]
	headerLen := loc[1] - loc[0]
	end := -1
	for _, re := range sec.End {
		if m := re.FindStringIndex(rest[headerLen:]); m != nil && (end < 0 || headerLen+m[0] < end) {
			end = headerLen + m[0]
		}
	}
	if end >= 0 {
		return rest[:end], true
	}
	return runePrefix(rest, sec.Window), true
}

// runePrefix returns the first n characters of s, or s when n <= 0.
func runePrefix(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// clean applies the capture cleaning and validation policy.
func clean(raw string, p rules.Policy) (string, bool) {
	v := strings.Join(strings.Fields(raw), " ")
	if p.Truncate != nil {
		if loc := p.Truncate.FindStringSubmatchIndex(v); loc != nil {
			v = v[:loc[2]]
		}
	}
	v = strings.TrimSpace(strings.Trim(strings.TrimSpace(v), ".,;:"))

	n := utf8.RuneCountInString(v)
	if n == 0 || n < p.MinLength || (p.MaxLength > 0 && n > p.MaxLength) {
		return "", false
	}
	for _, b := range p.Banned {
		if strings.EqualFold(v, b) {
			return "", false
		}
	}
	if p.RejectYears && reBareYear.MatchString(v) {
		return "", false
	}
	if p.RejectNumeric && isDigits(v) {
		return "", false
	}
	if p.TitleCase {
		v = cases.Title(language.Spanish).String(strings.ToLower(v))
	}
	return v, true
}

// classify maps a yes/no answer to its canonical value. Negative tokens are
// checked first.
func classify(raw string, b *rules.Binary) (string, bool) {
	words := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if containsAny(words, b.Negative) {
		return b.NegativeValue, true
	}
	if containsAny(words, b.Affirmative) {
		return b.AffirmativeValue, true
	}
	return "", false
}

func containsAny(words, tokens []string) bool {
	for _, w := range words {
		for _, t := range tokens {
			if w == t {
				return true
			}
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
