// Package rules holds the declarative field pattern library: ordered rule
// families per (field, source), the document sections they are scoped to,
// and the structural patterns used by the feature aggregator.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
)

//go:embed rules.yaml
var defaultRules []byte

// Section narrows the text a field is searched in.
type Section struct {
	Name    string
	Within  string
	Headers []*regexp.Regexp
	End     []*regexp.Regexp
	Window  int // runes from the header start, 0 = rest of the parent
	Strict  bool
}

// Policy is the cleaning and validation applied to a raw capture.
type Policy struct {
	Truncate      *regexp.Regexp // cut the capture at the first keyword
	MinLength     int
	MaxLength     int
	Banned        []string
	RejectYears   bool
	RejectNumeric bool
	TitleCase     bool
}

// Binary maps a free-form yes/no answer onto canonical values.
type Binary struct {
	Negative         []string
	Affirmative      []string
	NegativeValue    string
	AffirmativeValue string
}

type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Group   int
	Policy  Policy
}

// FieldDef is the rule family of one field for one source kind.
type FieldDef struct {
	Field   string
	Source  constants.SourceKind
	Section string
	Rules   []Rule
	Binary  *Binary
	Gates   []string // fields set to not-applicable on a negative answer
}

// IsGate reports whether a negative answer disables other fields.
func (d *FieldDef) IsGate() bool { return d.Binary != nil && len(d.Gates) > 0 }

// Library is the compiled rule set. It is read-only after Load and safe for
// concurrent use.
type Library struct {
	Version    int
	precedence []constants.SourceKind
	overrides  map[string][]constants.SourceKind
	sections   map[string]*Section
	defs       []*FieldDef
	fields     []string
	Features   *FeatureRules
}

// Load reads rule tables from path, or the embedded defaults when path is empty.
func Load(path string) (*Library, error) {
	if path == "" {
		return Parse(defaultRules)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("RULES_ERROR", "read rules file", err)
	}
	lib, err := Parse(b)
	if err != nil {
		return nil, common.NewAppError("RULES_ERROR", path, err)
	}
	return lib, nil
}

// Default returns the embedded rule tables.
func Default() *Library {
	lib, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return lib
}

// Fields returns every field name in declaration order.
func (l *Library) Fields() []string {
	return append([]string(nil), l.fields...)
}

// DefsFor returns the field definitions for one source, in declaration order.
func (l *Library) DefsFor(kind constants.SourceKind) []*FieldDef {
	var out []*FieldDef
	for _, d := range l.defs {
		if d.Source == kind {
			out = append(out, d)
		}
	}
	return out
}

// Def looks up the definition of field for kind.
func (l *Library) Def(field string, kind constants.SourceKind) (*FieldDef, bool) {
	for _, d := range l.defs {
		if d.Field == field && d.Source == kind {
			return d, true
		}
	}
	return nil, false
}

func (l *Library) Section(name string) (*Section, bool) {
	s, ok := l.sections[name]
	return s, ok
}

// Precedence returns the source order used to merge field.
func (l *Library) Precedence(field string) []constants.SourceKind {
	if p, ok := l.overrides[field]; ok {
		return p
	}
	return l.precedence
}

// Sources returns the kinds that have at least one field definition.
func (l *Library) Sources() []constants.SourceKind {
	seen := map[constants.SourceKind]bool{}
	var out []constants.SourceKind
	for _, d := range l.defs {
		if !seen[d.Source] {
			seen[d.Source] = true
			out = append(out, d.Source)
		}
	}
	return out
}

// keywordPattern matches any keyword as a whole word. RE2's \b is ASCII only,
// so letter boundaries are spelled out to handle accented keywords.
func keywordPattern(keywords []string) (*regexp.Regexp, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	alts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		parts := strings.Fields(k)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		alts = append(alts, strings.Join(parts, `\s+`))
	}
	return regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(alts, "|") + `)(?:[^\p{L}\p{N}]|$)`)
}

func compileCI(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

func compileAll(patterns []string, ci bool) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		var re *regexp.Regexp
		var err error
		if ci {
			re, err = compileCI(p)
		} else {
			re, err = regexp.Compile(p)
		}
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Parse compiles YAML rule tables.
func Parse(data []byte) (*Library, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode rules: %v", common.ErrInvalidInput, err)
	}
	if err := common.ValidateStruct(&doc); err != nil {
		return nil, err
	}

	lib := &Library{
		Version:   doc.Version,
		overrides: map[string][]constants.SourceKind{},
		sections:  map[string]*Section{},
	}
	var err error
	if lib.precedence, err = parseKinds(doc.Precedence); err != nil {
		return nil, err
	}

	for _, s := range doc.Sections {
		if _, dup := lib.sections[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate section %q", common.ErrInvalidInput, s.Name)
		}
		sec := &Section{Name: s.Name, Within: s.Within, Window: s.Window, Strict: s.Strict}
		if sec.Headers, err = compileAll(s.Headers, true); err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Name, err)
		}
		if sec.End, err = compileAll(s.End, true); err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Name, err)
		}
		lib.sections[s.Name] = sec
	}
	for _, sec := range lib.sections {
		if err := checkNesting(lib.sections, sec); err != nil {
			return nil, err
		}
	}

	seenField := map[string]bool{}
	for _, f := range doc.Fields {
		def, err := compileField(f, lib.sections)
		if err != nil {
			return nil, fmt.Errorf("field %s/%s: %w", f.Field, f.Source, err)
		}
		if _, dup := lib.Def(def.Field, def.Source); dup {
			return nil, fmt.Errorf("%w: duplicate field %s for %s", common.ErrInvalidInput, def.Field, def.Source)
		}
		lib.defs = append(lib.defs, def)
		if !seenField[def.Field] {
			seenField[def.Field] = true
			lib.fields = append(lib.fields, def.Field)
		}
		if len(f.Precedence) > 0 {
			p, err := parseKinds(f.Precedence)
			if err != nil {
				return nil, err
			}
			lib.overrides[def.Field] = p
		}
	}
	for _, d := range lib.defs {
		for _, g := range d.Gates {
			if _, ok := lib.Def(g, d.Source); !ok {
				return nil, fmt.Errorf("%w: gate %s names unknown field %s for %s", common.ErrInvalidInput, d.Field, g, d.Source)
			}
		}
	}

	if lib.Features, err = compileFeatures(doc.Features); err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	return lib, nil
}

func checkNesting(all map[string]*Section, sec *Section) error {
	seen := map[string]bool{sec.Name: true}
	for cur := sec; cur.Within != ""; {
		parent, ok := all[cur.Within]
		if !ok {
			return fmt.Errorf("%w: section %s is within unknown section %s", common.ErrInvalidInput, cur.Name, cur.Within)
		}
		if seen[parent.Name] {
			return fmt.Errorf("%w: section %s nests in a cycle", common.ErrInvalidInput, sec.Name)
		}
		seen[parent.Name] = true
		cur = parent
	}
	return nil
}

func parseKinds(in []string) ([]constants.SourceKind, error) {
	out := make([]constants.SourceKind, 0, len(in))
	for _, s := range in {
		k, ok := constants.ParseSourceKind(s)
		if !ok {
			return nil, fmt.Errorf("%w: unknown source %q", common.ErrInvalidInput, s)
		}
		out = append(out, k)
	}
	return out, nil
}

func compileField(f fieldDoc, sections map[string]*Section) (*FieldDef, error) {
	kind, ok := constants.ParseSourceKind(f.Source)
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %q", common.ErrInvalidInput, f.Source)
	}
	if f.Section != "" {
		if _, ok := sections[f.Section]; !ok {
			return nil, fmt.Errorf("%w: unknown section %q", common.ErrInvalidInput, f.Section)
		}
	}
	def := &FieldDef{Field: f.Field, Source: kind, Section: f.Section, Gates: f.Gates}
	if f.Binary != nil {
		def.Binary = &Binary{
			Negative:         lowerAll(f.Binary.Negative),
			Affirmative:      lowerAll(f.Binary.Affirmative),
			NegativeValue:    f.Binary.NegativeValue,
			AffirmativeValue: f.Binary.AffirmativeValue,
		}
	} else if len(f.Gates) > 0 {
		return nil, fmt.Errorf("%w: only binary fields can gate", common.ErrInvalidInput)
	}

	base, err := compilePolicy(f.Policy)
	if err != nil {
		return nil, err
	}
	for _, r := range f.Rules {
		re, err := compileCI(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		group := 1
		if r.Group != nil {
			group = *r.Group
		}
		if group > re.NumSubexp() {
			return nil, fmt.Errorf("%w: rule %s has no capture group %d", common.ErrInvalidInput, r.Name, group)
		}
		pol := base
		if r.Policy != nil {
			if pol, err = compilePolicy(*r.Policy); err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.Name, err)
			}
		}
		def.Rules = append(def.Rules, Rule{Name: r.Name, Pattern: re, Group: group, Policy: pol})
	}
	return def, nil
}

func compilePolicy(p policyDoc) (Policy, error) {
	trunc, err := keywordPattern(p.TruncateAt)
	if err != nil {
		return Policy{}, err
	}
	return Policy{
		Truncate:      trunc,
		MinLength:     p.MinLength,
		MaxLength:     p.MaxLength,
		Banned:        p.Banned,
		RejectYears:   p.RejectYears,
		RejectNumeric: p.RejectNumeric,
		TitleCase:     p.TitleCase,
	}, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
