// Package merge resolves one authoritative value per field from the values
// extracted out of several sources.
package merge

import (
	"sort"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/fields"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
)

// Merge picks the first Found value in precedence order, then the first
// NotApplicable one. Otherwise the field is NotFound with no provenance.
// Values from sources missing in precedence rank after the listed ones, in
// input order.
func Merge(field string, results []fields.Value, precedence []constants.SourceKind) fields.Value {
	ordered := Order(results, precedence)

	failed := 0
	for _, v := range ordered {
		if v.State == fields.Found {
			return withField(v, field)
		}
		if v.State == fields.Failed {
			failed++
		}
	}
	for _, v := range ordered {
		if v.State == fields.NotApplicable {
			return withField(v, field)
		}
	}
	if failed > 0 && failed == len(ordered) {
		return fields.FailedValue(field)
	}
	return fields.NotFoundValue(field)
}

// Order sorts a copy of results by source precedence. The sort is stable.
func Order(results []fields.Value, precedence []constants.SourceKind) []fields.Value {
	rank := make(map[constants.SourceKind]int, len(precedence))
	for i, k := range precedence {
		if _, seen := rank[k]; !seen {
			rank[k] = i
		}
	}
	rankOf := func(v fields.Value) int {
		if r, ok := rank[v.Source]; ok {
			return r
		}
		return len(precedence)
	}
	out := append([]fields.Value(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i]) < rankOf(out[j])
	})
	return out
}

func withField(v fields.Value, field string) fields.Value {
	v.Field = field
	return v
}

// MergeAll merges every field of the library independently, so the
// components of a place resolve on their own. The output follows the
// library's field order.
func MergeAll(lib *rules.Library, bySource map[constants.SourceKind][]fields.Value) []fields.Value {
	perField := map[string][]fields.Value{}
	for _, kind := range sortedKinds(bySource) {
		for _, v := range bySource[kind] {
			if v.Source == "" && v.State != fields.Found {
				// sentinels carry no source; keep which source produced them
				v.Source = kind
			}
			perField[v.Field] = append(perField[v.Field], v)
		}
	}

	names := lib.Fields()
	out := make([]fields.Value, 0, len(names))
	for _, name := range names {
		out = append(out, Merge(name, perField[name], lib.Precedence(name)))
	}
	return out
}

func sortedKinds(m map[constants.SourceKind][]fields.Value) []constants.SourceKind {
	out := make([]constants.SourceKind, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
