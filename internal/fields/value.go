package fields

import (
	"github.com/joseph-ayodele/candidate-dossiers/constants"
)

// State tells a real value apart from the sentinels.
type State int

const (
	NotFound State = iota
	Found
	NotApplicable
	Failed
)

// Rendered sentinels.
const (
	NotFoundText      = "No se encontró"
	NotApplicableText = "No posee"
	FailedText        = "Error"
	NoProvenance      = "no_encontrado"
)

func (s State) String() string {
	switch s {
	case Found:
		return "found"
	case NotApplicable:
		return "not_applicable"
	case Failed:
		return "failed"
	default:
		return "not_found"
	}
}

// Value is one extracted field. Source is set only for Found and
// NotApplicable values.
type Value struct {
	Field  string
	Text   string
	State  State
	Source constants.SourceKind
	Rule   string
}

func NotFoundValue(field string) Value {
	return Value{Field: field, State: NotFound}
}

func FailedValue(field string) Value {
	return Value{Field: field, State: Failed}
}

// Display renders the value or its sentinel text.
func (v Value) Display() string {
	switch v.State {
	case Found:
		return v.Text
	case NotApplicable:
		return NotApplicableText
	case Failed:
		return FailedText
	default:
		return NotFoundText
	}
}

// Provenance renders the producing source kind.
func (v Value) Provenance() string {
	switch v.State {
	case Found, NotApplicable:
		return string(v.Source)
	case Failed:
		return FailedText
	default:
		return NoProvenance
	}
}
