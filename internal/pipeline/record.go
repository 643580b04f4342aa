package pipeline

import (
	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/features"
	"github.com/joseph-ayodele/candidate-dossiers/internal/fields"
	"github.com/joseph-ayodele/candidate-dossiers/internal/scoring"
)

// Record is the complete output of one candidate. Every roster entry gets
// exactly one, in roster order, whether or not its work succeeded.
type Record struct {
	Position  int                  `json:"-"`
	Slug      string               `json:"slug"`
	Name      string               `json:"nombre"`
	Party     string               `json:"partido,omitempty"`
	BirthDate string               `json:"fecha_nacimiento,omitempty"`
	Age       int                  `json:"edad"`
	Status    constants.TaskStatus `json:"status"`
	Error     string               `json:"error,omitempty"`
	Fields    []fields.Value       `json:"-"`
	Features  features.Set         `json:"features"`
	Scores    scoring.Set          `json:"scores"`
}

// Field returns the merged value named field.
func (r Record) Field(name string) (fields.Value, bool) {
	for _, v := range r.Fields {
		if v.Field == name {
			return v, true
		}
	}
	return fields.Value{}, false
}

// failedRecord is emitted when a candidate's unit of work fails: every
// field is Failed, features and scores are zero.
func failedRecord(base Record, names []string, err error) Record {
	base.Status = constants.TaskFailed
	base.Error = err.Error()
	base.Fields = make([]fields.Value, 0, len(names))
	for _, n := range names {
		base.Fields = append(base.Fields, fields.FailedValue(n))
	}
	base.Features = features.Set{}
	base.Scores = scoring.Set{}
	return base
}
