package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/fields"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
)

var defaultPrecedence = []constants.SourceKind{constants.SourceBiography, constants.SourceCV}

func found(field, text string, src constants.SourceKind) fields.Value {
	return fields.Value{Field: field, Text: text, State: fields.Found, Source: src}
}

func TestBiographyOutranksCV(t *testing.T) {
	// CV listed first on purpose: order of arrival must not matter.
	got := Merge("lugar_nacimiento", []fields.Value{
		found("lugar_nacimiento", "Miraflores", constants.SourceCV),
		found("lugar_nacimiento", "Lima", constants.SourceBiography),
	}, defaultPrecedence)

	assert.Equal(t, fields.Found, got.State)
	assert.Equal(t, "Lima", got.Text)
	assert.Equal(t, constants.SourceBiography, got.Source)
}

func TestFallsBackToCV(t *testing.T) {
	got := Merge("lugar_nacimiento", []fields.Value{
		fields.NotFoundValue("lugar_nacimiento"),
		found("lugar_nacimiento", "Trujillo", constants.SourceCV),
	}, defaultPrecedence)

	assert.Equal(t, "Trujillo", got.Text)
	assert.Equal(t, string(constants.SourceCV), got.Provenance())
}

func TestAllNotFoundHasNoProvenance(t *testing.T) {
	got := Merge("nacimiento_distrito", []fields.Value{
		{Field: "nacimiento_distrito", State: fields.NotFound, Source: constants.SourceBiography},
		fields.NotFoundValue("nacimiento_distrito"),
	}, defaultPrecedence)

	assert.Equal(t, fields.NotFound, got.State)
	assert.Empty(t, got.Source)
	assert.Equal(t, fields.NoProvenance, got.Provenance())

	none := Merge("nacimiento_distrito", nil, defaultPrecedence)
	assert.Equal(t, fields.NotFound, none.State)
}

func TestNotApplicableWhenNothingFound(t *testing.T) {
	na := fields.Value{Field: "estudio1_universidad", State: fields.NotApplicable, Source: constants.SourceCV}
	got := Merge("estudio1_universidad", []fields.Value{fields.NotFoundValue("estudio1_universidad"), na}, defaultPrecedence)
	assert.Equal(t, fields.NotApplicable, got.State)

	// A real value still wins over not-applicable.
	got = Merge("estudio1_universidad", []fields.Value{na, found("estudio1_universidad", "UNI", constants.SourceBiography)}, defaultPrecedence)
	assert.Equal(t, "UNI", got.Text)
}

func TestAllFailed(t *testing.T) {
	got := Merge("x", []fields.Value{fields.FailedValue("x"), fields.FailedValue("x")}, defaultPrecedence)
	assert.Equal(t, fields.Failed, got.State)

	got = Merge("x", []fields.Value{fields.FailedValue("x"), fields.NotFoundValue("x")}, defaultPrecedence)
	assert.Equal(t, fields.NotFound, got.State)
}

func TestOrderKeepsUnlistedSourcesLast(t *testing.T) {
	in := []fields.Value{
		found("f", "plan", constants.SourcePlan),
		found("f", "cv", constants.SourceCV),
		found("f", "summary", constants.SourcePlanSummary),
		found("f", "bio", constants.SourceBiography),
	}
	got := Order(in, defaultPrecedence)

	texts := make([]string, len(got))
	for i, v := range got {
		texts[i] = v.Text
	}
	assert.Equal(t, []string{"bio", "cv", "plan", "summary"}, texts)
	assert.Equal(t, "plan", in[0].Text, "input is not reordered")
}

func TestMergeAllResolvesComponentsIndependently(t *testing.T) {
	lib := rules.Default()
	got := MergeAll(lib, map[constants.SourceKind][]fields.Value{
		constants.SourceBiography: {
			found("nacimiento_distrito", "Talavera", constants.SourceBiography),
			fields.NotFoundValue("nacimiento_provincia"),
			fields.NotFoundValue("nacimiento_departamento"),
		},
		constants.SourceCV: {
			found("nacimiento_distrito", "Andahuaylas", constants.SourceCV),
			found("nacimiento_provincia", "Andahuaylas", constants.SourceCV),
			fields.NotFoundValue("nacimiento_departamento"),
		},
	})

	a := assert.New(t)
	a.Len(got, len(lib.Fields()))

	byName := map[string]fields.Value{}
	for i, v := range got {
		a.Equal(lib.Fields()[i], v.Field)
		byName[v.Field] = v
	}
	a.Equal("Talavera", byName["nacimiento_distrito"].Text)
	a.Equal(constants.SourceBiography, byName["nacimiento_distrito"].Source)
	a.Equal("Andahuaylas", byName["nacimiento_provincia"].Text)
	a.Equal(constants.SourceCV, byName["nacimiento_provincia"].Source)
	a.Equal(fields.NotFound, byName["nacimiento_departamento"].State)
	a.Equal(fields.NotFound, byName["domicilio_distrito"].State)
}
