package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
)

func TestDefaultLibrary(t *testing.T) {
	lib := Default()

	assert.Equal(t, []constants.SourceKind{constants.SourceBiography, constants.SourceCV}, lib.Precedence("lugar_nacimiento"))
	assert.Equal(t, "lugar_nacimiento", lib.Fields()[0])
	assert.Contains(t, lib.Fields(), "domicilio_distrito")
	assert.NotContains(t, lib.Fields(), "domicilio_pais")

	gate, ok := lib.Def("tiene_estudios", constants.SourceCV)
	require.True(t, ok)
	assert.True(t, gate.IsGate())
	assert.Len(t, gate.Gates, 8)

	for _, d := range lib.DefsFor(constants.SourceBiography) {
		assert.NotEmpty(t, d.Rules, d.Field)
	}
	assert.Equal(t, []constants.SourceKind{constants.SourceBiography, constants.SourceCV}, lib.Sources())

	require.NotNil(t, lib.Features)
	assert.NotEmpty(t, lib.Features.Proposals)
	assert.Equal(t, 2020, lib.Features.DeadlineMin)
	assert.Equal(t, 2040, lib.Features.DeadlineMax)
	assert.Equal(t, 50, lib.Features.MaxSpan)
}

func TestDefaultLibrarySections(t *testing.T) {
	lib := Default()

	sec, ok := lib.Section("estudio2")
	require.True(t, ok)
	assert.Equal(t, "estudios", sec.Within)
	assert.True(t, sec.Strict)

	sec, ok = lib.Section("nacimiento")
	require.True(t, ok)
	assert.Equal(t, 2000, sec.Window)
	assert.True(t, sec.Headers[0].MatchString("lugar de nacimiento"), "headers are case-insensitive")
}

func TestKeywordPatternIsWordBounded(t *testing.T) {
	re, err := keywordPattern([]string{"año", "información complementaria"})
	require.NoError(t, err)

	assert.False(t, re.MatchString("UNIVERSIDAD ESPAÑOLA"))
	assert.True(t, re.MatchString("UNIVERSIDAD DE LIMA AÑO 1990"))
	assert.True(t, re.MatchString("ABOGADO INFORMACIÓN   COMPLEMENTARIA"))

	none, err := keywordPattern(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParseRejectsBrokenTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "::: ["},
		{"missing fields", "version: 1\nprecedence: [biografia]\n"},
		{"unknown source", `
version: 1
precedence: [biografia]
fields:
  - field: x
    source: periodico
    rules: [{name: r, pattern: '(a)'}]
`},
		{"unknown section", `
version: 1
precedence: [biografia]
fields:
  - field: x
    source: biografia
    section: nowhere
    rules: [{name: r, pattern: '(a)'}]
`},
		{"bad regexp", `
version: 1
precedence: [biografia]
fields:
  - field: x
    source: biografia
    rules: [{name: r, pattern: '(a'}]
`},
		{"missing group", `
version: 1
precedence: [biografia]
fields:
  - field: x
    source: biografia
    rules: [{name: r, pattern: 'a'}]
`},
		{"gate on unknown field", `
version: 1
precedence: [hoja_vida]
fields:
  - field: x
    source: hoja_vida
    binary: {negative: [no], affirmative: [si], negative_value: No, affirmative_value: Si}
    gates: [y]
    rules: [{name: r, pattern: '(no|si)'}]
`},
		{"section cycle", `
version: 1
precedence: [hoja_vida]
sections:
  - {name: a, within: b, headers: ['a']}
  - {name: b, within: a, headers: ['b']}
fields:
  - field: x
    source: hoja_vida
    rules: [{name: r, pattern: '(a)'}]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestParseValidationErrorsAreTyped(t *testing.T) {
	_, err := Parse([]byte("version: 0\nprecedence: [biografia]\nfields: []\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestLoadFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
version: 2
precedence: [hoja_vida, biografia]
fields:
  - field: partido
    source: biografia
    precedence: [biografia]
    policy: {max_length: 40, title_case: true}
    rules:
      - name: lidera
        pattern: 'lidera\s+(?:el\s+)?([^,.]+)'
`), 0o600))

	lib, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 2, lib.Version)
	assert.Equal(t, []constants.SourceKind{constants.SourceBiography}, lib.Precedence("partido"))
	assert.Equal(t, []constants.SourceKind{constants.SourceCV, constants.SourceBiography}, lib.Precedence("otro"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "RULES_ERROR", appErr.Code)
}
