package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceKind(t *testing.T) {
	tests := map[string]SourceKind{
		"hoja_vida":       SourceCV,
		"hojas-vida":      SourceCV,
		" CV ":            SourceCV,
		"planes-gobierno": SourcePlan,
		"resumen_plan":    SourcePlanSummary,
		"summary":         SourcePlanSummary,
		"biografia":       SourceBiography,
		"bio":             SourceBiography,
	}
	for in, want := range tests {
		got, ok := ParseSourceKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseSourceKind("fotos")
	assert.False(t, ok)
}

func TestDocumentDir(t *testing.T) {
	assert.Equal(t, "hojas-vida", DocumentDir(SourceCV))
	assert.Empty(t, DocumentDir(SourceBiography))
	for _, k := range DocumentKinds {
		assert.NotEmpty(t, DocumentDir(k), k)
	}
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".PDF"))
	assert.Equal(t, TEXT, MapExtToFormat("txt"))
	assert.Empty(t, MapExtToFormat("docx"))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, TaskPending.CanTransition(TaskRunning))
	assert.True(t, TaskPending.CanTransition(TaskFailed))
	assert.False(t, TaskPending.CanTransition(TaskSucceeded))
	assert.True(t, TaskRunning.CanTransition(TaskSucceeded))
	assert.True(t, TaskRunning.CanTransition(TaskFailed))
	assert.False(t, TaskSucceeded.CanTransition(TaskFailed))
	assert.False(t, TaskFailed.CanTransition(TaskRunning))
	assert.True(t, TaskFailed.Terminal())
	assert.False(t, TaskRunning.Terminal())
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want EducationTier
		ok   bool
	}{
		{"maestria", TierMaestria, true},
		{"Magíster", TierMaestria, true},
		{"PhD", TierDoctorado, true},
		{"licenciado", TierLicenciatura, true},
		{"bachiller", TierBachiller, true},
		{"", TierSecundaria, false},
		{"primaria", TierSecundaria, false},
	}
	for _, tt := range tests {
		got, ok := Canonicalize(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
