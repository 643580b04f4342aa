package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/fields"
	"github.com/joseph-ayodele/candidate-dossiers/internal/roster"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
	"github.com/joseph-ayodele/candidate-dossiers/internal/scoring"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const cv = `DATOS PERSONALES
LUGAR DE NACIMIENTO
PAÍS: PERÚ DEPARTAMENTO: LIMA PROVINCIA: LIMA DISTRITO: MIRAFLORES
LUGAR DE DOMICILIO
DEPARTAMENTO: LIMA PROVINCIA: LIMA DISTRITO: SAN ISIDRO
EXPERIENCIA LABORAL
Gerente General 2010-2015
MAESTRÍA EN GESTIÓN PÚBLICA
`

const plan = `1. Mejorar la salud
2. Implementar 30 centros de salud
3. Reducir al 30% la anemia
`

// mapSource serves documents from memory and panics for slugs listed in
// explode.
type mapSource struct {
	docs    map[string]map[constants.SourceKind]string
	explode map[string]bool
}

func (m mapSource) Text(_ context.Context, slug string, kind constants.SourceKind) string {
	if m.explode[slug] {
		panic("corrupt document for " + slug)
	}
	return m.docs[slug][kind]
}

var candidates = []roster.Candidate{
	{Slug: "ana-quispe", Name: "Ana Quispe"},
	{Slug: "bruno-diaz", Name: "Bruno Díaz"},
	{Slug: "carla-rojas", Name: "Carla Rojas"},
	{Slug: "diego-soto", Name: "Diego Soto"},
	{Slug: "elena-vega", Name: "Elena Vega"},
}

func newTestRunner(t *testing.T, src mapSource) *Runner {
	t.Helper()
	bios, err := roster.ParseBiographies([]byte(`{
  "ana-quispe": {"name": "Ana Quispe", "party": "Partido Uno", "birthDate": "1970-03-01", "biografia": "Nació en la ciudad de Lima."},
  "carla-rojas": {"name": "Carla Rojas", "biografia": "Abogada con amplia trayectoria. Es doctora en Derecho."}
}`))
	require.NoError(t, err)
	return New(Deps{
		Rules:     rules.Default(),
		Source:    src,
		Bios:      bios,
		Ceilings:  scoring.DefaultCeilings(),
		Reference: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Workers:   3,
	})
}

func defaultSource() mapSource {
	return mapSource{docs: map[string]map[constants.SourceKind]string{
		"ana-quispe": {constants.SourceCV: cv, constants.SourcePlan: plan},
		"diego-soto": {constants.SourcePlanSummary: "1. Propuesta solo en el resumen"},
	}}
}

func TestRunKeepsRosterOrderAndMergesSources(t *testing.T) {
	rep := newTestRunner(t, defaultSource()).Run(context.Background(), candidates)

	require.Len(t, rep.Records, len(candidates))
	assert.Zero(t, rep.Failed)
	for i, rec := range rep.Records {
		assert.Equal(t, candidates[i].Slug, rec.Slug)
		assert.Equal(t, i, rec.Position)
		assert.Equal(t, constants.TaskSucceeded, rec.Status)
		assert.Len(t, rec.Fields, len(rules.Default().Fields()))
	}

	ana := rep.Records[0]
	assert.Equal(t, "Partido Uno", ana.Party)
	assert.Equal(t, 54, ana.Age)

	v, ok := ana.Field("lugar_nacimiento")
	require.True(t, ok)
	assert.Equal(t, "Lima", v.Text)
	assert.Equal(t, constants.SourceBiography, v.Source)

	v, _ = ana.Field("nacimiento_distrito")
	assert.Equal(t, "Miraflores", v.Text)
	assert.Equal(t, constants.SourceCV, v.Source)

	v, _ = ana.Field("domicilio_distrito")
	assert.Equal(t, "San Isidro", v.Text)

	v, _ = ana.Field("tiene_estudios")
	assert.Equal(t, fields.NotFound, v.State)
	assert.Equal(t, fields.NoProvenance, v.Provenance())

	assert.Equal(t, 3, ana.Features.PropuestasCount)
	assert.Equal(t, 1, ana.Features.ActividadesCount)
	assert.Equal(t, 1, ana.Features.MetasCuantificadasCount)
	assert.Equal(t, 6, ana.Features.AniosExperiencia)
	assert.Equal(t, constants.TierMaestria, ana.Features.GradoMax)
	assert.Equal(t, scoring.Set{Propuestas: 6, Experiencia: 20, Gestion: 8.33, Formacion: 85, ImpactoSocial: 4}, ana.Scores)

	bruno := rep.Records[1]
	assert.Equal(t, -1, bruno.Age)
	for _, v := range bruno.Fields {
		assert.Equal(t, fields.NotFound, v.State, v.Field)
	}
	assert.Equal(t, scoring.Set{Formacion: 30}, bruno.Scores)

	carla := rep.Records[2]
	assert.Equal(t, constants.TierDoctorado, carla.Features.GradoMax)

	diego := rep.Records[3]
	assert.Zero(t, diego.Features.PropuestasCount, "summary alone does not count")
}

func TestRunIsIdempotent(t *testing.T) {
	r := newTestRunner(t, defaultSource())
	first := r.Run(context.Background(), candidates)
	second := r.Run(context.Background(), candidates)

	assert.NotEqual(t, first.RunID, second.RunID)
	if diff := cmp.Diff(first.Records, second.Records); diff != "" {
		t.Errorf("records differ between runs (-first +second):\n%s", diff)
	}
}

func TestRunEmitsFailedRecord(t *testing.T) {
	src := defaultSource()
	src.explode = map[string]bool{"carla-rojas": true}
	rep := newTestRunner(t, src).Run(context.Background(), candidates)

	require.Len(t, rep.Records, len(candidates))
	assert.Equal(t, 1, rep.Failed)

	failed := rep.Records[2]
	assert.Equal(t, "carla-rojas", failed.Slug)
	assert.Equal(t, "Carla Rojas", failed.Name)
	assert.Equal(t, constants.TaskFailed, failed.Status)
	assert.Contains(t, failed.Error, "candidate task failed")
	assert.Contains(t, failed.Error, "corrupt document")
	require.NotEmpty(t, failed.Fields)
	for _, v := range failed.Fields {
		assert.Equal(t, fields.FailedText, v.Display(), v.Field)
		assert.Equal(t, fields.FailedText, v.Provenance(), v.Field)
	}
	assert.Zero(t, failed.Scores)

	for i, rec := range rep.Records {
		if i == 2 {
			continue
		}
		assert.Equal(t, constants.TaskSucceeded, rec.Status, rec.Slug)
	}
}

func TestRunCanceledStillEmitsEveryRecord(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep := newTestRunner(t, defaultSource()).Run(ctx, candidates)

	require.Len(t, rep.Records, len(candidates))
	assert.Equal(t, len(candidates), rep.Failed)
	for i, rec := range rep.Records {
		assert.Equal(t, candidates[i].Slug, rec.Slug)
		assert.Equal(t, constants.TaskFailed, rec.Status)
		assert.True(t, strings.Contains(rec.Error, "context canceled"), rec.Error)
	}
}

func TestSummarize(t *testing.T) {
	recs := []Record{
		{Fields: []fields.Value{{Field: "a", State: fields.Found}, {Field: "b"}}},
		{Fields: []fields.Value{{Field: "a", State: fields.Failed}, {Field: "b", State: fields.NotApplicable}, {Field: "zzz", State: fields.Found}}},
	}
	got := Summarize(recs, []string{"a", "b"})
	assert.Equal(t, []FieldSummary{
		{Field: "a", Found: 1, Failed: 1},
		{Field: "b", NotFound: 1, NotApplicable: 1},
	}, got)
}
