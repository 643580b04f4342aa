package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
)

var ref2024 = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

func newTestAggregator() *Aggregator {
	return NewAggregator(rules.Default().Features, ref2024)
}

func TestExperienceYearUnion(t *testing.T) {
	a := newTestAggregator()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"overlapping ranges", "Gerente general 2010-2015\nDirector regional 2012-2018", 9},
		{"desde hasta", "Docente desde 2000 hasta 2004", 5},
		{"a between years", "Regidor 1990 a 1995", 6},
		{"en dash", "Alcalde 2003–2006", 4},
		{"out of window", "Registro 1800-1805", 0},
		{"span too long", "Vecino 1950-2020", 0},
		{"reversed", "Asesor 2015-2010", 0},
		{"duration projected", "Cuenta con 15 años de experiencia en gestión pública", 15},
		{"duration overlaps range", "15 años de experiencia. Gerente 2010-2015", 15},
		{"duration out of bounds", "Cuenta con 60 años de servicio", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.ExperienceYears(tt.text))
		})
	}
}

func TestQuantifiedGoalsDeduplicatePercentages(t *testing.T) {
	text := "Reducir al 30% la anemia infantil.\nMeta: 31% de hogares con agua potable.\nLograr 29% en cobertura."

	goals := newTestAggregator().QuantifiedGoals(text)
	assert.Equal(t, []Goal{{GoalPercentage, 30}}, SortedGoals(goals))
}

func TestQuantifiedGoalsPeopleAndDeadlines(t *testing.T) {
	text := "Atender a 1.500 familias para 2026.\n" +
		"Beneficiaremos a 2 millones de personas en zonas rurales.\n" +
		"Habrá 1,5 millones de estudiantes en programas de becas.\n" +
		"Hasta 2019 nada cambió, pero hasta el año 2030 sí."

	got := SortedGoals(newTestAggregator().QuantifiedGoals(text))
	assert.Equal(t, []Goal{
		{GoalDeadline, 2026},
		{GoalDeadline, 2030},
		{GoalPeople, 2000},
		{GoalPeople, 1_500_000},
		{GoalPeople, 2_000_000},
	}, got)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		num, mult string
		want      float64
		ok        bool
	}{
		{"1.500", "", 1500, true},
		{"12,000,000", "", 12_000_000, true},
		{"2,5", "millones", 2_500_000, true},
		{"300", "mil", 300_000, true},
		{"1", "millón", 1_000_000, true},
		{"", "", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCount(tt.num, tt.mult)
		assert.Equal(t, tt.ok, ok, tt.num)
		assert.InDelta(t, tt.want, got, 0.001, tt.num)
	}
}

func TestCountProposalsIsStructural(t *testing.T) {
	plan := `1. Mejorar la salud
2) Reducir la pobreza
• Fortalecer la educación
- Impulsar la inversión
a) Promover el empleo
Propuesta 3: reforma del Estado
Objetivo 4. seguridad ciudadana
Estrategia: Crear un fondo
texto libre con propuesta y meta sin estructura`

	assert.Equal(t, 8, newTestAggregator().CountProposals(plan))
	assert.Zero(t, newTestAggregator().CountProposals("Nuestra propuesta es una meta y un objetivo"))
}

func TestCountActivities(t *testing.T) {
	plan := `1. Implementar centros de salud
• Ejecutar obras viales
Actividad 1: licitación
Cronograma: primer semestre
Construir: hospitales regionales
Vamos a implementar mejoras`

	assert.Equal(t, 5, newTestAggregator().CountActivities(plan))
}

func TestDetectTier(t *testing.T) {
	tests := []struct {
		text string
		want constants.EducationTier
	}{
		{"DOCTOR EN CIENCIAS", constants.TierDoctorado},
		{"MAESTRÍA EN GESTIÓN PÚBLICA y bachiller", constants.TierMaestria},
		{"TÍTULO PROFESIONAL DE ABOGADO", constants.TierTitulo},
		{"Bachiller en derecho", constants.TierBachiller},
		{"Educación secundaria completa", constants.TierSecundaria},
		{"sin datos", constants.DefaultTier},
		{"", constants.DefaultTier},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectTier(tt.text), tt.text)
	}
}

func TestComputeRequiresPlanText(t *testing.T) {
	a := newTestAggregator()

	s := a.Compute(Texts{PlanSummary: "1. Mejorar la salud\n2. Reducir la pobreza"})
	assert.Zero(t, s.PropuestasCount)
	assert.Zero(t, s.ActividadesCount)
	assert.Zero(t, s.MetasCuantificadasCount)

	s = a.Compute(Texts{
		Plan:        "1. Mejorar la salud",
		PlanSummary: "2. Reducir la pobreza",
		CV:          "Gerente 2010-2015. MAESTRÍA EN FINANZAS",
	})
	assert.Equal(t, 2, s.PropuestasCount)
	assert.Equal(t, 6, s.AniosExperiencia)
	assert.Equal(t, constants.TierMaestria, s.GradoMax)
}

func TestComputeTierFallsBackToBiography(t *testing.T) {
	s := newTestAggregator().Compute(Texts{Biography: "Es doctor en economía por la Universidad de Chicago."})
	assert.Equal(t, constants.TierDoctorado, s.GradoMax)
	assert.Zero(t, s.AniosExperiencia)
}
