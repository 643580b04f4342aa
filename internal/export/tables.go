package export

import (
	"github.com/joseph-ayodele/candidate-dossiers/internal/pipeline"
)

// Table is one tabular view of a run. Cells hold strings, ints, floats or
// nil (rendered empty).
type Table struct {
	Name   string
	Sheet  string
	Header []string
	Rows   [][]any
}

// File base names of the three views.
const (
	CamposName   = "candidatos_campos"
	FeaturesName = "candidatos_features"
	ScoresName   = "candidatos_scores"
)

// Tables builds the fields, features and scores views from one record set.
// Every record yields one row in each view, in record order.
func Tables(records []pipeline.Record, fieldNames []string) []Table {
	return []Table{CamposTable(records, fieldNames), FeaturesTable(records), ScoresTable(records)}
}

// CamposTable lists every merged field followed by its provenance column.
func CamposTable(records []pipeline.Record, fieldNames []string) Table {
	header := []string{"slug", "nombre", "partido", "fecha_nacimiento", "edad"}
	for _, f := range fieldNames {
		header = append(header, f, f+"_fuente")
	}
	header = append(header, "status")

	t := Table{Name: CamposName, Sheet: "Campos", Header: header}
	for _, r := range records {
		row := []any{r.Slug, r.Name, r.Party, r.BirthDate, age(r.Age)}
		for _, f := range fieldNames {
			v, ok := r.Field(f)
			if !ok {
				row = append(row, nil, nil)
				continue
			}
			row = append(row, v.Display(), v.Provenance())
		}
		row = append(row, string(r.Status))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func FeaturesTable(records []pipeline.Record) Table {
	t := Table{
		Name:   FeaturesName,
		Sheet:  "Features",
		Header: []string{"slug", "propuestas_count", "metas_cuantificadas_count", "anios_experiencia", "actividades_count", "grado_max", "status"},
	}
	for _, r := range records {
		f := r.Features
		t.Rows = append(t.Rows, []any{
			r.Slug, f.PropuestasCount, f.MetasCuantificadasCount, f.AniosExperiencia,
			f.ActividadesCount, string(f.GradoMax), string(r.Status),
		})
	}
	return t
}

func ScoresTable(records []pipeline.Record) Table {
	t := Table{
		Name:   ScoresName,
		Sheet:  "Scores",
		Header: []string{"slug", "propuestas", "experiencia", "gestion", "formacion", "impacto_social", "status"},
	}
	for _, r := range records {
		s := r.Scores
		t.Rows = append(t.Rows, []any{
			r.Slug, s.Propuestas, s.Experiencia, s.Gestion, s.Formacion, s.ImpactoSocial, string(r.Status),
		})
	}
	return t
}

func age(a int) any {
	if a < 0 {
		return nil
	}
	return a
}
