// Package roster loads the ordered candidate list and the narrative
// biography store that feed a run.
package roster

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
)

// Candidate is one roster entry. Position in the roster is the output order.
type Candidate struct {
	Slug string `yaml:"slug" json:"slug" validate:"required,slug"`
	Name string `yaml:"name" json:"name" validate:"required"`
}

type rosterDoc struct {
	Candidates []Candidate `yaml:"candidates" validate:"required,min=1,unique=Slug,dive"`
}

// Load reads a YAML roster file.
func Load(path string) ([]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("ROSTER_ERROR", "read roster", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML roster:
//
//	candidates:
//	  - slug: keiko-fujimori
//	    name: Keiko Fujimori
func Parse(data []byte) ([]Candidate, error) {
	var doc rosterDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, common.NewAppError("ROSTER_ERROR", "decode roster", err)
	}
	if err := common.ValidateStruct(doc); err != nil {
		return nil, common.NewAppError("ROSTER_ERROR", "invalid roster", err)
	}
	return doc.Candidates, nil
}
