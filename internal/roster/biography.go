package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
)

// Biography is the narrative store entry of one candidate.
type Biography struct {
	Name      string `json:"name"`
	Party     string `json:"party"`
	BirthDate string `json:"birthDate"`
	Text      string `json:"biografia"`
}

// Born parses BirthDate (YYYY-MM-DD).
func (b Biography) Born() (time.Time, bool) {
	if b.BirthDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, b.BirthDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Age is the number of whole years between birth and ref, or -1 when the
// birth date is unknown or after ref.
func (b Biography) Age(ref time.Time) int {
	born, ok := b.Born()
	if !ok {
		return -1
	}
	return Age(born, ref)
}

// Age counts completed years from born to ref.
func Age(born, ref time.Time) int {
	if ref.Before(born) {
		return -1
	}
	age := ref.Year() - born.Year()
	if ref.Month() < born.Month() || (ref.Month() == born.Month() && ref.Day() < born.Day()) {
		age--
	}
	return age
}

// BiographyStore is a read-only slug-keyed lookup. The zero value is an
// empty store.
type BiographyStore struct {
	entries map[string]Biography
}

// Get returns the entry for slug.
func (s *BiographyStore) Get(slug string) (Biography, bool) {
	if s == nil || s.entries == nil {
		return Biography{}, false
	}
	b, ok := s.entries[slug]
	return b, ok
}

// Len is the number of entries.
func (s *BiographyStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// BiographySchema describes the store file: an object keyed by slug.
// Unknown per-candidate keys are allowed so richer front-end data files can
// be fed directly.
func BiographySchema() map[string]any {
	entry := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":      map[string]any{"type": "string", "minLength": 1},
			"party":     map[string]any{"type": "string"},
			"birthDate": map[string]any{"type": "string", "pattern": `^(\d{4}-\d{2}-\d{2})?$`},
			"biografia": map[string]any{"type": "string"},
		},
		"required": []string{"name", "biografia"},
	}
	return map[string]any{
		"type":                 "object",
		"propertyNames":        map[string]any{"pattern": `^[a-z0-9]+(-[a-z0-9]+)*$`},
		"additionalProperties": entry,
	}
}

// LoadBiographies reads the store file. An empty path yields an empty store.
func LoadBiographies(path string) (*BiographyStore, error) {
	if strings.TrimSpace(path) == "" {
		return &BiographyStore{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("BIOGRAPHY_ERROR", "read biography store", err)
	}
	return ParseBiographies(data)
}

// ParseBiographies validates data against BiographySchema and decodes it.
func ParseBiographies(data []byte) (*BiographyStore, error) {
	if err := validateJSON(BiographySchema(), data); err != nil {
		return nil, common.NewAppError("BIOGRAPHY_ERROR", "invalid biography store", err)
	}
	entries := map[string]Biography{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, common.NewAppError("BIOGRAPHY_ERROR", "decode biography store", err)
	}
	return &BiographyStore{entries: entries}, nil
}

func validateJSON(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("biographies.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("biographies.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}
