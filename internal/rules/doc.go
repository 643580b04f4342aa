package rules

// YAML document shapes. Validation tags run through common.ValidateStruct.

type fileDoc struct {
	Version    int          `yaml:"version" validate:"min=1"`
	Precedence []string     `yaml:"precedence" validate:"required,min=1,unique"`
	Sections   []sectionDoc `yaml:"sections" validate:"dive"`
	Fields     []fieldDoc   `yaml:"fields" validate:"required,min=1,dive"`
	Features   featuresDoc  `yaml:"features"`
}

type sectionDoc struct {
	Name    string   `yaml:"name" validate:"required"`
	Within  string   `yaml:"within"`
	Headers []string `yaml:"headers" validate:"required,min=1"`
	End     []string `yaml:"end"`
	Window  int      `yaml:"window" validate:"min=0"`
	Strict  bool     `yaml:"strict"`
}

type policyDoc struct {
	TruncateAt    []string `yaml:"truncate_at"`
	MinLength     int      `yaml:"min_length" validate:"min=0"`
	MaxLength     int      `yaml:"max_length" validate:"min=0"`
	Banned        []string `yaml:"banned"`
	RejectYears   bool     `yaml:"reject_years"`
	RejectNumeric bool     `yaml:"reject_numeric"`
	TitleCase     bool     `yaml:"title_case"`
}

type binaryDoc struct {
	Negative         []string `yaml:"negative" validate:"required,min=1"`
	Affirmative      []string `yaml:"affirmative" validate:"required,min=1"`
	NegativeValue    string   `yaml:"negative_value" validate:"required"`
	AffirmativeValue string   `yaml:"affirmative_value" validate:"required"`
}

type ruleDoc struct {
	Name    string     `yaml:"name" validate:"required"`
	Pattern string     `yaml:"pattern" validate:"required"`
	Group   *int       `yaml:"group" validate:"omitempty,min=0"`
	Policy  *policyDoc `yaml:"policy"`
}

type fieldDoc struct {
	Field      string     `yaml:"field" validate:"required"`
	Source     string     `yaml:"source" validate:"required"`
	Section    string     `yaml:"section"`
	Precedence []string   `yaml:"precedence"`
	Policy     policyDoc  `yaml:"policy"`
	Binary     *binaryDoc `yaml:"binary"`
	Gates      []string   `yaml:"gates"`
	Rules      []ruleDoc  `yaml:"rules" validate:"required,min=1,dive"`
}

type goalDoc struct {
	Percentages []string `yaml:"percentages"`
	People      []string `yaml:"people"`
	Deadlines   []string `yaml:"deadlines"`
	MinYear     int      `yaml:"min_year"`
	MaxYear     int      `yaml:"max_year"`
}

type experienceDoc struct {
	Ranges      []string `yaml:"ranges"`
	Durations   []string `yaml:"durations"`
	MinYear     int      `yaml:"min_year"`
	MaxYear     int      `yaml:"max_year"`
	MaxSpan     int      `yaml:"max_span"`
	MaxDuration int      `yaml:"max_duration"`
}

type featuresDoc struct {
	Proposals  []string      `yaml:"proposals"`
	Activities []string      `yaml:"activities"`
	Goals      goalDoc       `yaml:"goals"`
	Experience experienceDoc `yaml:"experience"`
}
