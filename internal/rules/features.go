package rules

import (
	"fmt"
	"regexp"
)

// FeatureRules are the structural patterns of the feature aggregator.
// Patterns are compiled verbatim; flags are written inline in the table.
type FeatureRules struct {
	Proposals  []*regexp.Regexp
	Activities []*regexp.Regexp

	// Percentages capture the number in group 1. People capture the number
	// in group 1 and an optional "mil"/"millones" multiplier in group 2.
	// Deadlines capture a four digit year in group 1.
	Percentages []*regexp.Regexp
	People      []*regexp.Regexp
	Deadlines   []*regexp.Regexp
	DeadlineMin int
	DeadlineMax int

	// Ranges capture start and end years in groups 1 and 2; Durations
	// capture a count of years in group 1.
	Ranges      []*regexp.Regexp
	Durations   []*regexp.Regexp
	YearMin     int
	YearMax     int
	MaxSpan     int
	MaxDuration int
}

func compileFeatures(d featuresDoc) (*FeatureRules, error) {
	fr := &FeatureRules{
		DeadlineMin: orDefault(d.Goals.MinYear, 2020),
		DeadlineMax: orDefault(d.Goals.MaxYear, 2040),
		YearMin:     orDefault(d.Experience.MinYear, 1900),
		YearMax:     orDefault(d.Experience.MaxYear, 2100),
		MaxSpan:     orDefault(d.Experience.MaxSpan, 50),
		MaxDuration: orDefault(d.Experience.MaxDuration, 50),
	}
	var err error
	steps := []struct {
		name   string
		in     []string
		out    *[]*regexp.Regexp
		groups int
	}{
		{"proposals", d.Proposals, &fr.Proposals, 0},
		{"activities", d.Activities, &fr.Activities, 0},
		{"goals.percentages", d.Goals.Percentages, &fr.Percentages, 1},
		{"goals.people", d.Goals.People, &fr.People, 2},
		{"goals.deadlines", d.Goals.Deadlines, &fr.Deadlines, 1},
		{"experience.ranges", d.Experience.Ranges, &fr.Ranges, 2},
		{"experience.durations", d.Experience.Durations, &fr.Durations, 1},
	}
	for _, s := range steps {
		if *s.out, err = compileAll(s.in, false); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		for _, re := range *s.out {
			if re.NumSubexp() < s.groups {
				return nil, fmt.Errorf("%s: pattern %q needs %d capture groups", s.name, re.String(), s.groups)
			}
		}
	}
	return fr, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
