package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yml
var defaultFixtures []byte

// Fixtures are the word lists demo profiles are drawn from.
type Fixtures struct {
	Statuses []string `yaml:"statuses"`
	Skills   []string `yaml:"skills"`
	Titles   []string `yaml:"titles"`
	Schools  []string `yaml:"schools"`
	Degrees  []string `yaml:"degrees"`
	Fields   []string `yaml:"fields"`
}

// LoadFixtures reads fixtures from path, or the built-in set when path is empty.
func LoadFixtures(path string) (*Fixtures, error) {
	if path == "" {
		return ParseFixtures(defaultFixtures)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures decodes YAML fixtures. Every list must be non-empty.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	var errs []error
	for name, list := range map[string][]string{
		"statuses": f.Statuses,
		"skills":   f.Skills,
		"titles":   f.Titles,
		"schools":  f.Schools,
		"degrees":  f.Degrees,
		"fields":   f.Fields,
	} {
		if len(list) == 0 {
			errs = append(errs, fmt.Errorf("fixtures: %s is empty", name))
		}
	}
	return errors.Join(errs...)
}
