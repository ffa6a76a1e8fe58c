package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dimarray/internal/schema"
)

// Scenario defines a conformance test scenario: a set of schemas and the
// conversion cases run against them.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists paths to CUE files declaring the schemas under test.
	// Paths are relative to the scenario file location unless a base
	// path is given at load time.
	Specs []string `yaml:"specs"`

	// Cases are run in order.
	Cases []Case `yaml:"cases"`
}

// Case converts one set of field values and checks the outcome.
type Case struct {
	// Name identifies the case within the scenario.
	Name string `yaml:"name"`

	// Schema is the name of the schema to convert with.
	Schema string `yaml:"schema"`

	// Shorthand selects how the primary data is produced: new (default),
	// empty, zeros, ones or full.
	Shorthand string `yaml:"shorthand,omitempty"`

	// Shape is the primary data shape for the shape-based shorthands.
	Shape any `yaml:"shape,omitempty"`

	// Fill is the fill value for the full shorthand.
	Fill float64 `yaml:"fill,omitempty"`

	// Values holds the field values passed to the schema.
	Values map[string]any `yaml:"values,omitempty"`

	// Expect lists the properties to check.
	Expect Expect `yaml:"expect"`
}

// Expect describes the expected conversion outcome. Unset fields are not checked.
type Expect struct {
	Dims        []string         `yaml:"dims,omitempty"`
	Shape       []int            `yaml:"shape,omitempty"`
	DType       string           `yaml:"dtype,omitempty"`
	Name        *string          `yaml:"name,omitempty"`
	Coords      map[string][]int `yaml:"coords,omitempty"`
	CoordValues map[string]any   `yaml:"coord_values,omitempty"`
	Attrs       map[string]any   `yaml:"attrs,omitempty"`
	Data        any              `yaml:"data,omitempty"`

	// Error is the expected failure kind; empty means the case must succeed.
	Error string `yaml:"error,omitempty"`
}

// Error kinds reported by a failing case.
const (
	KindConfiguration = "configuration"
	KindShape         = "shape"
	KindField         = "field"
	KindError         = "error"
)

var validKinds = map[string]bool{
	KindConfiguration: true,
	KindShape:         true,
	KindField:         true,
	KindError:         true,
}

// LoadScenario reads and parses a scenario YAML file, resolving spec paths
// relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "case:" vs "cases:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and per-case consistency.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Specs) == 0 {
		return fmt.Errorf("at least one spec is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("at least one case is required")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(c, i); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func validateCase(c Case, index int) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}
	if c.Schema == "" {
		return fmt.Errorf("cases[%d]: schema is required", index)
	}

	sh, err := schema.ParseShorthand(c.Shorthand)
	if err != nil {
		return fmt.Errorf("cases[%d]: %w", index, err)
	}
	if sh != schema.ShorthandNew && c.Shape == nil {
		return fmt.Errorf("cases[%d]: shape is required for shorthand %s", index, sh)
	}

	if c.Expect.Error != "" && !validKinds[c.Expect.Error] {
		return fmt.Errorf("cases[%d]: unknown error kind %q", index, c.Expect.Error)
	}
	return nil
}
