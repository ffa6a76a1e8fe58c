package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dimarray/internal/ir"
)

// ScenarioSnapshot captures every case output of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type ScenarioSnapshot struct {
	ScenarioName string
	Cases        []CaseResult
}

// toCanonicalMap converts a ScenarioSnapshot to a map[string]any for canonical JSON serialization.
func (s *ScenarioSnapshot) toCanonicalMap() map[string]any {
	cases := make([]any, len(s.Cases))
	for i, c := range s.Cases {
		cases[i] = map[string]any{
			"name":   c.Name,
			"pass":   c.Pass,
			"output": c.Output,
		}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"cases":         cases,
	}
}

// MarshalSnapshot returns the canonical JSON snapshot of a scenario result.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := ScenarioSnapshot{ScenarioName: scenarioName, Cases: result.Cases}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its case outputs against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
