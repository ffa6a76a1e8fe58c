package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/image.yaml")
	require.NoError(t, err)

	assert.Equal(t, "image", scenario.Name)
	assert.Equal(t, []string{filepath.Join("testdata", "specs", "image.cue")}, scenario.Specs)
	require.Len(t, scenario.Cases, 5)

	first := scenario.Cases[0]
	assert.Equal(t, "explicit_values", first.Name)
	assert.Equal(t, "Image", first.Schema)
	assert.Equal(t, []string{"x", "y"}, first.Expect.Dims)
	require.NotNil(t, first.Expect.Name)
	assert.Equal(t, "thumb", *first.Expect.Name)
	assert.Equal(t, 300, first.Values["dpi"])

	full := scenario.Cases[1]
	assert.Equal(t, "full", full.Shorthand)
	assert.Equal(t, 2.5, full.Fill)
	assert.Equal(t, []any{1, 3}, full.Shape)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	scenario, err := LoadScenarioWithBasePath("testdata/scenarios/image.yaml", "/specs")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/specs", "..", "specs", "image.cue")}, scenario.Specs)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
specs: [a.cue]
case:
  - name: c
    schema: S
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "specs: [a.cue]\ncases: [{name: c, schema: S}]\n",
			want: "name is required",
		},
		{
			name: "missing specs",
			yaml: "name: s\ncases: [{name: c, schema: S}]\n",
			want: "at least one spec",
		},
		{
			name: "no cases",
			yaml: "name: s\nspecs: [a.cue]\n",
			want: "at least one case",
		},
		{
			name: "case without schema",
			yaml: "name: s\nspecs: [a.cue]\ncases: [{name: c}]\n",
			want: "cases[0]: schema is required",
		},
		{
			name: "unknown shorthand",
			yaml: "name: s\nspecs: [a.cue]\ncases: [{name: c, schema: S, shorthand: random}]\n",
			want: "unknown shorthand",
		},
		{
			name: "shorthand without shape",
			yaml: "name: s\nspecs: [a.cue]\ncases: [{name: c, schema: S, shorthand: ones}]\n",
			want: "shape is required",
		},
		{
			name: "unknown error kind",
			yaml: "name: s\nspecs: [a.cue]\ncases: [{name: c, schema: S, expect: {error: boom}}]\n",
			want: "unknown error kind",
		},
		{
			name: "duplicate case",
			yaml: "name: s\nspecs: [a.cue]\ncases: [{name: c, schema: S}, {name: c, schema: S}]\n",
			want: "duplicate case name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioRelativeSpecs(t *testing.T) {
	path := writeScenario(t, "name: s\nspecs: [schemas/a.cue]\ncases: [{name: c, schema: S}]\n")

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "schemas", "a.cue"), scenario.Specs[0])
}
