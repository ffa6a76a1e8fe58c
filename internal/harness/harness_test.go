package harness

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/schema"
)

var imageSpec = filepath.Join("testdata", "specs", "image.cue")

func TestRun_ImageScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/image.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
	assert.Empty(t, result.Errors)
	require.Len(t, result.Cases, 5)
	for _, c := range result.Cases {
		assert.True(t, c.Pass, c.Name)
	}

	assert.Equal(t, "thumb", result.Cases[0].Output["name"])
	assert.Equal(t, KindField, result.Cases[3].Output["error"])
	assert.Equal(t, KindShape, result.Cases[4].Output["error"])
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	wrong := "other"
	scenario := &Scenario{
		Name:  "failing",
		Specs: []string{imageSpec},
		Cases: []Case{
			{
				Name:   "wrong_everything",
				Schema: "Image",
				Values: map[string]any{"data": []any{[]any{1, 2}}},
				Expect: Expect{
					Dims:   []string{"y", "x"},
					Shape:  []int{2, 1},
					DType:  "int8",
					Name:   &wrong,
					Coords: map[string][]int{"x": {5}, "z": {1}},
					Attrs:  map[string]any{"dpi": 1, "units": "m"},
					Data:   []any{[]any{2, 1}},
				},
			},
			{
				Name:   "unexpected_success",
				Schema: "Image",
				Values: map[string]any{"data": []any{[]any{1}}},
				Expect: Expect{Error: KindShape},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Cases, 2)
	assert.False(t, result.Cases[0].Pass)
	assert.Len(t, result.Cases[0].Errors, 9)
	assert.False(t, result.Cases[1].Pass)
	assert.Len(t, result.Errors, 10)
	assert.True(t, strings.HasPrefix(result.Errors[0], "wrong_everything: expectation failed: dims"))
}

func TestRun_BrokenSchemaReportsConfiguration(t *testing.T) {
	scenario := &Scenario{
		Name:  "broken",
		Specs: []string{filepath.Join("testdata", "specs", "broken.cue")},
		Cases: []Case{
			{Name: "any", Schema: "Broken", Values: map[string]any{"data": 1}, Expect: Expect{Error: KindConfiguration}},
			{Name: "missing", Schema: "Nope", Expect: Expect{Error: KindError}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
	assert.Contains(t, result.Cases[0].Output["message"], schema.ErrCodeNoPrimary)
}

func TestRun_SpecCompileFailure(t *testing.T) {
	scenario := &Scenario{
		Name:  "missing-spec",
		Specs: []string{filepath.Join("testdata", "specs", "nope.cue")},
		Cases: []Case{{Name: "c", Schema: "S"}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile specs")
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, KindConfiguration, ErrorKind(&schema.ConfigurationError{Code: schema.ErrCodeNoFields}))
	assert.Equal(t, KindShape, ErrorKind(fmt.Errorf("wrapped: %w", &schema.ShapeError{Field: "x"})))
	assert.Equal(t, KindShape, ErrorKind(fmt.Errorf("%w: rank", array.ErrDimsMismatch)))
	assert.Equal(t, KindField, ErrorKind(&schema.FieldError{Schema: "S", Missing: []string{"a"}}))
	assert.Equal(t, KindError, ErrorKind(errors.New("boom")))
}

func TestLooseEqual(t *testing.T) {
	assert.True(t, looseEqual(100, int64(100)))
	assert.True(t, looseEqual(1.0, 1))
	assert.True(t, looseEqual([]any{1, "a"}, []any{int64(1), "a"}))
	assert.True(t, looseEqual(map[string]any{"k": 2}, map[string]any{"k": 2.0}))
	assert.False(t, looseEqual("1", 1))
	assert.False(t, looseEqual([]any{1}, []any{1, 2}))
	assert.False(t, looseEqual(map[string]any{"k": 1}, map[string]any{"j": 1}))
}

func TestSnapshotSkipsNilAttrs(t *testing.T) {
	s, err := schema.NewBuilder("S").Dims("x").
		Plain("data", "array").
		Attr("units", "string", schema.WithDefault("m")).
		Attr("meta", "map", schema.WithDefault(map[string]any{"a": nil, "b": int32(2)})).
		Build()
	require.NoError(t, err)

	da, err := s.NewDataArray(map[string]any{"data": []float64{1.5}})
	require.NoError(t, err)

	snap := Snapshot(da, nil)
	assert.Equal(t, map[string]any{"units": "m", "meta": map[string]any{"b": int64(2)}}, snap["attrs"])
	assert.NotContains(t, snap, "name")
	assert.NotContains(t, snap, "coords")
}
