package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/harness"
	"github.com/roach88/dimarray/internal/schema"
)

var testInstancesDir = filepath.Join("..", "..", "testdata", "instances")

// convertResponse mirrors CLIResponse with the DataArray payload decoded.
type convertResponse struct {
	Status  string `json:"status"`
	TraceID string `json:"trace_id"`
	Data    struct {
		Name   string            `json:"name"`
		Dims   []string          `json:"dims"`
		DType  string            `json:"dtype"`
		Shape  []int             `json:"shape"`
		Data   any               `json:"data"`
		Coords []json.RawMessage `json:"coords"`
		Attrs  map[string]any    `json:"attrs"`
	} `json:"data"`
	Error *CLIError `json:"error"`
}

func runConvertCommand(t *testing.T, format, instance string) (string, error) {
	t.Helper()
	if _, err := os.Stat(testSpecsDir); os.IsNotExist(err) {
		t.Skip("testdata/specs directory not found")
	}

	buf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{instance, testSpecsDir})
	err := cmd.Execute()
	return buf.String(), err
}

func TestConvertText(t *testing.T) {
	out, err := runConvertCommand(t, "text", filepath.Join(testInstancesDir, "image.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "<dimarray.DataArray 'image' (x: 2, y: 2)> float64")
	assert.Contains(t, out, "Coordinates:")
	assert.Contains(t, out, "dpi: 72")
	assert.Contains(t, out, "trace: ")
}

func TestConvertJSON(t *testing.T) {
	out, err := runConvertCommand(t, "json", filepath.Join(testInstancesDir, "image.yaml"))
	require.NoError(t, err)

	var resp convertResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	id, err := uuid.Parse(resp.TraceID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.Equal(t, "image", resp.Data.Name)
	assert.Equal(t, []string{"x", "y"}, resp.Data.Dims)
	assert.Equal(t, "float64", resp.Data.DType)
	assert.Equal(t, []int{2, 2}, resp.Data.Shape)
	assert.Equal(t, []any{[]any{1.0, 2.0}, []any{3.0, 4.0}}, resp.Data.Data)
	assert.Len(t, resp.Data.Coords, 2)
	assert.Equal(t, map[string]any{"dpi": 72.0}, resp.Data.Attrs)
}

func TestConvertShorthand(t *testing.T) {
	out, err := runConvertCommand(t, "json", filepath.Join(testInstancesDir, "image_full.yaml"))
	require.NoError(t, err)

	var resp convertResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "filled", resp.Data.Name)
	assert.Equal(t, []int{2, 3}, resp.Data.Shape)
	assert.Equal(t, []any{
		[]any{1.5, 1.5, 1.5},
		[]any{1.5, 1.5, 1.5},
	}, resp.Data.Data)
}

func TestConvertFullCreator(t *testing.T) {
	out, err := runConvertCommand(t, "json", filepath.Join(testInstancesDir, "grid.yaml"))
	require.NoError(t, err)

	var resp convertResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"row", "col"}, resp.Data.Dims)
	assert.Equal(t, "int64", resp.Data.DType)
	assert.Equal(t, []any{[]any{3.0, 3.0}, []any{3.0, 3.0}}, resp.Data.Data)
	assert.Equal(t, map[string]any{"units": "m"}, resp.Data.Attrs)
}

func TestConvertFailures(t *testing.T) {
	tests := []struct {
		instance string
		code     string
	}{
		{"bad_shape.yaml", ErrCodeShape},
		{"unknown_field.yaml", ErrCodeField},
		{"unknown_schema.yaml", ErrCodeUnknownSchema},
		{"grid_zeros.yaml", schema.ErrCodeShorthand},
	}

	for _, tt := range tests {
		t.Run(tt.instance, func(t *testing.T) {
			out, err := runConvertCommand(t, "json", filepath.Join(testInstancesDir, tt.instance))
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp convertResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.NotEmpty(t, resp.TraceID)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestConvertFailureText(t *testing.T) {
	out, err := runConvertCommand(t, "text", filepath.Join(testInstancesDir, "unknown_field.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "Error [E202]")
	assert.Contains(t, out, "colour")
	assert.Contains(t, out, "trace: ")
}

func TestConvertInstanceErrors(t *testing.T) {
	dir := t.TempDir()
	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("schema: Image\nvalue: {}\n"), 0644))
	noSchema := filepath.Join(dir, "noschema.yaml")
	require.NoError(t, os.WriteFile(noSchema, []byte("values: {}\n"), 0644))

	for _, path := range []string{typo, noSchema, filepath.Join(dir, "missing.yaml")} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			out, err := runConvertCommand(t, "json", path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp convertResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeInstanceInvalid, resp.Error.Code)
		})
	}
}

func TestLoadInstanceFile(t *testing.T) {
	if _, err := os.Stat(testInstancesDir); os.IsNotExist(err) {
		t.Skip("testdata/instances directory not found")
	}

	inst, err := LoadInstanceFile(filepath.Join(testInstancesDir, "image_full.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Image", inst.Schema)
	assert.Equal(t, "full", inst.Shorthand)
	assert.Equal(t, []any{2, 3}, inst.Shape)
	assert.Equal(t, 1.5, inst.Fill)
	assert.Equal(t, map[string]any{"name": "filled"}, inst.Values)
}

func TestConversionErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"configuration", &schema.ConfigurationError{Code: schema.ErrCodeNoPrimary}, schema.ErrCodeNoPrimary},
		{"unknown schema", fmt.Errorf("%w %q", harness.ErrUnknownSchema, "X"), ErrCodeUnknownSchema},
		{"shape", &schema.ShapeError{Field: "x"}, ErrCodeShape},
		{"array shape", fmt.Errorf("wrap: %w", array.ErrShape), ErrCodeShape},
		{"dims", array.ErrDimsMismatch, ErrCodeShape},
		{"field", &schema.FieldError{Schema: "Image", Missing: []string{"data"}}, ErrCodeField},
		{"other", errors.New("boom"), ErrCodeConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConversionErrorCode(tt.err))
		})
	}
}
