package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/harness"
	"github.com/roach88/dimarray/internal/schema"
)

// InstanceFile is the YAML (or JSON) document the convert command reads.
//
//	schema: Image
//	shorthand: full     # new (default), empty, zeros, ones or full
//	shape: [2, 2]
//	fill: 3
//	values:
//	  x: [10, 20]
type InstanceFile struct {
	Schema    string         `yaml:"schema"`
	Shorthand string         `yaml:"shorthand,omitempty"`
	Shape     any            `yaml:"shape,omitempty"`
	Fill      float64        `yaml:"fill,omitempty"`
	Values    map[string]any `yaml:"values,omitempty"`
}

// LoadInstanceFile reads and strictly decodes an instance file.
func LoadInstanceFile(path string) (*InstanceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instance file: %w", err)
	}

	var inst InstanceFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&inst); err != nil {
		return nil, fmt.Errorf("parsing instance file %s: %w", path, err)
	}
	if inst.Schema == "" {
		return nil, fmt.Errorf("instance file %s: schema is required", path)
	}
	return &inst, nil
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <instance-file> [specs-dir]",
		Short: "Convert an instance file into a DataArray",
		Long: `Convert field values into a DataArray using a compiled schema.

The instance file names the schema, optionally a shorthand with its shape
and fill value, and the field values. Each run is tagged with a trace id
that appears in the output and in the logs.

Exit codes:
  0 - Conversion succeeded
  1 - Conversion failed (shape, field or configuration error)
  2 - Command error (missing files, invalid specs)`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, args[0], rootOpts.specsDir(args[1:]), cmd)
		},
	}

	return cmd
}

func runConvert(opts *RootOptions, instancePath, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	traceID, err := uuid.NewV7()
	if err != nil {
		return WrapExitError(ExitCommandError, "generating trace id", err)
	}
	logger := slog.Default().With("trace_id", traceID.String())

	inst, err := LoadInstanceFile(instancePath)
	if err != nil {
		_ = formatter.ErrorWithTrace(ErrCodeInstanceInvalid, err.Error(), nil, traceID.String())
		return WrapExitError(ExitCommandError, "loading instance", err)
	}

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputCompileError(formatter, code, message, nil)
	}
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}
	formatter.VerboseLog("Found %d schema(s) in %s", len(loadResult.Schemas), specsDir)

	h := harness.New(loadResult.Schemas, schema.NewRegistry(), logger)
	da, err := h.Convert(harness.Case{
		Name:      instancePath,
		Schema:    inst.Schema,
		Shorthand: inst.Shorthand,
		Shape:     inst.Shape,
		Fill:      inst.Fill,
		Values:    inst.Values,
	})
	if err != nil {
		logger.Debug("conversion failed", "schema", inst.Schema, "error", err)
		_ = formatter.ErrorWithTrace(ConversionErrorCode(err), err.Error(), nil, traceID.String())
		return WrapExitError(ExitFailure, "conversion failed", err)
	}

	logger.Debug("conversion succeeded", "schema", inst.Schema, "shape", da.Shape())
	return formatter.SuccessWithTrace(da, traceID.String())
}

// ConversionErrorCode maps a conversion error to its CLI error code.
// Configuration errors keep the code the schema package assigned.
func ConversionErrorCode(err error) string {
	var configErr *schema.ConfigurationError
	switch {
	case errors.As(err, &configErr):
		return configErr.Code
	case errors.Is(err, harness.ErrUnknownSchema):
		return ErrCodeUnknownSchema
	case errors.Is(err, schema.ErrShape), errors.Is(err, array.ErrShape), errors.Is(err, array.ErrDimsMismatch):
		return ErrCodeShape
	case errors.Is(err, schema.ErrField):
		return ErrCodeField
	default:
		return ErrCodeConversion
	}
}
