package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dimarray/internal/compiler"
	"github.com/roach88/dimarray/internal/ir"
	"github.com/roach88/dimarray/internal/schema"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledSchema is one built schema as the compile command reports it.
type CompiledSchema struct {
	Name    string               `json:"name"`
	ID      string               `json:"id"`
	Shape   ir.ShapeSpec         `json:"shape"`
	Creator string               `json:"creator"`
	Fields  []ir.FieldDescriptor `json:"fields"` // merged, in instance order
}

// CompilationResult holds the compiled schemas.
type CompilationResult struct {
	Schemas []CompiledSchema `json:"schemas"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [specs-dir]",
		Short: "Compile CUE schema declarations",
		Long: `Compile CUE dataarray declarations into built schemas.

Each declaration is parsed, validated and bound to its creator. The
merged field list and content-addressed schema id are reported.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputCompileError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result, buildErrors := buildSchemas(loadResult.Schemas, formatter)
	if len(buildErrors) > 0 {
		return outputCompileErrors(formatter, buildErrors)
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeSchemasToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// buildSchemas binds every declaration to its registered creator.
func buildSchemas(specs []ir.SchemaSpec, formatter *OutputFormatter) (*CompilationResult, []error) {
	reg := schema.NewRegistry()
	result := &CompilationResult{Schemas: make([]CompiledSchema, 0, len(specs))}

	var errs []error
	for _, spec := range specs {
		formatter.VerboseLog("Building schema: %s", spec.Name)

		s, err := schema.NewFromRegistry(spec, reg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", spec.Name, err))
			continue
		}
		result.Schemas = append(result.Schemas, CompiledSchema{
			Name:    s.Name(),
			ID:      s.ID(),
			Shape:   s.Shape(),
			Creator: s.Creator().Name(),
			Fields:  s.Fields(),
		})
	}
	return result, errs
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d schema(s)\n\n", len(result.Schemas))

	for _, s := range result.Schemas {
		fmt.Fprintf(formatter.Writer, "%s (%s) via %s\n", s.Name, s.ID, s.Creator)
		fmt.Fprintf(formatter.Writer, "  dims: (%s)", strings.Join(s.Shape.Dims, ", "))
		if !s.Shape.DType.IsZero() {
			fmt.Fprintf(formatter.Writer, " %s", s.Shape.DType)
		}
		fmt.Fprintln(formatter.Writer)
		for _, f := range s.Fields {
			fmt.Fprintf(formatter.Writer, "  %-12s %s\n", f.Name, describeTag(f.Tag))
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote schemas to %s\n", outputFile)
	}

	return nil
}

// describeTag renders a field's type tag for text output.
func describeTag(tag ir.TypeTag) string {
	switch t := tag.(type) {
	case ir.Coordinate:
		if t.DType.IsZero() {
			return fmt.Sprintf("coord (%s)", strings.Join(t.Dims, ", "))
		}
		return fmt.Sprintf("coord (%s) %s", strings.Join(t.Dims, ", "), t.DType)
	case ir.Attr:
		return "attr " + t.Type
	case ir.Name:
		return "name " + t.Type
	case ir.Plain:
		return t.Type
	default:
		return "?"
	}
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var configErr *schema.ConfigurationError
	if errors.As(err, &configErr) {
		return configErr.Code, err.Error()
	}
	return ErrCodeGeneric, err.Error()
}

// writeSchemasToFile writes the compilation result to a file as indented JSON.
func writeSchemasToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling schemas: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
