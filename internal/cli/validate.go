package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/dimarray/internal/ir"
	"github.com/roach88/dimarray/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                     `json:"valid"`
	Schemas []string                 `json:"schemas,omitempty"`
	Errors  []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Validate schema declarations without emitting output",
		Long: `Validate CUE dataarray declarations.

Checks syntax, declaration structure and creator binding and reports
every problem found. Faster than compile for development feedback.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, rootOpts.specsDir(args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	validationErrors := loadErrorsToValidation(loadErrors)
	validationErrors = append(validationErrors, validateAll(loadResult.Schemas, formatter)...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	names := make([]string, len(loadResult.Schemas))
	for i, s := range loadResult.Schemas {
		names[i] = s.Name
	}
	return outputValidateSuccess(formatter, names)
}

// validateAll checks every declaration and, when it is well formed, binds
// it to its creator so configuration errors are reported too.
func validateAll(specs []ir.SchemaSpec, formatter *OutputFormatter) []schema.ValidationError {
	reg := schema.NewRegistry()
	var allErrors []schema.ValidationError

	for _, spec := range specs {
		formatter.VerboseLog("Validating schema: %s", spec.Name)

		errs := schema.Validate(spec)
		for i := range errs {
			errs[i].Field = spec.Name + "." + errs[i].Field
		}
		allErrors = append(allErrors, errs...)
		if len(errs) > 0 {
			continue
		}

		if _, err := schema.NewFromRegistry(spec, reg); err != nil {
			ve := schema.ValidationError{
				Field:   spec.Name,
				Message: err.Error(),
				Code:    ErrCodeGeneric,
			}
			var configErr *schema.ConfigurationError
			if errors.As(err, &configErr) {
				ve.Message = configErr.Message
				ve.Code = configErr.Code
				if configErr.Field != "" {
					ve.Field = spec.Name + "." + configErr.Field
				}
			}
			allErrors = append(allErrors, ve)
		}
	}

	return allErrors
}

// loadErrorsToValidation converts loader errors to validation errors.
func loadErrorsToValidation(errs []error) []schema.ValidationError {
	var out []schema.ValidationError
	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			out = append(out, schema.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    getLineFromCuePos(loadErr.Pos),
			})
			continue
		}
		out = append(out, schema.ValidationError{
			Field:   "load",
			Message: err.Error(),
			Code:    ErrCodeGeneric,
		})
	}
	return out
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, names []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Schemas: names})
	}

	fmt.Fprintf(formatter.Writer, "✓ All schemas valid (%d)\n", len(names))
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Validation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []schema.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateSpecsDir validates all declarations in a directory.
// This is a helper function for external callers.
func ValidateSpecsDir(specsDir string) ([]schema.ValidationError, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	silentFormatter := &OutputFormatter{Format: "text", Verbose: false, Writer: io.Discard}
	errs := loadErrorsToValidation(loadErrors)
	errs = append(errs, validateAll(loadResult.Schemas, silentFormatter)...)
	return errs, nil
}
