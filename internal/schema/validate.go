package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/dimarray/internal/ir"
)

// Validation error codes (E100-E119)
const (
	ErrCodeNameRequired   = "E101" // schema name is required
	ErrCodeBadDims        = "E102" // empty or duplicate dimension names
	ErrCodeBadDType       = "E103" // unknown dtype
	ErrCodeDuplicateField = "E104" // field name declared twice
	ErrCodeFieldName      = "E105" // empty field name
	ErrCodeBadCoordDims   = "E106" // coordinate dims empty or duplicated
	ErrCodeBadCoordDType  = "E107" // coordinate dtype unknown
	ErrCodeMissingTag     = "E108" // field without a type tag
)

// ValidationError represents a schema declaration error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a declaration without building it.
// Returns all errors found (does not fail fast).
//
// Coordinate dims that are not axes of the primary array are not reported
// here: that mismatch surfaces as a ShapeError when an instance is assembled.
func Validate(spec ir.SchemaSpec) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "schema name is required",
			Code:    ErrCodeNameRequired,
		})
	}

	if err := spec.Shape.Dims.Validate(); err != nil {
		errs = append(errs, ValidationError{
			Field:   "dims",
			Message: err.Error(),
			Code:    ErrCodeBadDims,
		})
	}

	if !spec.Shape.DType.IsZero() && !ir.ValidDTypes[spec.Shape.DType] {
		errs = append(errs, ValidationError{
			Field:   "dtype",
			Message: fmt.Sprintf("unsupported dtype %q", spec.Shape.DType),
			Code:    ErrCodeBadDType,
		})
	}

	seen := make(map[string]bool, len(spec.Fields))
	for i, f := range spec.Fields {
		path := fmt.Sprintf("fields[%d]", i)

		if f.Name == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: "field name is required",
				Code:    ErrCodeFieldName,
			})
		} else if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrCodeDuplicateField,
			})
		}
		seen[f.Name] = true

		if f.Tag == nil {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("field %q has no type", f.Name),
				Code:    ErrCodeMissingTag,
			})
			continue
		}

		coord, ok := f.Tag.(ir.Coordinate)
		if !ok {
			continue
		}
		if err := coord.Dims.Validate(); err != nil {
			errs = append(errs, ValidationError{
				Field:   path + ".dims",
				Message: err.Error(),
				Code:    ErrCodeBadCoordDims,
			})
		}
		if !coord.DType.IsZero() && !ir.ValidDTypes[coord.DType] {
			errs = append(errs, ValidationError{
				Field:   path + ".dtype",
				Message: fmt.Sprintf("unsupported dtype %q", coord.DType),
				Code:    ErrCodeBadCoordDType,
			})
		}
	}

	return errs
}

// joinValidationErrors renders errs on one line.
func joinValidationErrors(errs []ValidationError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
