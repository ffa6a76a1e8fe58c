package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is matching across error kinds.
var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrShape matches every *ShapeError.
	ErrShape = errors.New("shape error")

	// ErrField matches every *FieldError.
	ErrField = errors.New("field error")
)

// Configuration error codes (E120-E129).
const (
	ErrCodeNoFields           = "E120" // empty field list
	ErrCodeNoPrimary          = "E121" // first field is a coordinate
	ErrCodeUntypedParam       = "E122" // constructor parameter without a type
	ErrCodeVariadicParam      = "E123" // *args / **kwargs style parameter
	ErrCodeInvalidDims        = "E124" // empty or repeated dimension name
	ErrCodeNilConstructor     = "E125" // constructor has no function
	ErrCodeUnknownCreator     = "E126" // creator name not registered
	ErrCodeDuplicateParam     = "E127" // parameter name repeated
	ErrCodeInvalidDeclaration = "E128" // spec failed validation
	ErrCodeShorthand          = "E129" // shorthand on a creator that does not take array data
)

// ConfigurationError is a setup-time mistake. It aborts schema or creator
// construction and is never downgraded to a warning.
type ConfigurationError struct {
	Code    string
	Field   string // field or parameter name, if any
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is makes errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ShapeError is an assembly-time mismatch between a coordinate and the
// primary array. The caller must supply corrected data; nothing is retried.
type ShapeError struct {
	Field   string
	Dims    []string
	Want    []int // resolved target shape, nil when a dim is unknown
	Got     []int // supplied shape, nil when a dim is unknown
	Message string
}

func (e *ShapeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "shape error: %s", e.Field)
	if len(e.Dims) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Dims, ", "))
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Want != nil && e.Got != nil {
		fmt.Fprintf(&b, ": want %v, got %v", e.Want, e.Got)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrShape) match.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// FieldError reports instance values that do not fit the schema's fields.
type FieldError struct {
	Schema  string
	Unknown []string
	Missing []string
}

func (e *FieldError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required field(s): %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected field(s): %s", strings.Join(e.Unknown, ", ")))
	}
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrField) match.
func (e *FieldError) Is(target error) bool {
	return target == ErrField
}
