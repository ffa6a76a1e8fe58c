package schema

import (
	"fmt"
	"slices"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/ir"
)

// ConstructorFunc produces the raw primary value from named arguments.
// The result may be anything array.FromValue accepts.
type ConstructorFunc func(args map[string]any) (any, error)

// Constructor is a raw array constructor together with its declared signature.
type Constructor struct {
	Name   string
	Params []ir.Param
	Fn     ConstructorFunc
}

// Creator is a raw constructor wrapped to produce a dims/dtype-tagged DataArray.
// It is immutable and safe for concurrent use.
type Creator struct {
	name    string
	params  []ir.Param
	allowed map[string]struct{}
	fn      ConstructorFunc
	shape   ir.ShapeSpec
}

// BuildCreator validates ctor's signature and returns a Creator bound to shape.
//
// Every parameter must declare a type, and variadic parameters are rejected
// because they cannot be re-exposed as fixed schema fields.
func BuildCreator(ctor Constructor, shape ir.ShapeSpec) (*Creator, error) {
	if ctor.Fn == nil {
		return nil, &ConfigurationError{
			Code:    ErrCodeNilConstructor,
			Field:   ctor.Name,
			Message: "constructor has no function",
		}
	}
	if err := shape.Dims.Validate(); err != nil {
		return nil, &ConfigurationError{Code: ErrCodeInvalidDims, Message: err.Error()}
	}

	allowed := make(map[string]struct{}, len(ctor.Params))
	for _, p := range ctor.Params {
		if p.Kind.IsVariadic() {
			return nil, &ConfigurationError{
				Code:    ErrCodeVariadicParam,
				Field:   p.Name,
				Message: fmt.Sprintf("%s parameters cannot be used", p.Kind),
			}
		}
		if p.Type == "" {
			return nil, &ConfigurationError{
				Code:    ErrCodeUntypedParam,
				Field:   p.Name,
				Message: "type must be specified for all args",
			}
		}
		if _, dup := allowed[p.Name]; dup {
			return nil, &ConfigurationError{
				Code:    ErrCodeDuplicateParam,
				Field:   p.Name,
				Message: "duplicate parameter name",
			}
		}
		allowed[p.Name] = struct{}{}
	}

	return &Creator{
		name:    ctor.Name,
		params:  slices.Clone(ctor.Params),
		allowed: allowed,
		fn:      ctor.Fn,
		shape:   ir.ShapeSpec{Dims: slices.Clone(shape.Dims), DType: shape.DType},
	}, nil
}

// Name returns the constructor name.
func (c *Creator) Name() string { return c.name }

// Shape returns the fixed dims and dtype.
func (c *Creator) Shape() ir.ShapeSpec {
	return ir.ShapeSpec{Dims: slices.Clone(c.shape.Dims), DType: c.shape.DType}
}

// Params returns the constructor parameters in declaration order.
func (c *Creator) Params() []ir.Param {
	return slices.Clone(c.params)
}

// Defaults returns the default value of every parameter that has one.
func (c *Creator) Defaults() map[string]any {
	defaults := make(map[string]any)
	for _, p := range c.params {
		if p.HasDefault {
			defaults[p.Name] = p.Default
		}
	}
	return defaults
}

// Accepts reports whether name is one of the constructor's parameters.
func (c *Creator) Accepts(name string) bool {
	_, ok := c.allowed[name]
	return ok
}

// Call invokes the constructor and labels the result.
//
// Unknown keys in kwargs are dropped, so a whole instance's field values
// may be passed to a creator that only needs some of them. Missing
// parameters take their defaults; a missing parameter without a default
// is an error. Errors from the constructor and the array backend are
// returned unchanged.
func (c *Creator) Call(kwargs map[string]any) (*array.DataArray, error) {
	args := make(map[string]any, len(c.params))
	for k, v := range kwargs {
		if c.Accepts(k) {
			args[k] = v
		}
	}
	var missing []string
	for _, p := range c.params {
		if _, ok := args[p.Name]; ok {
			continue
		}
		if !p.HasDefault {
			missing = append(missing, p.Name)
			continue
		}
		args[p.Name] = p.Default
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing required argument(s) %v", c.name, missing)
	}

	raw, err := c.fn(args)
	if err != nil {
		return nil, err
	}
	return c.wrap(raw)
}

// wrap converts a raw constructor result into a DataArray of the fixed dims,
// cast to the fixed dtype.
func (c *Creator) wrap(raw any) (*array.DataArray, error) {
	if da, ok := raw.(*array.DataArray); ok {
		raw = da.Data()
	}
	data, err := array.FromValue(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return array.NewDataArray(c.shape.Dims, data.Cast(c.shape.DType))
}
