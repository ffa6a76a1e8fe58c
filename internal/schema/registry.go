package schema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/ir"
)

// DefaultCreatorName is used when a schema names no creator.
const DefaultCreatorName = "new"

// NewConstructor returns its single data argument unchanged.
// The wrapping Creator labels and casts it.
func NewConstructor() Constructor {
	return Constructor{
		Name: DefaultCreatorName,
		Params: []ir.Param{
			{Name: "data", Type: ir.ArrayType, Kind: ir.ParamPositionalOrKeyword},
		},
		Fn: func(args map[string]any) (any, error) {
			return args["data"], nil
		},
	}
}

// FullConstructor builds data of a given shape filled with fill_value.
// fill_value is keyword-only, so it sorts after declared fields.
func FullConstructor() Constructor {
	return Constructor{
		Name: "full",
		Params: []ir.Param{
			{Name: "shape", Type: ir.ShapeType, Kind: ir.ParamPositionalOrKeyword},
			{Name: "fill_value", Type: "float64", Kind: ir.ParamKeywordOnly, HasDefault: true, Default: 0.0},
		},
		Fn: func(args map[string]any) (any, error) {
			shape, err := array.ParseShape(args["shape"])
			if err != nil {
				return nil, err
			}
			fill, err := array.FromValue(args["fill_value"])
			if err != nil {
				return nil, fmt.Errorf("fill_value: %w", err)
			}
			v, err := fill.Item()
			if err != nil {
				return nil, fmt.Errorf("fill_value: %w", err)
			}
			return array.Full(shape, "", v)
		},
	}
}

// Registry maps creator names to raw constructors.
// Register everything during setup; lookups after that are read-only.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry returns a registry holding the built-in constructors.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[string]Constructor)}
	for _, c := range []Constructor{NewConstructor(), FullConstructor()} {
		r.ctors[c.Name] = c
	}
	return r
}

// Register adds a constructor. Names must be unique.
func (r *Registry) Register(c Constructor) error {
	if c.Name == "" {
		return fmt.Errorf("constructor name is required")
	}
	if _, exists := r.ctors[c.Name]; exists {
		return fmt.Errorf("constructor %q already registered", c.Name)
	}
	r.ctors[c.Name] = c
	return nil
}

// Lookup returns the named constructor. The empty name selects the default.
func (r *Registry) Lookup(name string) (Constructor, error) {
	if name == "" {
		name = DefaultCreatorName
	}
	c, ok := r.ctors[name]
	if !ok {
		return Constructor{}, &ConfigurationError{
			Code:    ErrCodeUnknownCreator,
			Field:   name,
			Message: fmt.Sprintf("unknown creator (registered: %v)", r.Names()),
		}
	}
	return c, nil
}

// Names returns the registered constructor names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.ctors))
}
