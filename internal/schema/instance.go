package schema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/ir"
)

// Instance is a set of field values checked against a Schema.
type Instance struct {
	schema *Schema
	values map[string]any
}

// Instantiate checks values against the schema's fields and fills defaults.
// Unknown names and missing required fields are reported together.
func (s *Schema) Instantiate(values map[string]any) (*Instance, error) {
	var unknown, missing []string
	for name := range values {
		if _, ok := s.Field(name); !ok {
			unknown = append(unknown, name)
		}
	}

	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if v, ok := values[f.Name]; ok {
			out[f.Name] = v
			continue
		}
		if f.HasDefault {
			out[f.Name] = f.Default
			continue
		}
		missing = append(missing, f.Name)
	}

	if len(unknown) > 0 || len(missing) > 0 {
		slices.Sort(unknown)
		return nil, &FieldError{Schema: s.Name(), Unknown: unknown, Missing: missing}
	}
	return &Instance{schema: s, values: out}, nil
}

// Schema returns the instance's schema.
func (i *Instance) Schema() *Schema { return i.schema }

// Get returns a field value.
func (i *Instance) Get(name string) (any, bool) {
	v, ok := i.values[name]
	return v, ok
}

// Values returns a copy of every field value.
func (i *Instance) Values() map[string]any {
	return maps.Clone(i.values)
}

// ToDataArray converts the instance into a fresh labeled array.
//
// The creator receives every field value and keeps only its own
// parameters. Coordinate fields are then assembled onto the result, attr
// fields become attributes and the name field names the array.
func (i *Instance) ToDataArray() (*array.DataArray, error) {
	s := i.schema
	primary, err := s.creator.Call(i.values)
	if err != nil {
		return nil, err
	}

	out, err := Assemble(primary, s.Shape(), CoordinateValues(s.class.Coordinates, i.values))
	if err != nil {
		return nil, err
	}

	for _, f := range s.class.Passthrough {
		v, ok := i.values[f.Name]
		if !ok || v == nil {
			continue
		}
		switch f.Tag.(type) {
		case ir.Attr:
			out.SetAttr(f.Name, v)
		case ir.Name:
			out.SetName(fmt.Sprint(v))
		}
	}
	return out, nil
}

// NewDataArray instantiates values and converts the instance in one step.
func (s *Schema) NewDataArray(values map[string]any) (*array.DataArray, error) {
	inst, err := s.Instantiate(values)
	if err != nil {
		return nil, err
	}
	return inst.ToDataArray()
}

// Empty creates a DataArray whose primary data has the given shape and
// unspecified contents. values supplies every other field.
func (s *Schema) Empty(shape []int, values map[string]any) (*array.DataArray, error) {
	data, err := array.Empty(shape, ir.Float64)
	if err != nil {
		return nil, err
	}
	return s.withPrimary(data, values)
}

// Zeros creates a DataArray whose primary data is filled with zeros.
func (s *Schema) Zeros(shape []int, values map[string]any) (*array.DataArray, error) {
	data, err := array.Zeros(shape, ir.Float64)
	if err != nil {
		return nil, err
	}
	return s.withPrimary(data, values)
}

// Ones creates a DataArray whose primary data is filled with ones.
func (s *Schema) Ones(shape []int, values map[string]any) (*array.DataArray, error) {
	data, err := array.Ones(shape, ir.Float64)
	if err != nil {
		return nil, err
	}
	return s.withPrimary(data, values)
}

// Full creates a DataArray whose primary data is filled with fill.
func (s *Schema) Full(shape []int, fill float64, values map[string]any) (*array.DataArray, error) {
	data, err := array.Full(shape, ir.Float64, fill)
	if err != nil {
		return nil, err
	}
	return s.withPrimary(data, values)
}

func (s *Schema) withPrimary(data *array.Array, values map[string]any) (*array.DataArray, error) {
	if !takesArrayData(s.class.Primary) {
		return nil, &ConfigurationError{
			Code:    ErrCodeShorthand,
			Field:   s.class.Primary.Name,
			Message: fmt.Sprintf("creator %q builds its data from %s, not from an array; shorthands need an array primary", s.creator.Name(), describePrimary(s.class.Primary)),
		}
	}
	vals := maps.Clone(values)
	if vals == nil {
		vals = make(map[string]any)
	}
	vals[s.class.Primary.Name] = data
	return s.NewDataArray(vals)
}

// takesArrayData reports whether a generated array can be passed as the
// primary field: plain fields typed "array" or "any", typed with an element
// dtype, or left untyped.
func takesArrayData(f ir.FieldDescriptor) bool {
	p, ok := f.Tag.(ir.Plain)
	if !ok {
		return false
	}
	switch p.Type {
	case "", ir.ArrayType, "any":
		return true
	}
	return ir.ValidDTypes[ir.DType(p.Type)]
}

func describePrimary(f ir.FieldDescriptor) string {
	if p, ok := f.Tag.(ir.Plain); ok && p.Type != "" {
		return fmt.Sprintf("%s (%s)", f.Name, p.Type)
	}
	return f.Name
}

// Shorthand names how the primary data of a new DataArray is produced.
type Shorthand string

// Shorthand values. ShorthandNew takes the primary data from the values
// map; the others generate it from a shape.
const (
	ShorthandNew   Shorthand = "new"
	ShorthandEmpty Shorthand = "empty"
	ShorthandZeros Shorthand = "zeros"
	ShorthandOnes  Shorthand = "ones"
	ShorthandFull  Shorthand = "full"
)

// ParseShorthand parses a shorthand name. The empty string means ShorthandNew.
func ParseShorthand(name string) (Shorthand, error) {
	switch sh := Shorthand(name); sh {
	case "":
		return ShorthandNew, nil
	case ShorthandNew, ShorthandEmpty, ShorthandZeros, ShorthandOnes, ShorthandFull:
		return sh, nil
	default:
		return "", fmt.Errorf("unknown shorthand %q (want new, empty, zeros, ones or full)", name)
	}
}

// Construct dispatches to NewDataArray or one of the shape-based shorthands.
// shape and fill are ignored where they do not apply.
func (s *Schema) Construct(sh Shorthand, shape []int, fill float64, values map[string]any) (*array.DataArray, error) {
	switch sh {
	case ShorthandNew, "":
		return s.NewDataArray(values)
	case ShorthandEmpty:
		return s.Empty(shape, values)
	case ShorthandZeros:
		return s.Zeros(shape, values)
	case ShorthandOnes:
		return s.Ones(shape, values)
	case ShorthandFull:
		return s.Full(shape, fill, values)
	default:
		return nil, fmt.Errorf("unknown shorthand %q", sh)
	}
}
