package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/dimarray/internal/ir"
)

// CompileSchema parses a CUE value into a SchemaSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the schema struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`dataarray: Image: { dims: ["x", "y"], ... }`)
//	spec, err := CompileSchema(v.LookupPath(cue.ParsePath("dataarray.Image")))
//
// Field order follows declaration order in the source. Structural problems
// (unknown kinds, non-string dims, bad dtypes) are reported here; rules that
// span fields are left to schema.Validate.
func CompileSchema(v cue.Value) (*ir.SchemaSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.SchemaSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	// dims (optional: a schema without dims describes a 0-d array)
	dims, err := parseDims(v, "dims")
	if err != nil {
		return nil, err
	}
	spec.Shape.Dims = dims

	spec.Shape.DType, err = parseDType(v, "dtype")
	if err != nil {
		return nil, err
	}

	if creatorVal := v.LookupPath(cue.ParsePath("creator")); creatorVal.Exists() {
		creator, err := creatorVal.String()
		if err != nil {
			return nil, &CompileError{Field: "creator", Message: "creator must be a string", Pos: creatorVal.Pos()}
		}
		spec.Creator = creator
	}

	spec.Fields, err = parseFields(v)
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// parseFields extracts field declarations in source order.
func parseFields(v cue.Value) ([]ir.FieldDescriptor, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []ir.FieldDescriptor
	for iter.Next() {
		f, err := parseField(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// parseField parses one entry of the fields struct:
//
//	x: {kind: "coord", dims: ["x"], dtype: "int64", default: 0}
func parseField(name string, v cue.Value) (ir.FieldDescriptor, error) {
	f := ir.FieldDescriptor{Name: name}
	path := "fields." + name

	kind := ir.KindPlain
	if kindVal := v.LookupPath(cue.ParsePath("kind")); kindVal.Exists() {
		s, err := kindVal.String()
		if err != nil {
			return f, &CompileError{Field: "kind", Message: path + ": kind must be a string", Pos: kindVal.Pos()}
		}
		kind = ir.TagKind(s)
		if !ir.ValidTagKinds[kind] {
			return f, &CompileError{
				Field:   "kind",
				Message: fmt.Sprintf("%s: unknown field kind %q (want plain, coord, attr or name)", path, kind),
				Pos:     kindVal.Pos(),
			}
		}
	}

	typ := ""
	if typeVal := v.LookupPath(cue.ParsePath("type")); typeVal.Exists() {
		s, err := typeVal.String()
		if err != nil {
			return f, &CompileError{Field: "type", Message: path + ": type must be a string", Pos: typeVal.Pos()}
		}
		typ = s
	}

	var dims ir.Dims
	var dtype ir.DType
	if kind == ir.KindCoordinate {
		var err error
		if dims, err = parseDims(v, "dims"); err != nil {
			return f, err
		}
		if dtype, err = parseDType(v, "dtype"); err != nil {
			return f, err
		}
		if dims == nil {
			dims = ir.Dims{}
		}
	}
	tag, err := ir.NewTypeTag(kind, typ, dims, dtype)
	if err != nil {
		return f, &CompileError{Field: "kind", Message: path + ": " + err.Error(), Pos: v.Pos()}
	}
	f.Tag = tag

	if defVal := v.LookupPath(cue.ParsePath("default")); defVal.Exists() {
		d, err := decodeDefault(defVal)
		if err != nil {
			return f, err
		}
		f.HasDefault, f.Default = true, d
	}

	return f, nil
}

// parseDims reads an optional list of dimension names.
func parseDims(v cue.Value, label string) (ir.Dims, error) {
	dimsVal := v.LookupPath(cue.ParsePath(label))
	if !dimsVal.Exists() {
		return nil, nil
	}

	iter, err := dimsVal.List()
	if err != nil {
		return nil, &CompileError{Field: "dims", Message: "dims must be a list of strings", Pos: dimsVal.Pos()}
	}

	dims := ir.Dims{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: "dims", Message: "dimension names must be strings", Pos: iter.Value().Pos()}
		}
		dims = append(dims, s)
	}
	return dims, nil
}

// parseDType reads an optional dtype name.
func parseDType(v cue.Value, label string) (ir.DType, error) {
	dtypeVal := v.LookupPath(cue.ParsePath(label))
	if !dtypeVal.Exists() {
		return "", nil
	}
	s, err := dtypeVal.String()
	if err != nil {
		return "", &CompileError{Field: "dtype", Message: "dtype must be a string", Pos: dtypeVal.Pos()}
	}
	dtype, err := ir.ParseDType(s)
	if err != nil {
		return "", &CompileError{Field: "dtype", Message: err.Error(), Pos: dtypeVal.Pos()}
	}
	return dtype, nil
}

// decodeDefault converts a concrete CUE value into the Go value a field
// default holds: int64, float64, string, bool, nil or a []any of those.
func decodeDefault(v cue.Value) (any, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &CompileError{Field: "default", Message: "default must be concrete", Pos: v.Pos()}
	}

	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := []any{}
		for iter.Next() {
			elem, err := decodeDefault(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	default:
		return nil, &CompileError{
			Field:   "default",
			Message: fmt.Sprintf("unsupported default of kind %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}
