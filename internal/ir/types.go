package ir

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Dims is an ordered list of dimension names.
// It defines both the rank of an array and the labeling of its axes.
type Dims []string

// Validate checks that every name is non-empty and that no name repeats.
func (d Dims) Validate() error {
	seen := make(map[string]bool, len(d))
	for i, name := range d {
		if name == "" {
			return fmt.Errorf("dims[%d]: dimension name must be non-empty", i)
		}
		if seen[name] {
			return fmt.Errorf("dims[%d]: duplicate dimension %q", i, name)
		}
		seen[name] = true
	}
	return nil
}

// Index returns the position of name, or -1.
func (d Dims) Index(name string) int {
	return slices.Index(d, name)
}

// Equal reports whether both lists name the same axes in the same order.
func (d Dims) Equal(other Dims) bool {
	return slices.Equal(d, other)
}

// TagKind names a TypeTag variant.
type TagKind string

// TypeTag variants.
const (
	KindPlain      TagKind = "plain"
	KindCoordinate TagKind = "coord"
	KindAttr       TagKind = "attr"
	KindName       TagKind = "name"
)

// ValidTagKinds defines allowed field kinds.
var ValidTagKinds = map[TagKind]bool{
	KindPlain:      true,
	KindCoordinate: true,
	KindAttr:       true,
	KindName:       true,
}

// TypeTag is a sealed interface describing a field's semantic type.
// Only Plain, Coordinate, Attr, and Name implement it.
type TypeTag interface {
	Kind() TagKind
	typeTag()
}

// Plain is an ordinary value that is not itself dimensioned.
type Plain struct {
	Type string `json:"type"`
}

func (Plain) typeTag() {}

// Kind implements TypeTag.
func (Plain) Kind() TagKind { return KindPlain }

// Coordinate is a dimensioned side-array attached to the primary array.
// Dims may name a subset of the primary dims, or none for a scalar coordinate.
type Coordinate struct {
	Dims  Dims  `json:"dims"`
	DType DType `json:"dtype,omitempty"`
}

func (Coordinate) typeTag() {}

// Kind implements TypeTag.
func (Coordinate) Kind() TagKind { return KindCoordinate }

// Attr is a passthrough field stored in the array's attribute table.
type Attr struct {
	Type string `json:"type"`
}

func (Attr) typeTag() {}

// Kind implements TypeTag.
func (Attr) Kind() TagKind { return KindAttr }

// Name is a passthrough field whose value becomes the array's name.
type Name struct {
	Type string `json:"type"`
}

func (Name) typeTag() {}

// Kind implements TypeTag.
func (Name) Kind() TagKind { return KindName }

// IsCoordinate reports whether tag is a Coordinate.
func IsCoordinate(tag TypeTag) bool {
	_, ok := tag.(Coordinate)
	return ok
}

// FieldDescriptor is one declared attribute of a schema.
type FieldDescriptor struct {
	Name       string
	Tag        TypeTag
	HasDefault bool
	Default    any // meaningful only if HasDefault
}

// fieldJSON is the wire form of FieldDescriptor.
type fieldJSON struct {
	Name    string  `json:"name"`
	Kind    TagKind `json:"kind"`
	Type    string  `json:"type,omitempty"`
	Dims    Dims    `json:"dims,omitempty"`
	DType   DType   `json:"dtype,omitempty"`
	Default *any    `json:"default,omitempty"`
}

// MarshalJSON implements json.Marshaler for FieldDescriptor.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	out := fieldJSON{Name: f.Name}
	switch tag := f.Tag.(type) {
	case Plain:
		out.Kind, out.Type = KindPlain, tag.Type
	case Coordinate:
		out.Kind, out.Dims, out.DType = KindCoordinate, tag.Dims, tag.DType
		if out.Dims == nil {
			out.Dims = Dims{}
		}
	case Attr:
		out.Kind, out.Type = KindAttr, tag.Type
	case Name:
		out.Kind, out.Type = KindName, tag.Type
	default:
		return nil, fmt.Errorf("field %q: unknown type tag %T", f.Name, f.Tag)
	}
	if f.HasDefault {
		d := f.Default
		out.Default = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for FieldDescriptor.
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	var in fieldJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	tag, err := NewTypeTag(in.Kind, in.Type, in.Dims, in.DType)
	if err != nil {
		return fmt.Errorf("field %q: %w", in.Name, err)
	}
	*f = FieldDescriptor{Name: in.Name, Tag: tag}
	if in.Default != nil {
		f.HasDefault = true
		f.Default = *in.Default
	}
	return nil
}

// NewTypeTag builds the TypeTag variant for kind.
// An empty kind is read as plain.
func NewTypeTag(kind TagKind, typ string, dims Dims, dtype DType) (TypeTag, error) {
	switch kind {
	case KindPlain, "":
		return Plain{Type: typ}, nil
	case KindCoordinate:
		return Coordinate{Dims: dims, DType: dtype}, nil
	case KindAttr:
		return Attr{Type: typ}, nil
	case KindName:
		return Name{Type: typ}, nil
	default:
		return nil, fmt.Errorf("unknown field kind %q", kind)
	}
}

// ShapeSpec is the per-schema fixed (dims, dtype) pair that constrains
// the value produced for the primary data field.
type ShapeSpec struct {
	Dims  Dims  `json:"dims"`
	DType DType `json:"dtype,omitempty"`
}

// Plain type names with a built-in meaning.
const (
	// ArrayType marks a field or parameter that takes array data.
	ArrayType = "array"
	// ShapeType marks a parameter that takes an array shape.
	ShapeType = "shape"
)

// ParamKind classifies how a constructor parameter may be passed.
type ParamKind int

const (
	// ParamPositionalOrKeyword is an ordinary named parameter.
	ParamPositionalOrKeyword ParamKind = iota
	// ParamKeywordOnly may only be passed by name; it sorts after declared fields.
	ParamKeywordOnly
	// ParamVarPositional accepts unbounded extra positional arguments.
	ParamVarPositional
	// ParamVarKeyword accepts unbounded extra named arguments.
	ParamVarKeyword
)

// String implements fmt.Stringer for ParamKind.
func (k ParamKind) String() string {
	switch k {
	case ParamPositionalOrKeyword:
		return "positional_or_keyword"
	case ParamKeywordOnly:
		return "keyword_only"
	case ParamVarPositional:
		return "var_positional"
	case ParamVarKeyword:
		return "var_keyword"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// IsVariadic reports whether the parameter accepts unbounded arguments.
func (k ParamKind) IsVariadic() bool {
	return k == ParamVarPositional || k == ParamVarKeyword
}

// Param describes one parameter of a raw array constructor.
type Param struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"` // Empty means no declared type
	Kind       ParamKind `json:"kind"`
	HasDefault bool      `json:"has_default,omitempty"`
	Default    any       `json:"default,omitempty"`
}

// SchemaSpec is a declared DataArray schema before creator parameters are merged in.
type SchemaSpec struct {
	Name    string            `json:"name"`
	Shape   ShapeSpec         `json:"shape"`
	Creator string            `json:"creator,omitempty"` // registry name; empty selects the default
	Fields  []FieldDescriptor `json:"fields"`
}

// Field returns the declared field with the given name.
func (s *SchemaSpec) Field(name string) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}
