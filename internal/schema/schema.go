package schema

import (
	"slices"

	"github.com/roach88/dimarray/internal/ir"
)

// Schema is a fully built, immutable DataArray schema.
type Schema struct {
	id       string
	declared ir.SchemaSpec
	creator  *Creator
	fields   []ir.FieldDescriptor
	class    Classification
}

// New builds a schema from a declaration and the constructor for its primary data.
//
// The effective field list is the constructor's parameters merged with the
// declared fields: positional parameters first, then declared fields, then
// keyword-only parameters. A declared field may retype a parameter of the
// same name without moving it. Constructor defaults win over declared ones.
func New(spec ir.SchemaSpec, ctor Constructor) (*Schema, error) {
	if errs := Validate(spec); len(errs) > 0 {
		return nil, &ConfigurationError{
			Code:    ErrCodeInvalidDeclaration,
			Field:   spec.Name,
			Message: joinValidationErrors(errs),
		}
	}

	creator, err := BuildCreator(ctor, spec.Shape)
	if err != nil {
		return nil, err
	}

	fields := mergeFields(creator.Params(), spec.Fields)
	class, err := Classify(fields)
	if err != nil {
		return nil, err
	}

	declared := cloneSpec(spec)
	declared.Creator = ctor.Name
	id, err := ir.SchemaID(declared)
	if err != nil {
		return nil, err
	}

	return &Schema{
		id:       id,
		declared: declared,
		creator:  creator,
		fields:   fields,
		class:    class,
	}, nil
}

// NewFromRegistry builds a schema whose creator is looked up by spec.Creator.
func NewFromRegistry(spec ir.SchemaSpec, reg *Registry) (*Schema, error) {
	ctor, err := reg.Lookup(spec.Creator)
	if err != nil {
		return nil, err
	}
	return New(spec, ctor)
}

func mergeFields(params []ir.Param, declared []ir.FieldDescriptor) []ir.FieldDescriptor {
	var leading, trailing []ir.FieldDescriptor
	for _, p := range params {
		f := ir.FieldDescriptor{Name: p.Name, Tag: ir.Plain{Type: p.Type}}
		if p.Kind == ir.ParamKeywordOnly {
			trailing = append(trailing, f)
		} else {
			leading = append(leading, f)
		}
	}

	var merged []ir.FieldDescriptor
	index := make(map[string]int)
	for _, group := range [][]ir.FieldDescriptor{leading, declared, trailing} {
		for _, f := range group {
			i, ok := index[f.Name]
			if !ok {
				index[f.Name] = len(merged)
				merged = append(merged, f)
				continue
			}
			merged[i].Tag = f.Tag
			if f.HasDefault {
				merged[i].HasDefault, merged[i].Default = true, f.Default
			}
		}
	}

	for _, p := range params {
		if p.HasDefault {
			i := index[p.Name]
			merged[i].HasDefault, merged[i].Default = true, p.Default
		}
	}
	return merged
}

func cloneSpec(spec ir.SchemaSpec) ir.SchemaSpec {
	out := spec
	out.Shape.Dims = slices.Clone(spec.Shape.Dims)
	out.Fields = slices.Clone(spec.Fields)
	return out
}

// ID returns the schema fingerprint.
func (s *Schema) ID() string { return s.id }

// Name returns the schema name.
func (s *Schema) Name() string { return s.declared.Name }

// Shape returns the fixed dims and dtype.
func (s *Schema) Shape() ir.ShapeSpec { return s.creator.Shape() }

// Creator returns the wrapped constructor.
func (s *Schema) Creator() *Creator { return s.creator }

// Declaration returns the declaration the schema was built from.
func (s *Schema) Declaration() ir.SchemaSpec { return cloneSpec(s.declared) }

// Fields returns the effective field list in order.
func (s *Schema) Fields() []ir.FieldDescriptor { return slices.Clone(s.fields) }

// Field returns the effective field with the given name.
func (s *Schema) Field(name string) (ir.FieldDescriptor, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return ir.FieldDescriptor{}, false
}

// Classification returns the field partition.
func (s *Schema) Classification() Classification {
	return Classification{
		Primary:     s.class.Primary,
		Coordinates: slices.Clone(s.class.Coordinates),
		Passthrough: slices.Clone(s.class.Passthrough),
	}
}

// Defaults returns the default value of every field that has one.
func (s *Schema) Defaults() map[string]any {
	defaults := make(map[string]any)
	for _, f := range s.fields {
		if f.HasDefault {
			defaults[f.Name] = f.Default
		}
	}
	return defaults
}

// FieldOption configures a field added through a Builder.
type FieldOption func(*ir.FieldDescriptor)

// WithDefault gives the field a default value.
func WithDefault(v any) FieldOption {
	return func(f *ir.FieldDescriptor) {
		f.HasDefault, f.Default = true, v
	}
}

// Builder assembles a declaration step by step and builds it into a Schema.
// Nothing is checked until Build.
type Builder struct {
	spec ir.SchemaSpec
	ctor *Constructor
}

// NewBuilder starts a declaration with the given schema name.
func NewBuilder(name string) *Builder {
	return &Builder{spec: ir.SchemaSpec{Name: name}}
}

// Dims fixes the primary array's dimension names.
func (b *Builder) Dims(dims ...string) *Builder {
	b.spec.Shape.Dims = ir.Dims(slices.Clone(dims))
	return b
}

// DType fixes the primary array's dtype.
func (b *Builder) DType(dtype ir.DType) *Builder {
	b.spec.Shape.DType = dtype
	return b
}

// Constructor sets the raw constructor; the default is NewConstructor.
func (b *Builder) Constructor(c Constructor) *Builder {
	b.ctor = &c
	b.spec.Creator = c.Name
	return b
}

// Field appends a prepared field descriptor.
func (b *Builder) Field(f ir.FieldDescriptor) *Builder {
	b.spec.Fields = append(b.spec.Fields, f)
	return b
}

// Plain appends a plain field.
func (b *Builder) Plain(name, typ string, opts ...FieldOption) *Builder {
	return b.add(name, ir.Plain{Type: typ}, opts)
}

// Coord appends a coordinate field labeled by dims.
func (b *Builder) Coord(name string, dims ir.Dims, dtype ir.DType, opts ...FieldOption) *Builder {
	return b.add(name, ir.Coordinate{Dims: slices.Clone(dims), DType: dtype}, opts)
}

// Attr appends a field stored as an attribute.
func (b *Builder) Attr(name, typ string, opts ...FieldOption) *Builder {
	return b.add(name, ir.Attr{Type: typ}, opts)
}

// NameField appends the field whose value names the array.
func (b *Builder) NameField(name, typ string, opts ...FieldOption) *Builder {
	return b.add(name, ir.Name{Type: typ}, opts)
}

func (b *Builder) add(name string, tag ir.TypeTag, opts []FieldOption) *Builder {
	f := ir.FieldDescriptor{Name: name, Tag: tag}
	for _, opt := range opts {
		opt(&f)
	}
	return b.Field(f)
}

// Spec returns the declaration built so far.
func (b *Builder) Spec() ir.SchemaSpec {
	return cloneSpec(b.spec)
}

// Build validates the declaration and returns the immutable Schema.
func (b *Builder) Build() (*Schema, error) {
	ctor := NewConstructor()
	if b.ctor != nil {
		ctor = *b.ctor
	}
	return New(b.spec, ctor)
}
