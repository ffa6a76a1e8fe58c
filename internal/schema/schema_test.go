package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimarray/internal/ir"
)

func fieldNames(fields []ir.FieldDescriptor) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// imageSchema mirrors a typical 2-d image declaration.
func imageSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewBuilder("Image").
		Dims("x", "y").
		DType(ir.Float64).
		Plain("data", "array").
		Coord("x", ir.Dims{"x"}, ir.Int64, WithDefault(0)).
		Coord("y", ir.Dims{"y"}, ir.Int64, WithDefault(0)).
		Attr("dpi", "int", WithDefault(100)).
		NameField("name", "string", WithDefault("image")).
		Build()
	require.NoError(t, err)
	return s
}

func TestBuilderBuildsImageSchema(t *testing.T) {
	s := imageSchema(t)

	assert.Equal(t, "Image", s.Name())
	assert.Equal(t, ir.ShapeSpec{Dims: ir.Dims{"x", "y"}, DType: ir.Float64}, s.Shape())
	assert.Equal(t, DefaultCreatorName, s.Creator().Name())
	assert.Equal(t, []string{"data", "x", "y", "dpi", "name"}, fieldNames(s.Fields()))

	c := s.Classification()
	assert.Equal(t, "data", c.Primary.Name)
	assert.Equal(t, []string{"x", "y"}, c.CoordinateNames())
	assert.Equal(t, []string{"dpi", "name"}, fieldNames(c.Passthrough))

	assert.Equal(t, map[string]any{"x": 0, "y": 0, "dpi": 100, "name": "image"}, s.Defaults())
	assert.Len(t, s.ID(), 64)
}

func TestNewMergesConstructorParams(t *testing.T) {
	spec := ir.SchemaSpec{
		Name:  "Filled",
		Shape: ir.ShapeSpec{Dims: ir.Dims{"x"}},
		Fields: []ir.FieldDescriptor{
			{Name: "x", Tag: ir.Coordinate{Dims: ir.Dims{"x"}}},
			{Name: "fill_value", Tag: ir.Plain{Type: "float64"}, HasDefault: true, Default: 9.0},
			{Name: "units", Tag: ir.Attr{Type: "string"}},
		},
	}

	s, err := New(spec, FullConstructor())
	require.NoError(t, err)

	// Positional params lead. A redeclared keyword-only param takes the
	// slot of its declaration.
	assert.Equal(t, []string{"shape", "x", "fill_value", "units"}, fieldNames(s.Fields()))

	f, ok := s.Field("fill_value")
	require.True(t, ok)
	assert.Equal(t, 0.0, f.Default, "constructor default wins")
	assert.Equal(t, ir.Plain{Type: "float64"}, f.Tag)
}

func TestNewRetypesParamInPlace(t *testing.T) {
	spec := ir.SchemaSpec{
		Name:  "Retyped",
		Shape: ir.ShapeSpec{Dims: ir.Dims{"x"}},
		Fields: []ir.FieldDescriptor{
			{Name: "x", Tag: ir.Coordinate{Dims: ir.Dims{"x"}}},
			{Name: "data", Tag: ir.Plain{Type: "float64"}},
		},
	}

	s, err := New(spec, NewConstructor())
	require.NoError(t, err)

	assert.Equal(t, []string{"data", "x"}, fieldNames(s.Fields()))
	f, _ := s.Field("data")
	assert.Equal(t, ir.Plain{Type: "float64"}, f.Tag)
}

func TestNewRejectsCoordinateFirst(t *testing.T) {
	ctor := Constructor{
		Name:   "coords-only",
		Params: []ir.Param{{Name: "x", Type: "array"}},
		Fn:     func(args map[string]any) (any, error) { return args["x"], nil },
	}
	spec := ir.SchemaSpec{
		Name:   "Bad",
		Shape:  ir.ShapeSpec{Dims: ir.Dims{"x"}},
		Fields: []ir.FieldDescriptor{{Name: "x", Tag: ir.Coordinate{Dims: ir.Dims{"x"}}}},
	}

	_, err := New(spec, ctor)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeNoPrimary, cfgErr.Code)
}

func TestNewRejectsInvalidDeclaration(t *testing.T) {
	_, err := NewBuilder("").Dims("x", "x").Build()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeInvalidDeclaration, cfgErr.Code)
	assert.Contains(t, cfgErr.Message, ErrCodeNameRequired)
	assert.Contains(t, cfgErr.Message, ErrCodeBadDims)
}

func TestNewRejectsBadConstructor(t *testing.T) {
	_, err := NewBuilder("S").Dims("x").Constructor(Constructor{
		Name:   "varargs",
		Params: []ir.Param{{Name: "data", Type: "array"}, {Name: "rest", Type: "any", Kind: ir.ParamVarKeyword}},
		Fn:     func(map[string]any) (any, error) { return nil, nil },
	}).Build()

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeVariadicParam, cfgErr.Code)
}

func TestSchemaIDStable(t *testing.T) {
	a := imageSchema(t)
	b := imageSchema(t)
	assert.Equal(t, a.ID(), b.ID())

	other, err := NewBuilder("Image").Dims("x", "y").Plain("data", "array").Build()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), other.ID())
}

func TestSchemaAccessorsReturnCopies(t *testing.T) {
	s := imageSchema(t)

	fields := s.Fields()
	fields[0].Name = "mutated"
	assert.Equal(t, "data", s.Fields()[0].Name)

	decl := s.Declaration()
	decl.Shape.Dims[0] = "mutated"
	assert.Equal(t, ir.Dims{"x", "y"}, s.Shape().Dims)
	assert.Equal(t, DefaultCreatorName, decl.Creator)
}

func TestBuilderSpec(t *testing.T) {
	spec := NewBuilder("Weather").
		Dims("time").
		DType(ir.Float32).
		Plain("data", "array").
		Coord("time", ir.Dims{"time"}, ir.Int64).
		Spec()

	assert.Equal(t, "Weather", spec.Name)
	assert.Equal(t, ir.ShapeSpec{Dims: ir.Dims{"time"}, DType: ir.Float32}, spec.Shape)
	require.Len(t, spec.Fields, 2)
	assert.False(t, spec.Fields[1].HasDefault)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"full", "new"}, reg.Names())

	ctor, err := reg.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCreatorName, ctor.Name)

	_, err = reg.Lookup("missing")
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeUnknownCreator, cfgErr.Code)

	require.NoError(t, reg.Register(Constructor{Name: "custom", Fn: func(map[string]any) (any, error) { return 0, nil }}))
	assert.Error(t, reg.Register(Constructor{Name: "custom"}))
	assert.Error(t, reg.Register(Constructor{}))
	assert.Equal(t, []string{"custom", "full", "new"}, reg.Names())
}

func TestNewFromRegistry(t *testing.T) {
	spec := ir.SchemaSpec{
		Name:    "Grid",
		Creator: "full",
		Shape:   ir.ShapeSpec{Dims: ir.Dims{"x", "y"}, DType: ir.Int64},
	}

	s, err := NewFromRegistry(spec, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "full", s.Creator().Name())

	da, err := s.NewDataArray(map[string]any{"shape": []int{2, 3}, "fill_value": 4})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, da.Shape())
	assert.Equal(t, ir.Int64, da.DType())
	assert.Equal(t, []float64{4, 4, 4, 4, 4, 4}, da.Data().Values())

	spec.Creator = "nope"
	_, err = NewFromRegistry(spec, NewRegistry())
	assert.True(t, errors.Is(err, ErrConfiguration))
}
