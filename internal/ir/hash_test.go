package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageSpec() SchemaSpec {
	return SchemaSpec{
		Name:  "Image",
		Shape: ShapeSpec{Dims: Dims{"x", "y"}, DType: Float64},
		Fields: []FieldDescriptor{
			{Name: "x", Tag: Coordinate{Dims: Dims{"x"}, DType: Int64}, HasDefault: true, Default: 0},
			{Name: "y", Tag: Coordinate{Dims: Dims{"y"}, DType: Int64}, HasDefault: true, Default: 0},
			{Name: "dpi", Tag: Attr{Type: "int"}, HasDefault: true, Default: 100},
		},
	}
}

func TestSchemaIDDeterminism(t *testing.T) {
	id1, err := SchemaID(imageSpec())
	require.NoError(t, err)
	id2, err := SchemaID(imageSpec())
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "SchemaID must be deterministic")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestSchemaIDChangesWithDeclaration(t *testing.T) {
	base := MustSchemaID(imageSpec())

	renamed := imageSpec()
	renamed.Name = "Picture"

	retyped := imageSpec()
	retyped.Shape.DType = Float32

	reordered := imageSpec()
	reordered.Fields[0], reordered.Fields[1] = reordered.Fields[1], reordered.Fields[0]

	newDefault := imageSpec()
	newDefault.Fields[2].Default = 300

	for name, spec := range map[string]SchemaSpec{
		"renamed":    renamed,
		"retyped":    retyped,
		"reordered":  reordered,
		"newDefault": newDefault,
	} {
		assert.NotEqual(t, base, MustSchemaID(spec), name)
	}
}

func TestSchemaIDMissingTag(t *testing.T) {
	spec := imageSpec()
	spec.Fields[0].Tag = nil
	_, err := SchemaID(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "x"`)
}

func TestSchemaIDIntAndFloatDefaultsAgree(t *testing.T) {
	intDefault := imageSpec()
	floatDefault := imageSpec()
	floatDefault.Fields[2].Default = 100.0

	assert.Equal(t, MustSchemaID(intDefault), MustSchemaID(floatDefault),
		"YAML and CUE may decode the same default as int or float")
}

func TestSchemaIDOpaqueDefault(t *testing.T) {
	spec := imageSpec()
	spec.Fields[2].Default = map[string]any{"a": nil}

	id, err := SchemaID(spec)
	require.NoError(t, err)
	assert.Len(t, id, 64)
	assert.NotEqual(t, MustSchemaID(imageSpec()), id)
}
