package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDTypeNames(t *testing.T) {
	for d := range ValidDTypes {
		got, err := ParseDType(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestParseDTypeNumpyCodes(t *testing.T) {
	tests := map[string]DType{
		"<f8": Float64,
		">f4": Float32,
		"|b1": Bool,
		"<i8": Int64,
		"|u1": Uint8,
		"int": Int64,
	}
	for code, want := range tests {
		got, err := ParseDType(code)
		require.NoError(t, err, code)
		assert.Equal(t, want, got, code)
	}
}

func TestParseDTypeEmptyIsUnconstrained(t *testing.T) {
	got, err := ParseDType("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
	assert.Equal(t, "any", got.String())
}

func TestParseDTypeUnknown(t *testing.T) {
	_, err := ParseDType("complex128")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complex128")
}

func TestDTypeCast(t *testing.T) {
	tests := []struct {
		dtype DType
		in    float64
		want  float64
	}{
		{Float64, 1.5, 1.5},
		{Int64, 1.9, 1},
		{Int64, -1.9, -1},
		{Int8, 130, -126},
		{Uint8, 256, 0},
		{Uint8, -1, 255},
		{Bool, 0.25, 1},
		{Bool, 0, 0},
		{Float32, 0.1, float64(float32(0.1))},
		{"", 2.5, 2.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.dtype.Cast(tt.in), "%s(%v)", tt.dtype, tt.in)
	}
}

func TestDTypeCastNonFiniteToInteger(t *testing.T) {
	assert.Equal(t, 0.0, Int32.Cast(math.NaN()))
	assert.Equal(t, 0.0, Uint16.Cast(math.Inf(1)))
	assert.True(t, math.IsNaN(Float64.Cast(math.NaN())))
}
