package array

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/roach88/dimarray/internal/ir"
)

// Array is an immutable, row-major N-dimensional array.
type Array struct {
	dtype ir.DType
	shape []int
	data  []float64
}

// New builds an array from flat row-major data, casting every element to dtype.
func New(dtype ir.DType, shape []int, data []float64) (*Array, error) {
	n, err := sizeOf(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShape, len(data), shape)
	}
	a := &Array{dtype: dtype, shape: slices.Clone(shape), data: make([]float64, n)}
	for i, v := range data {
		a.data[i] = dtype.Cast(v)
	}
	return a, nil
}

// Full returns an array of the given shape with every element set to value.
func Full(shape []int, dtype ir.DType, value float64) (*Array, error) {
	n, err := sizeOf(shape)
	if err != nil {
		return nil, err
	}
	a := &Array{dtype: dtype, shape: slices.Clone(shape), data: make([]float64, n)}
	v := dtype.Cast(value)
	for i := range a.data {
		a.data[i] = v
	}
	return a, nil
}

// Zeros returns a zero-filled array.
func Zeros(shape []int, dtype ir.DType) (*Array, error) {
	return Full(shape, dtype, 0)
}

// Ones returns a one-filled array.
func Ones(shape []int, dtype ir.DType) (*Array, error) {
	return Full(shape, dtype, 1)
}

// Empty returns an array whose contents are unspecified.
// Go has no uninitialized allocation, so the contents happen to be zero.
func Empty(shape []int, dtype ir.DType) (*Array, error) {
	return Zeros(shape, dtype)
}

// Scalar returns a 0-d array holding v.
func Scalar(dtype ir.DType, v float64) *Array {
	return &Array{dtype: dtype, shape: []int{}, data: []float64{dtype.Cast(v)}}
}

func sizeOf(shape []int) (int, error) {
	n := 1
	for i, s := range shape {
		if s < 0 {
			return 0, fmt.Errorf("%w: negative size %d for axis %d", ErrShape, s, i)
		}
		n *= s
	}
	return n, nil
}

// DType returns the element type.
func (a *Array) DType() ir.DType { return a.dtype }

// Shape returns a copy of the shape.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// Rank returns the number of axes.
func (a *Array) Rank() int { return len(a.shape) }

// Size returns the number of elements.
func (a *Array) Size() int { return len(a.data) }

// IsScalar reports whether the array is 0-d.
func (a *Array) IsScalar() bool { return len(a.shape) == 0 }

// Values returns a copy of the flat row-major data.
func (a *Array) Values() []float64 { return slices.Clone(a.data) }

// Item returns the single element of a 0-d or one-element array.
func (a *Array) Item() (float64, error) {
	if len(a.data) != 1 {
		return 0, fmt.Errorf("%w: item() on array of size %d", ErrShape, len(a.data))
	}
	return a.data[0], nil
}

// At returns the element at the given index.
func (a *Array) At(idx ...int) (float64, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("%w: %d indices for rank %d", ErrIndex, len(idx), len(a.shape))
	}
	off := 0
	for i, ix := range idx {
		if ix < 0 || ix >= a.shape[i] {
			return 0, fmt.Errorf("%w: index %d for axis %d of size %d", ErrIndex, ix, i, a.shape[i])
		}
		off = off*a.shape[i] + ix
	}
	return a.data[off], nil
}

// Cast returns a copy of the array converted to dtype.
// Casting to the unconstrained dtype keeps the current one.
func (a *Array) Cast(dtype ir.DType) *Array {
	if dtype.IsZero() {
		return a.Clone()
	}
	out, _ := New(dtype, a.shape, a.data)
	return out
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{dtype: a.dtype, shape: slices.Clone(a.shape), data: slices.Clone(a.data)}
}

// Equal reports whether both arrays have the same dtype, shape and elements.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.dtype == b.dtype && slices.Equal(a.shape, b.shape) && slices.Equal(a.data, b.data)
}

// FromMatrix builds a rank-2 array from any gonum matrix.
func FromMatrix(m mat.Matrix, dtype ir.DType) *Array {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	out, _ := New(dtype, []int{r, c}, data)
	return out
}

// Nested returns the elements as nested []any for encoding.
// Integer dtypes yield int64 leaves, bool yields bool, everything else float64.
func (a *Array) Nested() any {
	if len(a.shape) == 0 {
		return a.leaf(a.data[0])
	}
	v, _ := a.nested(0, 0)
	return v
}

func (a *Array) nested(axis, off int) (any, int) {
	n := a.shape[axis]
	out := make([]any, n)
	if axis == len(a.shape)-1 {
		for i := 0; i < n; i++ {
			out[i] = a.leaf(a.data[off+i])
		}
		return out, off + n
	}
	for i := 0; i < n; i++ {
		out[i], off = a.nested(axis+1, off)
	}
	return out, off
}

func (a *Array) leaf(v float64) any {
	switch {
	case a.dtype == ir.Bool:
		return v != 0
	case a.dtype.IsInteger():
		return int64(v)
	default:
		return v
	}
}
