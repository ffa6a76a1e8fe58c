package array

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/roach88/dimarray/internal/ir"
)

// FromValue converts a raw value into an Array.
//
// Accepted inputs are *Array (copied), Go numeric and bool scalars (0-d),
// typed slices of those, [][]float64, gonum matrices (rank 2, float64),
// and arbitrarily nested []any as
// produced by YAML and JSON decoders. The dtype is inferred: bool for
// all-bool input, int64 for all-integer input, float64 otherwise.
// Integers that float64 storage cannot hold exactly are rejected with
// ErrUnsupportedValue.
func FromValue(v any) (*Array, error) {
	switch val := v.(type) {
	case *Array:
		if val == nil {
			return nil, fmt.Errorf("%w: nil array", ErrUnsupportedValue)
		}
		return val.Clone(), nil
	case mat.Matrix:
		return FromMatrix(val, ir.Float64), nil
	case []float64:
		return New(ir.Float64, []int{len(val)}, val)
	case []float32:
		return fromSlice(ir.Float32, val)
	case []int:
		return fromSlice(ir.Int64, val)
	case []int64:
		return fromSlice(ir.Int64, val)
	case []int32:
		return fromSlice(ir.Int32, val)
	case []bool:
		data := make([]float64, len(val))
		for i, b := range val {
			if b {
				data[i] = 1
			}
		}
		return New(ir.Bool, []int{len(val)}, data)
	case [][]float64:
		rows := make([]any, len(val))
		for i, row := range val {
			items := make([]any, len(row))
			for j, f := range row {
				items[j] = f
			}
			rows[i] = items
		}
		return fromNested(rows)
	case []any:
		return fromNested(val)
	}

	f, dtype, ok := scalarOf(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	if err := checkExact(v); err != nil {
		return nil, err
	}
	return Scalar(dtype, f), nil
}

type number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

func fromSlice[T number](dtype ir.DType, vals []T) (*Array, error) {
	data := make([]float64, len(vals))
	for i, x := range vals {
		if err := checkExact(x); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		data[i] = float64(x)
	}
	return New(dtype, []int{len(vals)}, data)
}

// checkExact rejects 64-bit integers that do not survive a round trip
// through float64. Narrower integers always do.
func checkExact(v any) error {
	ok := true
	switch x := v.(type) {
	case int:
		ok = exactInt64(int64(x))
	case int64:
		ok = exactInt64(x)
	case uint:
		ok = exactUint64(uint64(x))
	case uint64:
		ok = exactUint64(x)
	}
	if !ok {
		return fmt.Errorf("%w: integer %v has no exact float64 representation", ErrUnsupportedValue, v)
	}
	return nil
}

const maxExactInt = 1 << 53

func exactInt64(n int64) bool {
	if n >= -maxExactInt && n <= maxExactInt {
		return true
	}
	f := float64(n)
	if f >= 1<<63 {
		return false
	}
	return int64(f) == n
}

func exactUint64(n uint64) bool {
	if n <= maxExactInt {
		return true
	}
	f := float64(n)
	if f >= 1<<64 {
		return false
	}
	return uint64(f) == n
}

// scalarOf extracts a float64 and its natural dtype from a Go scalar.
func scalarOf(v any) (float64, ir.DType, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, ir.Bool, true
		}
		return 0, ir.Bool, true
	case int:
		return float64(x), ir.Int64, true
	case int8:
		return float64(x), ir.Int8, true
	case int16:
		return float64(x), ir.Int16, true
	case int32:
		return float64(x), ir.Int32, true
	case int64:
		return float64(x), ir.Int64, true
	case uint:
		return float64(x), ir.Uint64, true
	case uint8:
		return float64(x), ir.Uint8, true
	case uint16:
		return float64(x), ir.Uint16, true
	case uint32:
		return float64(x), ir.Uint32, true
	case uint64:
		return float64(x), ir.Uint64, true
	case float32:
		return float64(x), ir.Float32, true
	case float64:
		return x, ir.Float64, true
	}
	return 0, "", false
}

// kindRank orders inferred dtypes so mixed input widens: bool < int64 < float64.
func kindRank(d ir.DType) int {
	switch {
	case d == ir.Bool:
		return 0
	case d.IsInteger():
		return 1
	default:
		return 2
	}
}

func fromNested(vals []any) (*Array, error) {
	shape := nestedShape(vals)
	data := make([]float64, 0, len(vals))
	rank := -1
	if err := flatten(vals, 0, shape, &data, &rank); err != nil {
		return nil, err
	}
	dtype := ir.Float64
	switch rank {
	case 0:
		dtype = ir.Bool
	case 1:
		dtype = ir.Int64
	}
	return New(dtype, shape, data)
}

// nestedShape follows the first element at every depth.
func nestedShape(vals []any) []int {
	shape := []int{len(vals)}
	cur := vals
	for len(cur) > 0 {
		next, ok := cur[0].([]any)
		if !ok {
			break
		}
		shape = append(shape, len(next))
		cur = next
	}
	return shape
}

func flatten(vals []any, axis int, shape []int, out *[]float64, rank *int) error {
	if len(vals) != shape[axis] {
		return fmt.Errorf("%w: axis %d has length %d, want %d", ErrRaggedInput, axis, len(vals), shape[axis])
	}
	for i, v := range vals {
		if axis < len(shape)-1 {
			sub, ok := v.([]any)
			if !ok {
				return fmt.Errorf("%w: element %d at axis %d is %T, want a list", ErrRaggedInput, i, axis, v)
			}
			if err := flatten(sub, axis+1, shape, out, rank); err != nil {
				return err
			}
			continue
		}
		f, dtype, ok := scalarOf(v)
		if !ok {
			if _, isList := v.([]any); isList {
				return fmt.Errorf("%w: unexpected list at axis %d", ErrRaggedInput, axis)
			}
			return fmt.Errorf("%w: element of type %T", ErrUnsupportedValue, v)
		}
		if err := checkExact(v); err != nil {
			return err
		}
		if r := kindRank(dtype); r > *rank {
			*rank = r
		}
		*out = append(*out, f)
	}
	return nil
}

// ParseShape converts a shape given as an int, []int or a decoded list of
// integral numbers. A single int n means the 1-d shape (n).
func ParseShape(v any) ([]int, error) {
	switch s := v.(type) {
	case []int:
		return s, nil
	case []int64:
		out := make([]int, len(s))
		for i, n := range s {
			out[i] = int(n)
		}
		return out, nil
	case []any:
		out := make([]int, len(s))
		for i, elem := range s {
			f, dtype, ok := scalarOf(elem)
			if !ok || dtype == ir.Bool || f != float64(int(f)) {
				return nil, fmt.Errorf("%w: shape[%d] is %v", ErrShape, i, elem)
			}
			out[i] = int(f)
		}
		return out, nil
	}
	f, dtype, ok := scalarOf(v)
	if !ok || dtype == ir.Bool || f != float64(int(f)) {
		return nil, fmt.Errorf("%w: cannot use %T as a shape", ErrShape, v)
	}
	return []int{int(f)}, nil
}
