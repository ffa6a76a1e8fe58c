package schema

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/ir"
)

// CoordinateValue is one coordinate field's current value and declared labeling.
type CoordinateValue struct {
	Name  string
	Dims  ir.Dims
	DType ir.DType // empty keeps the value's own dtype
	Value any
}

// CoordinateValues pairs classified coordinate fields with values.
// Fields absent from values are skipped.
func CoordinateValues(fields []ir.FieldDescriptor, values map[string]any) []CoordinateValue {
	out := make([]CoordinateValue, 0, len(fields))
	for _, f := range fields {
		tag, ok := f.Tag.(ir.Coordinate)
		if !ok {
			continue
		}
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		out = append(out, CoordinateValue{Name: f.Name, Dims: tag.Dims, DType: tag.DType, Value: v})
	}
	return out
}

// Assemble builds a labeled array from the primary value and coordinate values.
//
// The primary may be a *array.DataArray already labeled with shape.Dims (as
// produced by a Creator) or any raw value array.FromValue accepts. It is
// copied, never modified, and only its data is kept. Each coordinate, in order, is resolved against
// the primary's axis sizes for exactly the dims it names: a scalar is
// filled across that shape, an array must match it exactly.
func Assemble(primary any, shape ir.ShapeSpec, coords []CoordinateValue) (*array.DataArray, error) {
	out, err := labelPrimary(primary, shape)
	if err != nil {
		return nil, err
	}

	sizes := out.Sizes()
	for _, c := range coords {
		target := make([]int, len(c.Dims))
		for i, dim := range c.Dims {
			size, ok := sizes[dim]
			if !ok {
				return nil, &ShapeError{
					Field:   c.Name,
					Dims:    c.Dims,
					Message: fmt.Sprintf("dimension %q is not an axis of the primary array %v", dim, []string(shape.Dims)),
				}
			}
			target[i] = size
		}

		values, err := resolveCoordinate(c, target)
		if err != nil {
			return nil, err
		}
		if err := out.AttachCoord(c.Name, c.Dims, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func labelPrimary(primary any, shape ir.ShapeSpec) (*array.DataArray, error) {
	if da, ok := primary.(*array.DataArray); ok && da != nil {
		if !da.Dims().Equal(shape.Dims) {
			return nil, &ShapeError{
				Field:   "primary",
				Dims:    shape.Dims,
				Message: fmt.Sprintf("primary array is labeled %v", []string(da.Dims())),
			}
		}
		// Only the data carries over; coordinates, attributes and the name
		// come from the schema's own fields.
		return array.NewDataArray(shape.Dims, da.Data().Cast(shape.DType))
	}

	data, err := array.FromValue(primary)
	if err != nil {
		return nil, err
	}
	out, err := array.NewDataArray(shape.Dims, data.Cast(shape.DType))
	if errors.Is(err, array.ErrDimsMismatch) && data.Rank() != len(shape.Dims) {
		return nil, &ShapeError{
			Field:   "primary",
			Dims:    shape.Dims,
			Message: fmt.Sprintf("rank %d data for %d dims", data.Rank(), len(shape.Dims)),
		}
	}
	return out, err
}

func resolveCoordinate(c CoordinateValue, target []int) (*array.Array, error) {
	v, err := array.FromValue(c.Value)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", c.Name, err)
	}

	if v.IsScalar() {
		dtype := c.DType
		if dtype.IsZero() {
			dtype = v.DType()
		}
		item, _ := v.Item()
		return array.Full(target, dtype, item)
	}

	if !slices.Equal(v.Shape(), target) {
		return nil, &ShapeError{
			Field:   c.Name,
			Dims:    c.Dims,
			Want:    target,
			Got:     v.Shape(),
			Message: "coordinate shape does not match the primary array",
		}
	}
	return v.Cast(c.DType), nil
}
