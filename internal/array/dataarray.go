package array

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/roach88/dimarray/internal/ir"
)

// Coord is a named, axis-labeled side array.
type Coord struct {
	Name   string
	Dims   ir.Dims
	Values *Array
}

// AttrEntry is one attribute in insertion order.
type AttrEntry struct {
	Key   string
	Value any
}

// DataArray is a labeled array: data plus axis names, coordinates, attributes and a name.
type DataArray struct {
	name   string
	dims   ir.Dims
	data   *Array
	coords []Coord
	attrs  []AttrEntry
}

// NewDataArray labels data with dims. The number of dims must equal the rank.
func NewDataArray(dims ir.Dims, data *Array) (*DataArray, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil data", ErrUnsupportedValue)
	}
	if err := dims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDimsMismatch, err)
	}
	if len(dims) != data.Rank() {
		return nil, fmt.Errorf("%w: %d dims %v for data of shape %v",
			ErrDimsMismatch, len(dims), []string(dims), data.shape)
	}
	return &DataArray{dims: slices.Clone(dims), data: data.Clone()}, nil
}

// Name returns the array name.
func (d *DataArray) Name() string { return d.name }

// SetName sets the array name.
func (d *DataArray) SetName(name string) { d.name = name }

// Dims returns a copy of the axis names.
func (d *DataArray) Dims() ir.Dims { return slices.Clone(d.dims) }

// Data returns the underlying array. Arrays are immutable, so sharing is safe.
func (d *DataArray) Data() *Array { return d.data }

// DType returns the data dtype.
func (d *DataArray) DType() ir.DType { return d.data.dtype }

// Shape returns the data shape.
func (d *DataArray) Shape() []int { return d.data.Shape() }

// Sizes returns the realized axis-size table.
func (d *DataArray) Sizes() map[string]int {
	sizes := make(map[string]int, len(d.dims))
	for i, dim := range d.dims {
		sizes[dim] = d.data.shape[i]
	}
	return sizes
}

// AttachCoord sets coordinate name to values labeled by dims.
// Every dim must be an axis of the array and the shapes must agree.
// An existing coordinate of the same name is replaced in place.
func (d *DataArray) AttachCoord(name string, dims ir.Dims, values *Array) error {
	if values == nil {
		return fmt.Errorf("%w: coordinate %q has no values", ErrUnsupportedValue, name)
	}
	if len(dims) != values.Rank() {
		return fmt.Errorf("%w: coordinate %q has %d dims for rank %d",
			ErrDimsMismatch, name, len(dims), values.Rank())
	}
	sizes := d.Sizes()
	for i, dim := range dims {
		size, ok := sizes[dim]
		if !ok {
			return fmt.Errorf("%w: coordinate %q uses unknown dim %q", ErrDimsMismatch, name, dim)
		}
		if values.shape[i] != size {
			return fmt.Errorf("%w: coordinate %q axis %q has size %d, want %d",
				ErrDimsMismatch, name, dim, values.shape[i], size)
		}
	}

	c := Coord{Name: name, Dims: slices.Clone(dims), Values: values.Clone()}
	for i := range d.coords {
		if d.coords[i].Name == name {
			d.coords[i] = c
			return nil
		}
	}
	d.coords = append(d.coords, c)
	return nil
}

// Coord returns the coordinate with the given name.
func (d *DataArray) Coord(name string) (Coord, bool) {
	for _, c := range d.coords {
		if c.Name == name {
			return c, true
		}
	}
	return Coord{}, false
}

// Coords returns the coordinates in attachment order.
func (d *DataArray) Coords() []Coord {
	return slices.Clone(d.coords)
}

// CoordNames returns coordinate names in attachment order.
func (d *DataArray) CoordNames() []string {
	names := make([]string, len(d.coords))
	for i, c := range d.coords {
		names[i] = c.Name
	}
	return names
}

// SetAttr sets an attribute, keeping the position of an existing key.
func (d *DataArray) SetAttr(key string, value any) {
	for i := range d.attrs {
		if d.attrs[i].Key == key {
			d.attrs[i].Value = value
			return
		}
	}
	d.attrs = append(d.attrs, AttrEntry{Key: key, Value: value})
}

// Attr returns an attribute value.
func (d *DataArray) Attr(key string) (any, bool) {
	for _, a := range d.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Attrs returns the attributes in insertion order.
func (d *DataArray) Attrs() []AttrEntry {
	return slices.Clone(d.attrs)
}

// AttrMap returns the attributes as a map.
func (d *DataArray) AttrMap() map[string]any {
	m := make(map[string]any, len(d.attrs))
	for _, a := range d.attrs {
		m[a.Key] = a.Value
	}
	return m
}

// Clone returns a deep copy.
func (d *DataArray) Clone() *DataArray {
	out := &DataArray{
		name:  d.name,
		dims:  slices.Clone(d.dims),
		data:  d.data.Clone(),
		attrs: slices.Clone(d.attrs),
	}
	for _, c := range d.coords {
		out.coords = append(out.coords, Coord{Name: c.Name, Dims: slices.Clone(c.Dims), Values: c.Values.Clone()})
	}
	return out
}

// Identical reports whether both arrays have the same name, dims, data,
// coordinates (by name) and attributes.
func (d *DataArray) Identical(o *DataArray) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.name != o.name || !d.dims.Equal(o.dims) || !d.data.Equal(o.data) {
		return false
	}
	if len(d.coords) != len(o.coords) {
		return false
	}
	for _, c := range d.coords {
		oc, ok := o.Coord(c.Name)
		if !ok || !c.Dims.Equal(oc.Dims) || !c.Values.Equal(oc.Values) {
			return false
		}
	}
	return maps.EqualFunc(d.AttrMap(), o.AttrMap(), func(a, b any) bool {
		return reflect.DeepEqual(a, b)
	})
}
