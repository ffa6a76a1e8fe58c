package array

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/dimarray/internal/ir"
)

// String renders the array in an xarray-like text form:
//
//	<dimarray.DataArray 'image' (x: 2, y: 2)> float64
//	[[1 1]
//	 [1 1]]
//	Coordinates:
//	    x  (x) int64 [0 0]
//	Attributes:
//	    dpi: 100
func (d *DataArray) String() string {
	var b strings.Builder

	b.WriteString("<dimarray.DataArray ")
	if d.name != "" {
		fmt.Fprintf(&b, "'%s' ", d.name)
	}
	sizes := make([]string, len(d.dims))
	for i, dim := range d.dims {
		sizes[i] = fmt.Sprintf("%s: %d", dim, d.data.shape[i])
	}
	fmt.Fprintf(&b, "(%s)> %s\n", strings.Join(sizes, ", "), d.data.dtype)
	b.WriteString(d.data.Format())
	b.WriteByte('\n')

	if len(d.coords) > 0 {
		width := 0
		for _, c := range d.coords {
			width = max(width, len(c.Name))
		}
		b.WriteString("Coordinates:\n")
		for _, c := range d.coords {
			fmt.Fprintf(&b, "    %-*s (%s) %s %s\n",
				width+1, c.Name, strings.Join(c.Dims, ", "), c.Values.dtype, c.Values.inline())
		}
	}

	if len(d.attrs) > 0 {
		b.WriteString("Attributes:\n")
		for _, a := range d.attrs {
			fmt.Fprintf(&b, "    %s: %v\n", a.Key, a.Value)
		}
	}

	return b.String()
}

// Format renders the elements numpy-style, one row per line for rank >= 2.
func (a *Array) Format() string {
	if len(a.shape) == 0 {
		return a.formatElem(a.data[0])
	}
	var b strings.Builder
	a.format(&b, 0, 0, true)
	return b.String()
}

func (a *Array) inline() string {
	if len(a.shape) == 0 {
		return a.formatElem(a.data[0])
	}
	var b strings.Builder
	a.format(&b, 0, 0, false)
	return b.String()
}

func (a *Array) format(b *strings.Builder, axis, off int, multiline bool) int {
	b.WriteByte('[')
	n := a.shape[axis]
	last := axis == len(a.shape)-1
	for i := 0; i < n; i++ {
		if i > 0 {
			if !last && multiline {
				b.WriteByte('\n')
				b.WriteString(strings.Repeat(" ", axis+1))
			} else {
				b.WriteByte(' ')
			}
		}
		if last {
			b.WriteString(a.formatElem(a.data[off]))
			off++
			continue
		}
		off = a.format(b, axis+1, off, multiline)
	}
	b.WriteByte(']')
	return off
}

func (a *Array) formatElem(v float64) string {
	switch {
	case a.dtype == ir.Bool:
		return strconv.FormatBool(v != 0)
	case a.dtype.IsInteger():
		return strconv.FormatInt(int64(v), 10)
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

// coordJSON is the wire form of a coordinate.
type coordJSON struct {
	Name  string   `json:"name"`
	Dims  []string `json:"dims"`
	DType string   `json:"dtype"`
	Shape []int    `json:"shape"`
	Data  any      `json:"data"`
}

// dataArrayJSON is the wire form of a DataArray.
type dataArrayJSON struct {
	Name   string         `json:"name,omitempty"`
	Dims   []string       `json:"dims"`
	DType  string         `json:"dtype"`
	Shape  []int          `json:"shape"`
	Data   any            `json:"data"`
	Coords []coordJSON    `json:"coords"`
	Attrs  map[string]any `json:"attrs,omitempty"`
}

// MarshalJSON implements json.Marshaler for DataArray.
// Coordinates keep attachment order; attributes are a JSON object.
func (d *DataArray) MarshalJSON() ([]byte, error) {
	out := dataArrayJSON{
		Name:   d.name,
		Dims:   append([]string{}, d.dims...),
		DType:  d.data.dtype.String(),
		Shape:  d.data.Shape(),
		Data:   d.data.Nested(),
		Coords: make([]coordJSON, len(d.coords)),
	}
	for i, c := range d.coords {
		out.Coords[i] = coordJSON{
			Name:  c.Name,
			Dims:  append([]string{}, c.Dims...),
			DType: c.Values.dtype.String(),
			Shape: c.Values.Shape(),
			Data:  c.Values.Nested(),
		}
	}
	if len(d.attrs) > 0 {
		out.Attrs = d.AttrMap()
	}
	return json.Marshal(out)
}
