// Package array is the array backend for dimarray.
//
// It supplies the primitives the schema layer treats as opaque:
// "construct an array of shape S and dtype D filled with V", casting,
// and "attach a named array to the coordinate table under axis names".
//
// Arrays are immutable once built. Every constructor copies its input and
// every method that changes shape or dtype returns a new Array, so a
// DataArray handed to a caller never aliases memory held elsewhere.
//
// Storage is row-major float64. Values are cast to the array's dtype on
// construction, which means int64 values beyond 2^53 lose precision.
package array
