// Package schema turns a declared field list into a labeled-array schema.
//
// The three operations at the center of the package are:
//
//   - Classify partitions declared fields into one primary data field,
//     coordinate fields and passthrough fields.
//   - BuildCreator wraps a raw constructor so its result is labeled with
//     fixed dims and cast to a fixed dtype, dropping unknown arguments.
//   - Assemble attaches coordinate values, broadcast to the axis sizes they
//     name, to a primary array.
//
// Schema ties them together. A Schema is built once, by New or by Builder,
// and is immutable afterwards; converting an instance allocates a fresh
// DataArray on every call and shares no state between calls.
//
// Setup mistakes are reported as *ConfigurationError and abort schema
// construction. Per-call data mismatches are reported as *ShapeError.
// Errors from the raw constructor or the array backend pass through
// unchanged.
package schema
