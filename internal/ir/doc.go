// Package ir provides the declaration types for dimarray schemas.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the declaration layer
// free of the array backend and of any CUE or CLI concerns.
//
// Key design constraints:
//   - A field's semantic type is a closed TypeTag variant resolved once,
//     when the field list is built, never re-inspected per call
//   - Declarations are values: a SchemaSpec is built, never patched in place
//   - All JSON tags use snake_case
//   - Schema fingerprints are computed over canonical JSON only
package ir
