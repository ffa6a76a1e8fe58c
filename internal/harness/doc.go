// Package harness provides conformance testing for DataArray schemas.
//
// The harness compiles CUE schema declarations, converts each case's field
// values into a labeled array and checks the result against the case's
// expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs:
//	  - image.cue
//	cases:
//	  - name: ones
//	    schema: Image
//	    shorthand: ones
//	    shape: [2, 3]
//	    values: { dpi: 300 }
//	    expect:
//	      dims: [x, y]
//	      shape: [2, 3]
//	      dtype: float64
//	      name: image
//	      coords: { x: [2], y: [3] }
//	      attrs: { dpi: 300 }
//	  - name: bad_coordinate
//	    schema: Image
//	    values: { data: [[1, 2]], x: [1, 2, 3] }
//	    expect:
//	      error: shape
//
// # Expectations
//
// Every expect key is optional and only the keys present are checked:
//
//   - dims, shape, dtype, name: properties of the resulting array
//   - coords: coordinate name to expected coordinate shape
//   - coord_values: coordinate name to expected (nested) values
//   - attrs: attributes that must be present with equal values
//   - data: expected (nested) primary values
//   - error: the expected failure kind: configuration, shape, field or error
//
// # Deterministic Output
//
// Case outputs are snapshotted as canonical JSON, so identical inputs give
// byte-identical golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/image.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
