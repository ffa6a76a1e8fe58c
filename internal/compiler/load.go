package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/dimarray/internal/ir"
)

// SchemaRoot is the top-level CUE field that holds schema declarations.
const SchemaRoot = "dataarray"

// CompileSchemas compiles every declaration under the dataarray field of v,
// in source order. It collects all errors rather than stopping at the first.
func CompileSchemas(v cue.Value) ([]ir.SchemaSpec, []error) {
	rootVal := v.LookupPath(cue.ParsePath(SchemaRoot))
	if !rootVal.Exists() {
		return nil, nil
	}

	iter, err := rootVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var specs []ir.SchemaSpec
	var errs []error
	for iter.Next() {
		spec, err := CompileSchema(iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, *spec)
	}
	return specs, errs
}

// CompileFiles compiles each CUE file on its own and returns all declared
// schemas. Files are not unified, so two files may not declare the same
// schema name.
func CompileFiles(paths []string) ([]ir.SchemaSpec, error) {
	ctx := cuecontext.New()
	seen := make(map[string]string)

	var all []ir.SchemaSpec
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}

		specs, errs := CompileSchemas(v)
		if len(errs) > 0 {
			return nil, errs[0]
		}
		for _, spec := range specs {
			if prev, dup := seen[spec.Name]; dup {
				return nil, fmt.Errorf("schema %q declared in both %s and %s", spec.Name, prev, path)
			}
			seen[spec.Name] = path
			all = append(all, spec)
		}
	}
	return all, nil
}
