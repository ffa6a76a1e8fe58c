package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/compiler"
	"github.com/roach88/dimarray/internal/ir"
	"github.com/roach88/dimarray/internal/schema"
)

// ErrUnknownSchema means a case names a schema no spec declares.
var ErrUnknownSchema = errors.New("unknown schema")

// Harness converts scenario cases against a fixed set of compiled schemas.
type Harness struct {
	schemas map[string]*schema.Schema
	broken  map[string]error // schemas whose build failed, by name
	logger  *slog.Logger
}

// New builds every spec with the creators in reg. A spec that fails to
// build is remembered so cases against it report a configuration error.
func New(specs []ir.SchemaSpec, reg *schema.Registry, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &Harness{
		schemas: make(map[string]*schema.Schema, len(specs)),
		broken:  make(map[string]error),
		logger:  logger,
	}
	for _, spec := range specs {
		s, err := schema.NewFromRegistry(spec, reg)
		if err != nil {
			logger.Debug("schema build failed", "schema", spec.Name, "error", err)
			h.broken[spec.Name] = err
			continue
		}
		logger.Debug("schema built", "schema", spec.Name, "id", s.ID())
		h.schemas[spec.Name] = s
	}
	return h
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Compile the scenario's CUE specs
// 2. Build each schema with the built-in creators
// 3. Convert each case and check its expectations
// 4. Return result with pass/fail, per-case output and errors
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, nil)
}

// RunWithLogger is Run with diagnostic logging sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	specs, err := compiler.CompileFiles(scenario.Specs)
	if err != nil {
		return nil, fmt.Errorf("failed to compile specs: %w", err)
	}

	h := New(specs, schema.NewRegistry(), logger)
	result := NewResult()
	for _, c := range scenario.Cases {
		result.AddCase(h.RunCase(c))
	}
	return result, nil
}

// RunCase converts one case and checks it.
func (h *Harness) RunCase(c Case) CaseResult {
	h.logger.Debug("running case", "case", c.Name, "schema", c.Schema)

	da, err := h.Convert(c)
	res := CaseResult{Name: c.Name, Pass: true, Output: Snapshot(da, err)}
	for _, e := range CheckExpect(c.Expect, da, err) {
		res.Pass = false
		res.Errors = append(res.Errors, e.Error())
	}
	return res
}

// Convert produces the DataArray a case describes.
func (h *Harness) Convert(c Case) (*array.DataArray, error) {
	if err, ok := h.broken[c.Schema]; ok {
		return nil, err
	}
	s, ok := h.schemas[c.Schema]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSchema, c.Schema)
	}

	sh, err := schema.ParseShorthand(c.Shorthand)
	if err != nil {
		return nil, err
	}

	var shape []int
	if sh != schema.ShorthandNew {
		shape, err = array.ParseShape(c.Shape)
		if err != nil {
			return nil, err
		}
	}
	return s.Construct(sh, shape, c.Fill, c.Values)
}

// Schema returns a built schema by name.
func (h *Harness) Schema(name string) (*schema.Schema, bool) {
	s, ok := h.schemas[name]
	return s, ok
}
