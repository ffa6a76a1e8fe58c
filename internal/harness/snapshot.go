package harness

import (
	"fmt"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/ir"
)

// Snapshot renders a conversion outcome as a map accepted by
// ir.MarshalCanonical. Failures record only the error kind and message.
func Snapshot(da *array.DataArray, err error) map[string]any {
	if err != nil {
		return map[string]any{
			"error":   ErrorKind(err),
			"message": err.Error(),
		}
	}

	out := map[string]any{
		"dims":  []string(da.Dims()),
		"dtype": string(da.DType()),
		"shape": da.Shape(),
		"data":  da.Data().Nested(),
	}
	if da.Name() != "" {
		out["name"] = da.Name()
	}

	if coords := da.Coords(); len(coords) > 0 {
		list := make([]any, len(coords))
		for i, c := range coords {
			list[i] = map[string]any{
				"name":  c.Name,
				"dims":  []string(c.Dims),
				"dtype": string(c.Values.DType()),
				"shape": c.Values.Shape(),
				"data":  c.Values.Nested(),
			}
		}
		out["coords"] = list
	}

	if attrs := da.Attrs(); len(attrs) > 0 {
		m := make(map[string]any, len(attrs))
		for _, a := range attrs {
			if v, ok := canonicalValue(a.Value); ok {
				m[a.Key] = v
			}
		}
		out["attrs"] = m
	}
	return out
}

// canonicalValue converts a decoded value to one ir.MarshalCanonical
// accepts. nil reports false; unknown types fall back to their %v text.
func canonicalValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string, bool, int, int64, float64, ir.DType:
		return val, true
	case int32:
		return int64(val), true
	case float32:
		return float64(val), true
	case []any:
		out := make([]any, 0, len(val))
		for _, elem := range val {
			if c, ok := canonicalValue(elem); ok {
				out = append(out, c)
			}
		}
		return out, true
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			if c, ok := canonicalValue(elem); ok {
				out[k] = c
			}
		}
		return out, true
	default:
		return fmt.Sprintf("%v", val), true
	}
}
