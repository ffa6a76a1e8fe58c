package harness

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/ir"
	"github.com/roach88/dimarray/internal/schema"
)

// ExpectationError is returned when an expectation fails.
type ExpectationError struct {
	Check    string // expect key that failed
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func mismatch(check string, expected, actual any) *ExpectationError {
	return &ExpectationError{
		Check:    check,
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

// ErrorKind classifies a conversion error as configuration, shape, field or error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, schema.ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, schema.ErrShape), errors.Is(err, array.ErrDimsMismatch), errors.Is(err, array.ErrShape):
		return KindShape
	case errors.Is(err, schema.ErrField):
		return KindField
	default:
		return KindError
	}
}

// CheckExpect evaluates exp against a conversion outcome and returns every
// failed expectation.
func CheckExpect(exp Expect, da *array.DataArray, convErr error) []error {
	if exp.Error != "" {
		if convErr == nil {
			return []error{mismatch("error", exp.Error, "success")}
		}
		if kind := ErrorKind(convErr); kind != exp.Error {
			return []error{mismatch("error", exp.Error, fmt.Sprintf("%s (%v)", kind, convErr))}
		}
		return nil
	}
	if convErr != nil {
		return []error{mismatch("error", "success", fmt.Sprintf("%s (%v)", ErrorKind(convErr), convErr))}
	}

	var errs []error

	if exp.Dims != nil && !slices.Equal([]string(da.Dims()), exp.Dims) {
		errs = append(errs, mismatch("dims", exp.Dims, []string(da.Dims())))
	}

	if exp.Shape != nil && !slices.Equal(da.Shape(), exp.Shape) {
		errs = append(errs, mismatch("shape", exp.Shape, da.Shape()))
	}

	if exp.DType != "" {
		want, err := ir.ParseDType(exp.DType)
		if err != nil {
			errs = append(errs, fmt.Errorf("dtype: %w", err))
		} else if da.DType() != want {
			errs = append(errs, mismatch("dtype", want, da.DType()))
		}
	}

	if exp.Name != nil && da.Name() != *exp.Name {
		errs = append(errs, mismatch("name", *exp.Name, da.Name()))
	}

	for _, name := range ir.SortedKeys(exp.Coords) {
		want := exp.Coords[name]
		c, ok := da.Coord(name)
		if !ok {
			errs = append(errs, mismatch("coords."+name, want, "missing"))
			continue
		}
		if !slices.Equal(c.Values.Shape(), want) {
			errs = append(errs, mismatch("coords."+name, want, c.Values.Shape()))
		}
	}

	for _, name := range ir.SortedKeys(exp.CoordValues) {
		c, ok := da.Coord(name)
		if !ok {
			errs = append(errs, mismatch("coord_values."+name, exp.CoordValues[name], "missing"))
			continue
		}
		if err := checkValues("coord_values."+name, exp.CoordValues[name], c.Values); err != nil {
			errs = append(errs, err)
		}
	}

	for _, key := range ir.SortedKeys(exp.Attrs) {
		want := exp.Attrs[key]
		got, ok := da.Attr(key)
		if !ok {
			errs = append(errs, mismatch("attrs."+key, want, "missing"))
			continue
		}
		if !looseEqual(want, got) {
			errs = append(errs, mismatch("attrs."+key, want, got))
		}
	}

	if exp.Data != nil {
		if err := checkValues("data", exp.Data, da.Data()); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// checkValues compares a decoded nested list against an array by shape and
// element values. dtype is not compared.
func checkValues(check string, expected any, got *array.Array) error {
	want, err := array.FromValue(expected)
	if err != nil {
		return fmt.Errorf("%s: %w", check, err)
	}
	if !slices.Equal(want.Shape(), got.Shape()) || !slices.Equal(want.Values(), got.Values()) {
		return mismatch(check, want.Format(), got.Format())
	}
	return nil
}

// looseEqual compares decoded values, treating all numeric types alike.
func looseEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}

	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !looseEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !looseEqual(v, bv[k]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
