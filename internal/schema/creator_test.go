package schema

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/roach88/dimarray/internal/array"
	"github.com/roach88/dimarray/internal/ir"
)

var xy = ir.ShapeSpec{Dims: ir.Dims{"x", "y"}, DType: ir.Float64}

// scaledConstructor multiplies data by scale.
func scaledConstructor() Constructor {
	return Constructor{
		Name: "scaled",
		Params: []ir.Param{
			{Name: "data", Type: "array"},
			{Name: "scale", Type: "float64", HasDefault: true, Default: 2.0},
		},
		Fn: func(args map[string]any) (any, error) {
			a, err := array.FromValue(args["data"])
			if err != nil {
				return nil, err
			}
			s := args["scale"].(float64)
			vals := a.Values()
			for i := range vals {
				vals[i] *= s
			}
			return array.New(a.DType(), a.Shape(), vals)
		},
	}
}

func TestBuildCreatorUntypedParam(t *testing.T) {
	ctor := NewConstructor()
	ctor.Params = append(ctor.Params, ir.Param{Name: "extra"})

	_, err := BuildCreator(ctor, xy)
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeUntypedParam, cfgErr.Code)
	assert.Equal(t, "extra", cfgErr.Field)
}

func TestBuildCreatorVariadicParams(t *testing.T) {
	for _, kind := range []ir.ParamKind{ir.ParamVarPositional, ir.ParamVarKeyword} {
		ctor := NewConstructor()
		ctor.Params = append(ctor.Params, ir.Param{Name: "rest", Type: "any", Kind: kind})

		_, err := BuildCreator(ctor, xy)
		require.Error(t, err, kind.String())
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, ErrCodeVariadicParam, cfgErr.Code)
		assert.Equal(t, "rest", cfgErr.Field)
		assert.Contains(t, cfgErr.Message, kind.String())
	}
}

func TestBuildCreatorOtherConfigErrors(t *testing.T) {
	_, err := BuildCreator(Constructor{Name: "nil"}, xy)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = BuildCreator(NewConstructor(), ir.ShapeSpec{Dims: ir.Dims{"x", "x"}})
	assert.True(t, errors.Is(err, ErrConfiguration))

	dup := NewConstructor()
	dup.Params = append(dup.Params, dup.Params[0])
	_, err = BuildCreator(dup, xy)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestCreatorCallLabelsAndCasts(t *testing.T) {
	c, err := BuildCreator(NewConstructor(), ir.ShapeSpec{Dims: ir.Dims{"x", "y"}, DType: ir.Int32})
	require.NoError(t, err)

	da, err := c.Call(map[string]any{"data": [][]float64{{1.7, 2}, {3, 4}}})
	require.NoError(t, err)

	assert.Equal(t, ir.Dims{"x", "y"}, da.Dims())
	assert.Equal(t, ir.Int32, da.DType())
	assert.Equal(t, []float64{1, 2, 3, 4}, da.Data().Values())
}

func TestCreatorAcceptsMatrixResult(t *testing.T) {
	ctor := Constructor{
		Name:   "transpose",
		Params: []ir.Param{{Name: "m", Type: "matrix"}},
		Fn: func(args map[string]any) (any, error) {
			return args["m"].(*mat.Dense).T(), nil
		},
	}
	c, err := BuildCreator(ctor, xy)
	require.NoError(t, err)

	da, err := c.Call(map[string]any{"m": mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, da.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, da.Data().Values())
}

func TestCreatorDropsUnknownKeys(t *testing.T) {
	c, err := BuildCreator(scaledConstructor(), xy)
	require.NoError(t, err)

	data := [][]float64{{1, 2}, {3, 4}}
	known, err := c.Call(map[string]any{"data": data, "scale": 3.0})
	require.NoError(t, err)

	superset, err := c.Call(map[string]any{"data": data, "scale": 3.0, "x": 5, "typo": "ignored"})
	require.NoError(t, err)

	assert.True(t, known.Identical(superset))
	assert.Equal(t, []float64{3, 6, 9, 12}, superset.Data().Values())
}

func TestCreatorFillsDefaults(t *testing.T) {
	c, err := BuildCreator(scaledConstructor(), xy)
	require.NoError(t, err)

	da, err := c.Call(map[string]any{"data": [][]float64{{1}}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, da.Data().Values())
}

func TestCreatorMissingRequired(t *testing.T) {
	c, err := BuildCreator(scaledConstructor(), xy)
	require.NoError(t, err)

	_, err = c.Call(map[string]any{"scale": 1.0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data")
	assert.False(t, errors.Is(err, ErrConfiguration), "missing args are a call-time error")
}

func TestCreatorPropagatesConstructorErrors(t *testing.T) {
	boom := errors.New("boom")
	c, err := BuildCreator(Constructor{
		Name:   "failing",
		Params: []ir.Param{{Name: "data", Type: "array"}},
		Fn:     func(map[string]any) (any, error) { return nil, boom },
	}, xy)
	require.NoError(t, err)

	_, err = c.Call(map[string]any{"data": 1})
	assert.Same(t, boom, err)
}

func TestCreatorRankMismatchFromBackend(t *testing.T) {
	c, err := BuildCreator(NewConstructor(), xy)
	require.NoError(t, err)

	_, err = c.Call(map[string]any{"data": []float64{1, 2, 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, array.ErrDimsMismatch))
}

func TestCreatorExposesSignature(t *testing.T) {
	c, err := BuildCreator(scaledConstructor(), xy)
	require.NoError(t, err)

	assert.Equal(t, "scaled", c.Name())
	params := c.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "data", params[0].Name)
	assert.Equal(t, map[string]any{"scale": 2.0}, c.Defaults())
	assert.True(t, c.Accepts("scale"))
	assert.False(t, c.Accepts("x"))
	assert.Equal(t, xy, c.Shape())
}

func TestCreatorConcurrentCalls(t *testing.T) {
	c, err := BuildCreator(scaledConstructor(), xy)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			da, err := c.Call(map[string]any{"data": [][]float64{{float64(n)}}, "scale": 1.0})
			if err != nil {
				errs <- err
				return
			}
			if got := da.Data().Values()[0]; got != float64(n) {
				errs <- fmt.Errorf("call %d got %v", n, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
