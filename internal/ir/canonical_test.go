package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"b": 1, "a": "x", "c": true})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1,"c":true}`, string(data))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes to surrogates 0xD83D.. which sort before U+FB01 in UTF-16
	// but after it in UTF-8.
	data, err := MarshalCanonical(map[string]any{"\ufb01": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\ufb01\":1}", string(data))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(data))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	data, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(data))

	data, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(data))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := "e\u0301"
	data, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(data))
}

func TestMarshalCanonicalNumbers(t *testing.T) {
	data, err := MarshalCanonical([]any{1, int64(2), 3.0, 0.5, float32(1.5)})
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3,0.5,1.5]`, string(data))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(math.NaN())
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"k": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `value for key "k"`)
}

func TestMarshalCanonicalTypedSlices(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"dims":  Dims{"x", "y"},
		"dtype": Float64,
		"shape": []int{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"dims":["x","y"],"dtype":"float64","shape":[2,3]}`, string(data))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
}
