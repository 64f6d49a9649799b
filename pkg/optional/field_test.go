package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  Field[string]   `json:"name"`
	Tags  Field[[]string] `json:"tags"`
	Count Field[int]      `json:"count"`
}

func TestField_Absent(t *testing.T) {
	t.Parallel()

	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{}`), &d))

	require.False(t, d.Name.Present)
	require.False(t, d.Tags.Present)
	require.False(t, d.Count.Present)
	require.False(t, d.Name.HasValue())
}

func TestField_ExplicitNull(t *testing.T) {
	t.Parallel()

	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{"name": null, "tags": null}`), &d))

	require.True(t, d.Name.Present)
	require.True(t, d.Name.Null)
	require.False(t, d.Name.HasValue())

	require.True(t, d.Tags.Present)
	require.True(t, d.Tags.Null)
	require.Nil(t, d.Tags.Value)

	require.False(t, d.Count.Present)
}

func TestField_Value(t *testing.T) {
	t.Parallel()

	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{"name":"bob","tags":["a","b"],"count":0}`), &d))

	require.True(t, d.Name.HasValue())
	require.Equal(t, "bob", d.Name.Value)
	require.Equal(t, []string{"a", "b"}, d.Tags.Value)

	// Нулевое значение типа не путается с отсутствием ключа.
	require.True(t, d.Count.HasValue())
	require.Equal(t, 0, d.Count.Value)
}

func TestField_WrongShape(t *testing.T) {
	t.Parallel()

	var d doc
	err := json.Unmarshal([]byte(`{"tags":"not-an-array"}`), &d)
	require.Error(t, err)

	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestField_NullAfterValueResetsValue(t *testing.T) {
	t.Parallel()

	f := Of("x")
	require.NoError(t, f.UnmarshalJSON([]byte(" null ")))
	require.True(t, f.Null)
	require.Equal(t, "", f.Value)
}

func TestField_Marshal(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Of(42))
	require.NoError(t, err)
	require.JSONEq(t, `42`, string(b))

	b, err = json.Marshal(Null[int]())
	require.NoError(t, err)
	require.JSONEq(t, `null`, string(b))
}
