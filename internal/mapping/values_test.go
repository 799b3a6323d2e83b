package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_UnmarshalPreservesKeyOrder(t *testing.T) {
	var v Values
	require.NoError(t, json.Unmarshal([]byte(`{"z":"1","a":["x","y"],"m":{"k":true},"n":12.50}`), &v))

	assert.Equal(t, []string{"z", "a", "m", "n"}, v.Keys())

	n, _ := v.Get("n")
	assert.Equal(t, json.Number("12.50"), n)

	out, err := json.Marshal(&v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":"1","a":["x","y"],"m":{"k":true},"n":12.50}`, string(out))
	assert.Equal(t, `{"z":"1","a":["x","y"],"m":{"k":true},"n":12.50}`, string(out))
}

func TestValues_SetKeepsPosition(t *testing.T) {
	v := ValuesFromPairs("a", 1, "b", 2)
	v.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, v.Keys())
	a, _ := v.Get("a")
	assert.Equal(t, 3, a)
}

func TestValues_UnmarshalRejectsNonObject(t *testing.T) {
	var v Values
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &v))
}

func TestValues_UnmarshalNull(t *testing.T) {
	var v Values
	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.Equal(t, 0, v.Len())
}

func TestValues_InsideStruct(t *testing.T) {
	var req struct {
		Data *Values `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"b":"1","a":"2"}}`), &req))
	require.NotNil(t, req.Data)
	assert.Equal(t, []string{"b", "a"}, req.Data.Keys())
}

func TestValues_ZeroValueIsUsable(t *testing.T) {
	var v Values
	assert.False(t, v.Has("a"))
	assert.Nil(t, v.Keys())

	v.Set("a", "x")
	out, err := json.Marshal(&v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x"}`, string(out))
}

func TestValues_DuplicateKeysKeepFirstPosition(t *testing.T) {
	var v Values
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &v))
	assert.Equal(t, []string{"a", "b"}, v.Keys())
	a, _ := v.Get("a")
	assert.Equal(t, "3", a)
}
