package ljson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	A int `json:"a"`
}

type record struct {
	Field1    []map[string]string `json:"field1"`
	NestedObj nested              `json:"nested"`
	Numbers   int                 `json:"numbers"`
	Count     uint                `json:"count"`
	BoolVal   bool                `json:"bool_val"`
	Label     string              `json:"label"`
	Pointer   *float64            `json:"pointer"`
	When      time.Time           `json:"when"`
}

func TestUnmarshalLoose(t *testing.T) {
	in := `{
		"field1": "[{\"sub1\": \"xxx\"}, {\"sub2\": \"yyy\"}]",
		"nested": "{\"a\": \"123\"}",
		"numbers": "456",
		"bool_val": "true",
		"label": 7,
		"pointer": "1.5",
		"when": "2024-05-01T10:00:00Z"
	}`

	var got record
	require.NoError(t, Unmarshal([]byte(in), &got))
	assert.Equal(t, []map[string]string{{"sub1": "xxx"}, {"sub2": "yyy"}}, got.Field1)
	assert.Equal(t, 123, got.NestedObj.A)
	assert.Equal(t, 456, got.Numbers)
	assert.True(t, got.BoolVal)
	assert.Equal(t, "7", got.Label)
	require.NotNil(t, got.Pointer)
	assert.Equal(t, 1.5, *got.Pointer)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got.When)
}

func TestUnmarshalArrayAndMap(t *testing.T) {
	var list []record
	require.NoError(t, Unmarshal([]byte(`[{"numbers":"1"},{"numbers":2}]`), &list))
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Numbers)
	assert.Equal(t, 2, list[1].Numbers)

	m := make(map[string]string)
	require.NoError(t, Unmarshal([]byte(`"{\"sub1\": \"xxx\", \"sub2\": 123}"`), &m))
	assert.Equal(t, map[string]string{"sub1": "xxx", "sub2": "123"}, m)
}

func TestUnmarshalCaseInsensitiveKeys(t *testing.T) {
	var got struct {
		Name string
	}
	require.NoError(t, Unmarshal([]byte(`{"NAME":5}`), &got))
	assert.Equal(t, "5", got.Name)
}

func TestUnmarshalMismatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"object into int", `{"numbers":{"x":1}}`},
		{"array into struct", `{"nested":[1,2]}`},
		{"bad number", `{"numbers":"many"}`},
		{"fraction into int", `{"numbers":30.7}`},
		{"fraction into uint", `{"count":"2.5"}`},
		{"negative into uint", `{"count":-2}`},
		{"syntax", `{"numbers":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got record
			assert.Error(t, Unmarshal([]byte(tt.in), &got))
		})
	}
}

func TestUnmarshalWholeFloats(t *testing.T) {
	var got record
	require.NoError(t, Unmarshal([]byte(`{"numbers":30.0,"count":"7"}`), &got))
	assert.Equal(t, 30, got.Numbers)
	assert.Equal(t, uint(7), got.Count)
}

func TestUnmarshalValueTarget(t *testing.T) {
	var got record
	assert.Error(t, UnmarshalValue(map[string]any{}, got))
}
