package json

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/instructor-gemini"
)

type person struct {
	Name  string `json:"name" validate:"required"`
	Age   int    `json:"age"`
	Email string `json:"email" gemini:"contact,format=email"`
}

func TestEncoderUnmarshal(t *testing.T) {
	enc, err := NewEncoder(reflect.TypeOf(person{}), true)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want person
	}{
		{
			name: "plain",
			in:   `{"name":"Ada","age":30,"contact":"ada@example.com"}`,
			want: person{Name: "Ada", Age: 30, Email: "ada@example.com"},
		},
		{
			name: "fenced with prose",
			in:   "Sure, here you go:\n```json\n{\"name\":\"Ada\",\"age\":30}\n```\nAnything else?",
			want: person{Name: "Ada", Age: 30},
		},
		{
			name: "loose scalars",
			in:   `{"name":"Ada","age":"30"}`,
			want: person{Name: "Ada", Age: 30},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got person
			require.NoError(t, enc.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncoderUnmarshalFencedValue(t *testing.T) {
	type snippet struct {
		Code string `json:"code"`
	}
	enc, err := NewEncoder(reflect.TypeOf(snippet{}), true)
	require.NoError(t, err)

	var got snippet
	in := "{\"code\":\"```go\\nfmt.Println(1)\\n```\"}"
	require.NoError(t, enc.Unmarshal([]byte(in), &got))
	assert.Equal(t, "```go\nfmt.Println(1)\n```", got.Code)
}

func TestEncoderUnmarshalShapeMismatch(t *testing.T) {
	enc, err := NewEncoder(reflect.TypeOf(person{}), true)
	require.NoError(t, err)

	var got person
	assert.Error(t, enc.Unmarshal([]byte(`{"name":{"first":"Ada"}}`), &got))
	assert.Error(t, enc.Unmarshal([]byte(`no json here`), &got))
}

func TestEncoderModes(t *testing.T) {
	strict, err := NewEncoder(reflect.TypeOf(person{}), true)
	require.NoError(t, err)
	assert.NotNil(t, strict.Schema())
	assert.Nil(t, strict.Context())
	assert.Equal(t, instructor.MIMETypeJSON, strict.MIMEType())

	loose, err := NewEncoder(reflect.TypeOf(person{}), false)
	require.NoError(t, err)
	assert.Nil(t, loose.Schema())
	assert.Contains(t, string(loose.Context()), `"contact"`)
}

func TestEncoderContinuation(t *testing.T) {
	enc, err := NewEncoder(reflect.TypeOf(person{}), true)
	require.NoError(t, err)

	got := enc.Continuation()
	require.True(t, strings.HasPrefix(got, "Continue. follow this schema: "))
	assert.Contains(t, got, `"propertyOrdering":["name","age","contact"]`)
}

func TestEncoderValidate(t *testing.T) {
	enc, err := NewEncoder(reflect.TypeOf(person{}), true)
	require.NoError(t, err)

	assert.NoError(t, enc.Validate(&person{Name: "Ada"}))
	assert.Error(t, enc.Validate(&person{}))
	assert.NoError(t, enc.Validate(&[]person{}))
}
