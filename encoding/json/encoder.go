package json

import (
	"bytes"
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/bububa/instructor-gemini"
	"github.com/bububa/instructor-gemini/internal"
	"github.com/bububa/instructor-gemini/internal/ljson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const continuationPrefix = "Continue. follow this schema: "

// Encoder decodes JSON output of a compiled schema. A strict encoder sends the
// schema as responseSchema; otherwise the schema is stated in the prompt.
type Encoder struct {
	schema   *instructor.Schema
	strict   bool
	validate *validator.Validate
}

func NewEncoder(t reflect.Type, strict bool, opts ...instructor.SchemaOption) (*Encoder, error) {
	schema, err := instructor.NewSchema(t, opts...)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		schema:   schema,
		strict:   strict,
		validate: validator.New(),
	}, nil
}

// Unmarshal maps the wire property names back onto the Go type and decodes.
// Output that is not valid JSON as a whole has its code fences and
// surrounding prose cleaned up first.
func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	var raw any
	if err := json.Unmarshal(bytes.TrimSpace(bs), &raw); err != nil {
		data := cleanup(bs)
		if len(data) == 0 {
			return errors.New("no JSON in model output")
		}
		raw = nil
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	remapped, err := json.Marshal(e.schema.Remap(raw))
	if err != nil {
		return err
	}
	return ljson.Unmarshal(remapped, ret)
}

func (e *Encoder) Validate(req any) error {
	v := reflect.ValueOf(req)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return e.validate.Struct(req)
}

func (e *Encoder) Context() []byte {
	if e.strict {
		return nil
	}
	var b bytes.Buffer
	b.WriteString("\nPlease respond with JSON in the following JSON schema:\n")
	b.WriteString("```json\n")
	b.WriteString(e.schema.String())
	b.WriteString("\n```\n")
	b.WriteString("Make sure to return an instance of the JSON, not the schema itself\n")
	return b.Bytes()
}

func (e *Encoder) Continuation() string {
	bs, err := json.Marshal(e.schema)
	if err != nil {
		return "Continue."
	}
	return continuationPrefix + string(bs)
}

func (e *Encoder) MIMEType() string {
	return instructor.MIMETypeJSON
}

func (e *Encoder) Schema() *instructor.Schema {
	if !e.strict {
		return nil
	}
	return e.schema
}

// cleanup the JSON by removing code fences, prefixes and postfixes
func cleanup(bs []byte) []byte {
	trimmed := internal.StripFence(bs)
	trimmed = trimPrefixBeforeJSON(trimmed)
	return trimPostfixAfterJSON(trimmed)
}

// Removes any prefixes before the JSON (like "Sure, here you go:")
func trimPrefixBeforeJSON(bs []byte) []byte {
	startObject := bytes.IndexByte(bs, '{')
	startArray := bytes.IndexByte(bs, '[')

	var start int
	switch {
	case startObject == -1 && startArray == -1:
		return bs
	case startObject == -1:
		start = startArray
	case startArray == -1:
		start = startObject
	default:
		start = min(startObject, startArray)
	}
	return bs[start:]
}

// Removes any postfixes after the JSON
func trimPostfixAfterJSON(bs []byte) []byte {
	endObject := bytes.LastIndexByte(bs, '}')
	endArray := bytes.LastIndexByte(bs, ']')

	end := max(endObject, endArray)
	if end == -1 {
		return bs
	}
	return bs[:end+1]
}
