package yaml

import (
	"bytes"
	"reflect"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bububa/instructor-gemini"
	"github.com/bububa/instructor-gemini/internal"
)

const continuation = "Continue the YAML document exactly where the previous response stopped. Do not repeat earlier lines and do not open a new code fence."

type Encoder struct {
	reqType  reflect.Type
	validate *validator.Validate
}

func NewEncoder(t reflect.Type) *Encoder {
	return &Encoder{
		reqType:  t,
		validate: validator.New(),
	}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return yaml.Unmarshal(internal.StripFence(bs), ret)
}

func (e *Encoder) Validate(req any) error {
	v := reflect.ValueOf(req)
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return e.validate.Struct(req)
}

// Context shows the model a fake instance of the target type.
func (e *Encoder) Context() []byte {
	tValue := reflect.New(e.reqType)
	instance := tValue.Interface()
	if f, ok := instance.(instructor.Faker); ok {
		instance = f.Fake()
	} else if err := gofakeit.Struct(instance); err != nil {
		return nil
	}
	bs, err := e.Marshal(instance)
	if err != nil {
		return nil
	}
	var b bytes.Buffer
	b.WriteString("\nPlease respond with YAML in the following YAML schema:\n")
	b.WriteString("```yaml\n")
	b.Write(bs)
	b.WriteString("```\n")
	b.WriteString("Make sure to return an instance of the YAML, not the schema itself\n")
	return b.Bytes()
}

func (e *Encoder) Continuation() string {
	return continuation
}

func (e *Encoder) MIMEType() string {
	return instructor.MIMETypeText
}

func (e *Encoder) Schema() *instructor.Schema {
	return nil
}
