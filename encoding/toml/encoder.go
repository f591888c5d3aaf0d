package toml

import (
	"bytes"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"

	"github.com/bububa/instructor-gemini"
	"github.com/bububa/instructor-gemini/internal"
)

const continuation = "Continue the TOML document exactly where the previous response stopped. Do not repeat earlier keys and do not open a new code fence."

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
	return toml.Marshal(v)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return toml.Unmarshal(internal.StripFence(bs), ret)
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

func (e *Encoder) Context() []byte {
	tValue := reflect.New(e.reqType)
	instance := tValue.Interface()
	if f, ok := tValue.Elem().Interface().(instructor.Faker); ok {
		instance = f.Fake()
	} else if err := gofakeit.Struct(instance); err != nil {
		return nil
	}
	bs, err := e.Marshal(instance)
	if err != nil {
		return nil
	}
	var b bytes.Buffer
	b.WriteString("\nPlease respond with TOML in the following TOML schema:\n\n")
	b.WriteString("```toml\n")
	b.Write(bs)
	b.WriteString("```")
	b.WriteString("\nMake sure to return an instance of the TOML, not the schema itself\n")
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
