package encoding

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/bububa/instructor-gemini"

	jsonenc "github.com/bububa/instructor-gemini/encoding/json"
	"github.com/bububa/instructor-gemini/encoding/text"
	"github.com/bububa/instructor-gemini/encoding/toml"
	"github.com/bububa/instructor-gemini/encoding/yaml"
)

var stringType = reflect.TypeOf("")

// PredefinedEncoder returns the encoder of mode for target type t. A plain
// string target always gets the raw text encoder and no schema is compiled.
func PredefinedEncoder(mode instructor.Mode, t reflect.Type, opts ...instructor.SchemaOption) (instructor.Encoder, error) {
	if t == nil {
		return nil, errors.New("nil target type")
	}
	if t == stringType {
		return text.NewEncoder(), nil
	}
	switch mode {
	case instructor.ModeJSONSchema, "":
		return jsonenc.NewEncoder(t, true, opts...)
	case instructor.ModeJSON:
		return jsonenc.NewEncoder(t, false, opts...)
	case instructor.ModeYAML:
		return yaml.NewEncoder(t), nil
	case instructor.ModeTOML:
		return toml.NewEncoder(t), nil
	}
	return nil, fmt.Errorf("no predefined encoder for mode %q", mode)
}
