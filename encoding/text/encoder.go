package text

import (
	"fmt"

	"github.com/bububa/instructor-gemini"
)

const continuation = "Continue."

// Encoder hands the model output back untouched.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	switch v := ret.(type) {
	case *string:
		*v = string(bs)
	case *[]byte:
		*v = append((*v)[:0], bs...)
	default:
		return fmt.Errorf("text encoder cannot decode into %T", ret)
	}
	return nil
}

func (e *Encoder) Context() []byte {
	return nil
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
