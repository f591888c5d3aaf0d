package gemini

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/bububa/instructor-gemini"
	"github.com/bububa/instructor-gemini/encoding"
)

// Instructor drives the Gemini generateContent endpoint. It is safe for
// concurrent use; SetDefaults never affects a call already in flight.
type Instructor struct {
	instructor.Options
	defaults atomic.Pointer[instructor.PromptOptions]
	encoders sync.Map
}

var _ instructor.Instructor = (*Instructor)(nil)

func New(defaults instructor.PromptOptions, opts ...instructor.Option) *Instructor {
	i := &Instructor{
		Options: instructor.NewOptions(opts...),
	}
	i.SetDefaults(defaults)
	return i
}

// Defaults returns a copy of the current default prompt options.
func (i *Instructor) Defaults() instructor.PromptOptions {
	if o := i.defaults.Load(); o != nil {
		return o.Copy()
	}
	return instructor.DefaultPromptOptions()
}

// SetDefaults atomically replaces the default prompt options.
func (i *Instructor) SetDefaults(o instructor.PromptOptions) {
	cp := o.Copy()
	i.defaults.Store(&cp)
}

// NewPrompt starts a conversation seeded with the current defaults.
func (i *Instructor) NewPrompt(contents ...*instructor.Content) *instructor.Prompt {
	return instructor.NewPrompt(i.Defaults(), contents...)
}

// encoder returns the configured encoder or the mode's encoder for t. Mode
// encoders are compiled once per type.
func (i *Instructor) encoder(t reflect.Type) (instructor.Encoder, error) {
	if enc := i.Encoder(); enc != nil {
		return enc, nil
	}
	if enc, ok := i.encoders.Load(t); ok {
		return enc.(instructor.Encoder), nil
	}
	enc, err := encoding.PredefinedEncoder(i.Mode(), t, instructor.WithSchemaRecursionDepth(i.RecursionDepth()))
	if err != nil {
		return nil, instructor.AsError(err, instructor.ConfigurationError)
	}
	actual, _ := i.encoders.LoadOrStore(t, enc)
	return actual.(instructor.Encoder), nil
}
