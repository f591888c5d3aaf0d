package instructor

// Encoder turns the concatenated model output into the caller's type and
// describes the expected format to the model.
type Encoder interface {
	Unmarshal([]byte, any) error
	// Context is appended to the prompt before the first round. Nil when the
	// format is conveyed by Schema alone.
	Context() []byte
	// Continuation is the user turn sent after a round stopped at the token
	// limit.
	Continuation() string
	MIMEType() string
	// Schema is sent as responseSchema on the first round, nil for none.
	Schema() *Schema
}

type Validator interface {
	Validate(any) error
}

type Faker interface {
	Fake() any
}
