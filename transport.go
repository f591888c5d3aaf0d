package instructor

import "context"

// Endpoint identifies where a round is sent.
type Endpoint struct {
	Model  string
	APIKey string
}

// Transport sends one serialized generateContent request and returns the raw
// response body. Implementations report non-success responses as *Error with
// Kind TransportError and must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, endpoint Endpoint, body []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, endpoint Endpoint, body []byte) ([]byte, error)

func (f TransportFunc) Send(ctx context.Context, endpoint Endpoint, body []byte) ([]byte, error) {
	return f(ctx, endpoint, body)
}

// NewStatusError reports a non-success HTTP response.
func NewStatusError(statusCode int, body []byte) *Error {
	return &Error{
		Kind:       TransportError,
		StatusCode: statusCode,
		Body:       string(body),
	}
}
