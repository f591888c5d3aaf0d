package instructor

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ConfigurationError     ErrorKind = "configuration"
	TransportError         ErrorKind = "transport"
	MalformedResponseError ErrorKind = "malformed_response"
	MaterializationError   ErrorKind = "materialization"
	CloneError             ErrorKind = "clone"
	SchemaError            ErrorKind = "schema"
	ExhaustedError         ErrorKind = "exhausted"
	CanceledError          ErrorKind = "canceled"
)

var (
	ErrConfiguration     = errors.New("instructor: configuration error")
	ErrTransport         = errors.New("instructor: transport error")
	ErrMalformedResponse = errors.New("instructor: malformed response")
	ErrMaterialization   = errors.New("instructor: materialization error")
	ErrClone             = errors.New("instructor: clone error")
	ErrSchema            = errors.New("instructor: schema error")
	ErrExhausted         = errors.New("instructor: continuation rounds exhausted")
	ErrCanceled          = errors.New("instructor: canceled")
)

var sentinels = map[ErrorKind]error{
	ConfigurationError:     ErrConfiguration,
	TransportError:         ErrTransport,
	MalformedResponseError: ErrMalformedResponse,
	MaterializationError:   ErrMaterialization,
	CloneError:             ErrClone,
	SchemaError:            ErrSchema,
	ExhaustedError:         ErrExhausted,
	CanceledError:          ErrCanceled,
}

// Error is the single error type carried by a Result. Kind tells the failure
// classes apart; StatusCode and Body are only set for transport failures that
// reached the server.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s error: HTTP %d: %s", e.Kind, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error", e.Kind)
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := sentinels[e.Kind]; ok {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// AsError classifies err. Errors that already are *Error keep their kind,
// everything else is wrapped with the fallback kind.
func AsError(err error, fallback ErrorKind) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewError(fallback, err)
}

// KindOf returns the ErrorKind of err or an empty kind when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
