package chat

import (
	"strings"

	"github.com/bububa/instructor-gemini"
)

// ConcatText joins the first text part of the first candidate of every
// round, in round order, without a separator. ok is false when no round
// produced text.
func ConcatText(rounds []*instructor.ResponseData) (text string, ok bool) {
	var b strings.Builder
	for _, round := range rounds {
		if s, found := round.FirstText(); found {
			b.WriteString(s)
			ok = true
		}
	}
	return b.String(), ok
}

// Materialize decodes the joined output into T. No text yields nil data and
// no error.
func Materialize[T any](rounds []*instructor.ResponseData, enc instructor.Encoder) (*T, error) {
	text, ok := ConcatText(rounds)
	if !ok {
		return nil, nil
	}
	ret := new(T)
	if err := enc.Unmarshal([]byte(text), ret); err != nil {
		return nil, instructor.NewError(instructor.MaterializationError, err)
	}
	return ret, nil
}
