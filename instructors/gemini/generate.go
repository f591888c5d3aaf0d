package gemini

import (
	"context"
	"reflect"
	"time"

	"github.com/bububa/instructor-gemini"
	"github.com/bububa/instructor-gemini/encoding/text"
	"github.com/bububa/instructor-gemini/internal/chat"
)

// GenerateObject asks the model for a T. Truncated output is continued until
// the model stops on its own. A string T returns the raw text. Errors never
// escape: check Result.IsSuccessful.
func GenerateObject[T any](ctx context.Context, i *Instructor, prompt *instructor.Prompt, opts ...instructor.CallOption) *instructor.Result[T] {
	var (
		start    = time.Now()
		callOpts = instructor.NewCallOptions(opts...)
	)
	enc, err := i.encoder(reflect.TypeFor[T]())
	if err != nil {
		return fail[T](ctx, i, prompt, start, err)
	}
	sess, err := chat.Handler(ctx, i, chat.Request{
		Prompt:    prompt,
		Encoder:   enc,
		Tools:     callOpts.Tools,
		MaxRounds: callOpts.MaxRounds,
	})
	if err != nil {
		return fail[T](ctx, i, prompt, start, err)
	}
	data, err := chat.Materialize[T](sess.Rounds, enc)
	if err != nil {
		return fail[T](ctx, i, prompt, start, err)
	}
	if data != nil && i.Validate() {
		if validator, ok := enc.(instructor.Validator); ok {
			if err := validator.Validate(data); err != nil {
				return fail[T](ctx, i, prompt, start, instructor.NewError(instructor.MaterializationError, err))
			}
		}
	}
	i.Metrics().ObserveCall(ctx, sess.Endpoint.Model, instructor.OutcomeSuccess, len(sess.Rounds), time.Since(start))
	return instructor.NewResult(data, sess.Prompt, sess.Rounds)
}

// GenerateText runs a single round of free text generation. Tools such as
// code execution may add code parts to the response.
func (i *Instructor) GenerateText(ctx context.Context, prompt *instructor.Prompt, opts ...instructor.CallOption) instructor.TextResult {
	var (
		start    = time.Now()
		callOpts = instructor.NewCallOptions(opts...)
	)
	sess, err := chat.Handler(ctx, i, chat.Request{
		Prompt:  prompt,
		Encoder: text.NewEncoder(),
		Tools:   callOpts.Tools,
		Single:  true,
	})
	if err != nil {
		return instructor.TextResult{Result: fail[instructor.ResponseData](ctx, i, prompt, start, err)}
	}
	var data *instructor.ResponseData
	if len(sess.Rounds) > 0 {
		data = sess.Rounds[0]
	}
	i.Metrics().ObserveCall(ctx, sess.Endpoint.Model, instructor.OutcomeSuccess, len(sess.Rounds), time.Since(start))
	return instructor.TextResult{Result: instructor.NewResult(data, sess.Prompt, sess.Rounds)}
}

func fail[T any](ctx context.Context, i *Instructor, prompt *instructor.Prompt, start time.Time, err error) *instructor.Result[T] {
	e := instructor.AsError(err, instructor.MaterializationError)
	model := i.Defaults().Model
	if prompt != nil && prompt.Options.Model != "" {
		model = prompt.Options.Model
	}
	if i.Verbose() {
		i.Logger().Error("gemini call failed", "model", model, "kind", string(e.Kind), "error", e)
	}
	i.Metrics().ObserveCall(ctx, model, string(e.Kind), 0, time.Since(start))
	return instructor.NewErrorResult[T](prompt, e)
}
