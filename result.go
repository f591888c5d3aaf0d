package instructor

// Result is returned by every generate call. Check IsSuccessful before using
// Data.
type Result[T any] struct {
	Data *T
	// Prompt is the conversation including every model turn and continuation
	// instruction on success, and the caller's untouched prompt on failure.
	Prompt        *Prompt
	ResponseParts []*ResponseData
	Err           error
}

func NewResult[T any](data *T, prompt *Prompt, parts []*ResponseData) *Result[T] {
	return &Result[T]{
		Data:          data,
		Prompt:        prompt,
		ResponseParts: parts,
	}
}

func NewErrorResult[T any](prompt *Prompt, err error) *Result[T] {
	return &Result[T]{
		Prompt: prompt,
		Err:    err,
	}
}

func (r *Result[T]) IsSuccessful() bool {
	return r.Err == nil && r.Data != nil
}

// Usage sums the token usage of all rounds.
func (r *Result[T]) Usage() UsageMetadata {
	var usage UsageMetadata
	for _, part := range r.ResponseParts {
		if part != nil {
			usage.Add(part.UsageMetadata)
		}
	}
	return usage
}

// TextResult is the result of a single round free text call.
type TextResult struct {
	*Result[ResponseData]
}

func (r TextResult) parts() []Part {
	if r.Data == nil {
		return nil
	}
	var ret []Part
	for _, cand := range r.Data.Candidates {
		if cand.Content != nil {
			ret = append(ret, cand.Content.Parts...)
		}
	}
	return ret
}

func (r TextResult) TextParts() []TextPart {
	var ret []TextPart
	for _, part := range r.parts() {
		if text, ok := PartText(part); ok {
			ret = append(ret, TextPart{Text: text})
		}
	}
	return ret
}

func (r TextResult) ExecutableCodeParts() []ExecutableCodePart {
	var ret []ExecutableCodePart
	for _, part := range r.parts() {
		switch v := part.(type) {
		case ExecutableCodePart:
			ret = append(ret, v)
		case *ExecutableCodePart:
			if v != nil {
				ret = append(ret, *v)
			}
		}
	}
	return ret
}

func (r TextResult) ExecutableCodeResultParts() []ExecutableCodeResultPart {
	var ret []ExecutableCodeResultPart
	for _, part := range r.parts() {
		switch v := part.(type) {
		case ExecutableCodeResultPart:
			ret = append(ret, v)
		case *ExecutableCodeResultPart:
			if v != nil {
				ret = append(ret, *v)
			}
		}
	}
	return ret
}
