package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/bububa/instructor-gemini"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type State int

const (
	StateIdle State = iota
	StateSent
	StateEvaluating
	StateContinuing
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateEvaluating:
		return "evaluating"
	case StateContinuing:
		return "continuing"
	case StateTerminal:
		return "terminal"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Request describes one call.
type Request struct {
	// Prompt is the caller's conversation. It is cloned and never modified.
	Prompt  *instructor.Prompt
	Encoder instructor.Encoder
	// Tools are only sent on the first round.
	Tools []instructor.Tool
	// MaxRounds overrides the instructor's cap when positive.
	MaxRounds int
	// Single stops after the first round whatever the finish reason.
	Single bool
}

// Session is the working state of one call. On success Prompt holds every
// model turn and continuation instruction, and Rounds every response in order.
type Session struct {
	ID       string
	Prompt   *instructor.Prompt
	Rounds   []*instructor.ResponseData
	Endpoint instructor.Endpoint
	State    State
}

// Handler runs the continuation loop: send, fold the candidates back into the
// conversation, and continue while the last candidate of the latest round
// stopped at the token limit. Rounds are strictly sequential. Every returned
// error is an *instructor.Error.
func Handler(ctx context.Context, i instructor.Instructor, req Request) (*Session, error) {
	if req.Encoder == nil {
		return nil, instructor.NewError(instructor.ConfigurationError, errors.New("no encoder"))
	}
	prompt, err := req.Prompt.Clone()
	if err != nil {
		return nil, instructor.AsError(err, instructor.CloneError)
	}
	transport, endpoint, err := resolve(prompt.Options, i.Defaults())
	if err != nil {
		return nil, err
	}
	if c := req.Encoder.Context(); len(c) > 0 {
		prompt.AddText(string(c))
	}

	sess := &Session{
		ID:       uuid.NewString(),
		Prompt:   prompt,
		Endpoint: endpoint,
		State:    StateIdle,
	}
	var (
		logger    = i.Logger().With("call_id", sess.ID, "model", endpoint.Model)
		metrics   = i.Metrics()
		maxRounds = req.MaxRounds
		schema    = req.Encoder.Schema()
		tools     = req.Tools
		mimeType  = req.Encoder.MIMEType()
	)
	if maxRounds <= 0 {
		maxRounds = i.MaxRounds()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, instructor.NewError(instructor.CanceledError, err)
		}
		round := len(sess.Rounds) + 1
		body, err := json.Marshal(instructor.GenerateContentRequest{
			Contents:         prompt.Contents,
			GenerationConfig: instructor.NewGenerationConfig(prompt.Options, mimeType, schema),
			Tools:            tools,
		})
		if err != nil {
			return nil, instructor.NewError(instructor.TransportError, fmt.Errorf("encode request: %w", err))
		}
		if i.Verbose() {
			logger.Info("gemini request", "round", round, "body", string(body))
		}

		sess.State = StateSent
		resp, err := transport.Send(ctx, endpoint, body)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, instructor.NewError(instructor.CanceledError, errors.Join(ctxErr, err))
			}
			if i.Verbose() {
				logger.Error("gemini transport failed", "round", round, "error", err)
			}
			return nil, instructor.AsError(err, instructor.TransportError)
		}
		if i.Verbose() {
			logger.Info("gemini response", "round", round, "body", string(resp))
		}

		sess.State = StateEvaluating
		data, err := instructor.ParseResponseData(resp)
		if err != nil {
			return nil, err
		}
		sess.Rounds = append(sess.Rounds, data)
		for idx, cand := range data.Candidates {
			if cand.Content == nil {
				continue
			}
			content, err := cand.Content.Clone()
			if err != nil {
				return nil, instructor.NewError(instructor.MalformedResponseError, fmt.Errorf("candidates[%d]: %w", idx, err))
			}
			if content.Role == "" {
				content.Role = instructor.ModelRole
			}
			prompt.AddContents(content)
		}

		reason, _ := data.LastFinishReason()
		metrics.ObserveRound(ctx, endpoint.Model, reason, data.UsageMetadata)
		if req.Single || reason != instructor.FinishReasonMaxTokens {
			sess.State = StateTerminal
			return sess, nil
		}
		if round >= maxRounds {
			return nil, instructor.NewError(instructor.ExhaustedError, fmt.Errorf("still truncated after %d rounds", round))
		}

		sess.State = StateContinuing
		if i.Verbose() {
			logger.Info("gemini continuation", "round", round, "reason", reason.String())
		}
		prompt.AddText(req.Encoder.Continuation())
		schema = nil
		tools = nil
		mimeType = instructor.MIMETypeText
	}
}

// resolve picks the transport, key and model of a call: prompt options
// first, then the instructor defaults.
func resolve(o instructor.PromptOptions, defaults instructor.PromptOptions) (instructor.Transport, instructor.Endpoint, error) {
	var (
		transport = o.Transport
		endpoint  = instructor.Endpoint{Model: o.Model, APIKey: o.APIKey}
		errs      []error
	)
	if transport == nil {
		transport = defaults.Transport
	}
	if endpoint.Model == "" {
		endpoint.Model = defaults.Model
	}
	if endpoint.APIKey == "" {
		endpoint.APIKey = defaults.APIKey
	}
	if transport == nil {
		errs = append(errs, errors.New("no transport"))
	}
	if endpoint.Model == "" {
		errs = append(errs, errors.New("no model"))
	}
	if endpoint.APIKey == "" {
		errs = append(errs, errors.New("no api key"))
	}
	if len(errs) > 0 {
		return nil, endpoint, instructor.NewError(instructor.ConfigurationError, errors.Join(errs...))
	}
	return transport, endpoint, nil
}
