package chat

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/instructor-gemini"
	jsonenc "github.com/bububa/instructor-gemini/encoding/json"
	"github.com/bububa/instructor-gemini/encoding/text"
)

type person struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type testInstructor struct {
	instructor.Options
	defaults instructor.PromptOptions
}

func (i testInstructor) Defaults() instructor.PromptOptions {
	return i.defaults
}

// scripted replays responses in order and records every request body.
type scripted struct {
	mu        sync.Mutex
	responses []string
	err       error
	bodies    []map[string]any
}

func (s *scripted) Send(ctx context.Context, endpoint instructor.Endpoint, body []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	s.bodies = append(s.bodies, req)
	if s.err != nil {
		return nil, s.err
	}
	idx := len(s.bodies) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return []byte(s.responses[idx]), nil
}

func round(text string, reason string) string {
	bs, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": reason,
			},
		},
		"usageMetadata": map[string]any{"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5},
		"modelVersion":  "gemini-test",
		"responseId":    "r",
	})
	return string(bs)
}

func newTestInstructor(tr instructor.Transport, opts ...instructor.Option) testInstructor {
	defaults := instructor.DefaultPromptOptions()
	defaults.Transport = tr
	defaults.APIKey = "key"
	defaults.Model = "gemini-test"
	return testInstructor{
		Options:  instructor.NewOptions(opts...),
		defaults: defaults,
	}
}

func newPrompt() *instructor.Prompt {
	return instructor.NewPrompt(instructor.DefaultPromptOptions()).AddText("hello")
}

func personEncoder(t *testing.T) *jsonenc.Encoder {
	enc, err := jsonenc.NewEncoder(reflect.TypeOf(person{}), true)
	require.NoError(t, err)
	return enc
}

func TestHandlerContinuation(t *testing.T) {
	tr := &scripted{responses: []string{
		round(`{"name":"Ada",`, "MAX_TOKENS"),
		round(`"age":30}`, "STOP"),
	}}
	prompt := newPrompt()
	enc := personEncoder(t)

	sess, err := Handler(context.Background(), newTestInstructor(tr), Request{
		Prompt:  prompt,
		Encoder: enc,
		Tools:   []instructor.Tool{instructor.ToolGoogleSearch},
	})
	require.NoError(t, err)
	require.Len(t, sess.Rounds, 2)
	assert.Equal(t, StateTerminal, sess.State)
	assert.NotEmpty(t, sess.ID)

	require.Len(t, sess.Prompt.Contents, 4)
	assert.Equal(t, instructor.UserRole, sess.Prompt.Contents[0].Role)
	assert.Equal(t, instructor.ModelRole, sess.Prompt.Contents[1].Role)
	assert.Equal(t, instructor.UserRole, sess.Prompt.Contents[2].Role)
	assert.Equal(t, instructor.ModelRole, sess.Prompt.Contents[3].Role)
	continuation, ok := instructor.PartText(sess.Prompt.Contents[2].Parts[0])
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(continuation, "Continue. follow this schema: "))

	require.Len(t, tr.bodies, 2)
	first := tr.bodies[0]["generationConfig"].(map[string]any)
	assert.Contains(t, first, "responseSchema")
	assert.Equal(t, instructor.MIMETypeJSON, first["responseMimeType"])
	assert.Contains(t, tr.bodies[0], "tools")
	second := tr.bodies[1]["generationConfig"].(map[string]any)
	assert.NotContains(t, second, "responseSchema")
	assert.Equal(t, instructor.MIMETypeText, second["responseMimeType"])
	assert.NotContains(t, tr.bodies[1], "tools")
	assert.Len(t, tr.bodies[1]["contents"], 3)

	// the caller's prompt is untouched
	require.Len(t, prompt.Contents, 1)
	assert.Len(t, prompt.Contents[0].Parts, 1)

	got, err := Materialize[person](sess.Rounds, enc)
	require.NoError(t, err)
	assert.Equal(t, &person{Name: "Ada", Age: 30}, got)
}

func TestHandlerExhausted(t *testing.T) {
	tr := &scripted{responses: []string{round("x", "MAX_TOKENS")}}

	_, err := Handler(context.Background(), newTestInstructor(tr, instructor.WithMaxRounds(3)), Request{
		Prompt:  newPrompt(),
		Encoder: text.NewEncoder(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, instructor.ErrExhausted)
	assert.Len(t, tr.bodies, 3)
}

func TestHandlerCallMaxRounds(t *testing.T) {
	tr := &scripted{responses: []string{round("x", "MAX_TOKENS")}}

	_, err := Handler(context.Background(), newTestInstructor(tr), Request{
		Prompt:    newPrompt(),
		Encoder:   text.NewEncoder(),
		MaxRounds: 1,
	})
	assert.Equal(t, instructor.ExhaustedError, instructor.KindOf(err))
	assert.Len(t, tr.bodies, 1)
}

func TestHandlerSingle(t *testing.T) {
	tr := &scripted{responses: []string{round("partial", "MAX_TOKENS")}}

	sess, err := Handler(context.Background(), newTestInstructor(tr), Request{
		Prompt:  newPrompt(),
		Encoder: text.NewEncoder(),
		Single:  true,
	})
	require.NoError(t, err)
	assert.Len(t, sess.Rounds, 1)
	assert.Len(t, tr.bodies, 1)
}

func TestHandlerCanceled(t *testing.T) {
	tr := &scripted{responses: []string{round("x", "STOP")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Handler(ctx, newTestInstructor(tr), Request{
		Prompt:  newPrompt(),
		Encoder: text.NewEncoder(),
	})
	assert.ErrorIs(t, err, instructor.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tr.bodies)
}

func TestHandlerCanceledMidLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	tr := instructor.TransportFunc(func(ctx context.Context, endpoint instructor.Endpoint, body []byte) ([]byte, error) {
		calls++
		cancel()
		return []byte(round("x", "MAX_TOKENS")), nil
	})

	_, err := Handler(ctx, newTestInstructor(tr), Request{
		Prompt:  newPrompt(),
		Encoder: text.NewEncoder(),
	})
	assert.Equal(t, instructor.CanceledError, instructor.KindOf(err))
	assert.Equal(t, 1, calls)
}

func TestHandlerConfiguration(t *testing.T) {
	i := newTestInstructor(nil)
	i.defaults.Model = ""

	_, err := Handler(context.Background(), i, Request{
		Prompt:  newPrompt(),
		Encoder: text.NewEncoder(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, instructor.ErrConfiguration)
	assert.Contains(t, err.Error(), "no transport")
	assert.Contains(t, err.Error(), "no model")
}

func TestHandlerPromptOverridesDefaults(t *testing.T) {
	var got instructor.Endpoint
	tr := instructor.TransportFunc(func(ctx context.Context, endpoint instructor.Endpoint, body []byte) ([]byte, error) {
		got = endpoint
		return []byte(round("ok", "STOP")), nil
	})
	prompt := newPrompt()
	prompt.Options.Model = "gemini-override"

	_, err := Handler(context.Background(), newTestInstructor(tr), Request{
		Prompt:  prompt,
		Encoder: text.NewEncoder(),
	})
	require.NoError(t, err)
	assert.Equal(t, instructor.Endpoint{Model: "gemini-override", APIKey: "key"}, got)
}

func TestHandlerTransportError(t *testing.T) {
	tr := &scripted{err: errors.New("connection reset")}

	_, err := Handler(context.Background(), newTestInstructor(tr), Request{
		Prompt:  newPrompt(),
		Encoder: text.NewEncoder(),
	})
	assert.ErrorIs(t, err, instructor.ErrTransport)
	assert.Len(t, tr.bodies, 1)
}

func TestHandlerMalformedResponse(t *testing.T) {
	tr := &scripted{responses: []string{`{"candidates":[{"content":{"parts":[{"foo":1}]}}]}`}}

	_, err := Handler(context.Background(), newTestInstructor(tr), Request{
		Prompt:  newPrompt(),
		Encoder: text.NewEncoder(),
	})
	assert.ErrorIs(t, err, instructor.ErrMalformedResponse)
}

func TestHandlerEncoderContext(t *testing.T) {
	tr := &scripted{responses: []string{round(`{"name":"Ada","age":30}`, "STOP")}}
	enc, err := jsonenc.NewEncoder(reflect.TypeOf(person{}), false)
	require.NoError(t, err)

	sess, err := Handler(context.Background(), newTestInstructor(tr), Request{
		Prompt:  newPrompt(),
		Encoder: enc,
	})
	require.NoError(t, err)
	// the schema context merges into the user turn
	require.Len(t, sess.Prompt.Contents, 2)
	assert.Len(t, sess.Prompt.Contents[0].Parts, 2)
	assert.NotContains(t, tr.bodies[0]["generationConfig"], "responseSchema")
}
