package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/genai"

	"github.com/bububa/instructor-gemini"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Transport sends rounds through the google.golang.org/genai SDK. One SDK
// client is created per API key and reused.
type Transport struct {
	config  genai.ClientConfig
	mu      sync.Mutex
	clients map[string]*genai.Client
}

var _ instructor.Transport = (*Transport)(nil)

// New returns a Transport using config for every client it creates. APIKey
// and Backend are set per call.
func New(config genai.ClientConfig) *Transport {
	return &Transport{
		config:  config,
		clients: make(map[string]*genai.Client),
	}
}

func (t *Transport) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if clt, ok := t.clients[apiKey]; ok {
		return clt, nil
	}
	cfg := t.config
	cfg.APIKey = apiKey
	cfg.Backend = genai.BackendGeminiAPI
	clt, err := genai.NewClient(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	t.clients[apiKey] = clt
	return clt, nil
}

func (t *Transport) Send(ctx context.Context, endpoint instructor.Endpoint, body []byte) ([]byte, error) {
	var req instructor.GenerateContentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, instructor.NewError(instructor.TransportError, fmt.Errorf("decode request: %w", err))
	}
	contents, err := Contents(req.Contents)
	if err != nil {
		return nil, instructor.NewError(instructor.TransportError, err)
	}
	config, err := Config(req.GenerationConfig, req.Tools)
	if err != nil {
		return nil, instructor.NewError(instructor.TransportError, err)
	}
	clt, err := t.client(ctx, endpoint.APIKey)
	if err != nil {
		return nil, instructor.NewError(instructor.TransportError, err)
	}
	resp, err := clt.Models.GenerateContent(ctx, endpoint.Model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			e := instructor.NewStatusError(apiErr.Code, []byte(apiErr.Message))
			e.Err = err
			return nil, e
		}
		return nil, instructor.NewError(instructor.TransportError, err)
	}
	bs, err := json.Marshal(resp)
	if err != nil {
		return nil, instructor.NewError(instructor.MalformedResponseError, err)
	}
	return bs, nil
}

// Contents converts conversation turns to SDK contents.
func Contents(src []*instructor.Content) ([]*genai.Content, error) {
	ret := make([]*genai.Content, 0, len(src))
	for idx, content := range src {
		if content == nil {
			continue
		}
		dist := &genai.Content{
			Role:  string(content.Role),
			Parts: make([]*genai.Part, 0, len(content.Parts)),
		}
		for partIdx, part := range content.Parts {
			p, err := convertPart(part)
			if err != nil {
				return nil, fmt.Errorf("contents[%d].parts[%d]: %w", idx, partIdx, err)
			}
			dist.Parts = append(dist.Parts, p)
		}
		ret = append(ret, dist)
	}
	return ret, nil
}

func convertPart(part instructor.Part) (*genai.Part, error) {
	switch v := part.(type) {
	case *instructor.TextPart:
		return convertPart(*v)
	case *instructor.InlineDataPart:
		return convertPart(*v)
	case *instructor.ExecutableCodePart:
		return convertPart(*v)
	case *instructor.ExecutableCodeResultPart:
		return convertPart(*v)
	case instructor.TextPart:
		return &genai.Part{Text: v.Text}, nil
	case instructor.InlineDataPart:
		data, err := base64.StdEncoding.DecodeString(v.InlineData.Data)
		if err != nil {
			return nil, err
		}
		return &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: v.InlineData.MimeType}}, nil
	case instructor.ExecutableCodePart:
		return &genai.Part{ExecutableCode: &genai.ExecutableCode{
			Code:     v.ExecutableCode.Code,
			Language: genai.Language(v.ExecutableCode.Language),
		}}, nil
	case instructor.ExecutableCodeResultPart:
		return &genai.Part{CodeExecutionResult: &genai.CodeExecutionResult{
			Outcome: genai.Outcome(v.ExecutableCodeResult.Outcome),
			Output:  v.ExecutableCodeResult.Output,
		}}, nil
	}
	return nil, fmt.Errorf("unsupported part %T", part)
}

// Config converts generation parameters and tools to the SDK config.
func Config(cfg instructor.GenerationConfig, tools []instructor.Tool) (*genai.GenerateContentConfig, error) {
	ret := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(cfg.Temperature)),
		TopK:             genai.Ptr(float32(cfg.TopK)),
		TopP:             genai.Ptr(float32(cfg.TopP)),
		ResponseMIMEType: cfg.ResponseMimeType,
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(cfg.ThinkingConfig.ThinkingBudget)),
		},
	}
	if cfg.MaxOutputTokens != nil {
		ret.MaxOutputTokens = int32(*cfg.MaxOutputTokens)
	}
	if cfg.ResponseSchema != nil {
		bs, err := json.Marshal(cfg.ResponseSchema)
		if err != nil {
			return nil, err
		}
		schema := new(genai.Schema)
		if err := json.Unmarshal(bs, schema); err != nil {
			return nil, fmt.Errorf("convert schema: %w", err)
		}
		ret.ResponseSchema = schema
	}
	for _, tool := range tools {
		switch tool {
		case instructor.ToolURLContext:
			ret.Tools = append(ret.Tools, &genai.Tool{URLContext: &genai.URLContext{}})
		case instructor.ToolGoogleSearch:
			ret.Tools = append(ret.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		case instructor.ToolCodeExecution:
			ret.Tools = append(ret.Tools, &genai.Tool{CodeExecution: &genai.ToolCodeExecution{}})
		default:
			return nil, fmt.Errorf("unsupported tool %q", tool)
		}
	}
	return ret, nil
}
