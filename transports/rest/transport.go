package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bububa/instructor-gemini"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultAPIVersion = "v1beta"
	defaultTimeout    = 120 * time.Second
)

// Transport posts requests to the generateContent REST endpoint with the API
// key in the query string. It does not retry.
type Transport struct {
	BaseURL    string
	APIVersion string
	client     *http.Client
}

var _ instructor.Transport = (*Transport)(nil)

type Option func(t *Transport)

func WithBaseURL(baseURL string) Option {
	return func(t *Transport) {
		t.BaseURL = baseURL
	}
}

func WithAPIVersion(version string) Option {
	return func(t *Transport) {
		t.APIVersion = version
	}
}

func WithHTTPClient(clt *http.Client) Option {
	return func(t *Transport) {
		t.client = clt
	}
}

func New(opts ...Option) *Transport {
	t := &Transport{
		BaseURL:    DefaultBaseURL,
		APIVersion: DefaultAPIVersion,
		client:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// URL returns the generateContent URL of endpoint.
func (t *Transport) URL(endpoint instructor.Endpoint) string {
	model := strings.TrimPrefix(endpoint.Model, "models/")
	return fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		strings.TrimRight(t.BaseURL, "/"),
		t.APIVersion,
		url.PathEscape(model),
		url.QueryEscape(endpoint.APIKey),
	)
}

func (t *Transport) Send(ctx context.Context, endpoint instructor.Endpoint, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, instructor.NewError(instructor.TransportError, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, instructor.NewError(instructor.TransportError, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, instructor.NewError(instructor.TransportError, fmt.Errorf("failed to read response body: %w", err))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, instructor.NewStatusError(resp.StatusCode, bs)
	}
	return bs, nil
}
