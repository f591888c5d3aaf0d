package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/instructor-gemini"
)

func TestTransportSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"contents":[]}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseId":"r1"}`))
	}))
	defer server.Close()

	tr := New(WithBaseURL(server.URL + "/"))
	got, err := tr.Send(context.Background(), instructor.Endpoint{Model: "models/gemini-2.5-flash", APIKey: "test key"}, []byte(`{"contents":[]}`))
	require.NoError(t, err)
	assert.Equal(t, `{"responseId":"r1"}`, string(got))
}

func TestTransportSendStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	tr := New(WithBaseURL(server.URL))
	_, err := tr.Send(context.Background(), instructor.Endpoint{Model: "m", APIKey: "k"}, []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, instructor.ErrTransport)

	var e *instructor.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusTooManyRequests, e.StatusCode)
	assert.Equal(t, `{"error":{"message":"quota"}}`, e.Body)
}

func TestTransportSendNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	tr := New(WithBaseURL(server.URL))
	_, err := tr.Send(context.Background(), instructor.Endpoint{Model: "m", APIKey: "k"}, []byte(`{}`))
	assert.ErrorIs(t, err, instructor.ErrTransport)
}

func TestTransportURL(t *testing.T) {
	tr := New()
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-pro:generateContent?key=a%26b",
		tr.URL(instructor.Endpoint{Model: "gemini-2.5-pro", APIKey: "a&b"}))
}
