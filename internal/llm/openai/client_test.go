package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

func TestComplete_OK(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"iva\": 2} "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "secret", BaseURL: srv.URL + "/"}, nil)
	out, err := c.Complete(context.Background(), llm.CompletionRequest{
		System:   "sys",
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
		JSON:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"iva": 2}`, out)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	assert.Equal(t, DefaultModel, got["model"])
}

func TestComplete_Unavailable(t *testing.T) {
	_, err := NewClient(Config{}, nil).Complete(context.Background(), llm.CompletionRequest{})
	assert.ErrorIs(t, err, extract.ErrUnavailable)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	_, err = NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Complete(context.Background(), llm.CompletionRequest{})
	assert.ErrorIs(t, err, extract.ErrUnavailable)
}

func TestComplete_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Complete(ctx, llm.CompletionRequest{})
	require.Error(t, err)
	assert.False(t, extract.IsUnavailable(err))
}
