package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClient_Rate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
		assert.Equal(t, 1024, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "score this", req.Messages[0].Content)

		w.Write([]byte(`{"content":[{"type":"text","text":"OVERALL_SCORE: 80"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Options{APIKey: "sk-test", BaseURL: srv.URL, Timeout: time.Second})
	out, err := c.Rate(context.Background(), "score this")
	require.NoError(t, err)
	assert.Equal(t, "OVERALL_SCORE: 80", out)
}

func TestAnthropicClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error object", http.StatusBadRequest, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`},
		{"non-json 500", http.StatusInternalServerError, `upstream exploded`},
		{"empty content", http.StatusOK, `{"content":[]}`},
		{"malformed", http.StatusOK, `{"content":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewAnthropicClient(Options{APIKey: "k", BaseURL: srv.URL}).Rate(context.Background(), "p")
			assert.Error(t, err)
		})
	}
}

func TestGrokClient_Rate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk", r.Header.Get("Authorization"))

		var req grokRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.InDelta(t, 0.3, req.Temperature, 1e-9)

		w.Write([]byte(`{"choices":[{"message":{"content":"PRIORITY: High"}}]}`))
	}))
	defer srv.Close()

	out, err := NewGrokClient(Options{APIKey: "gsk", BaseURL: srv.URL}).Rate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "PRIORITY: High", out)
}

func TestGrokClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := NewGrokClient(Options{BaseURL: srv.URL}).Rate(context.Background(), "p")
	assert.ErrorContains(t, err, "rate limited")
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("anthropic", Options{})
	require.NoError(t, err)
	assert.IsType(t, &anthropicClient{}, c)

	c, err = NewClient("groq", Options{})
	require.NoError(t, err)
	assert.IsType(t, &grokClient{}, c)

	_, err = NewClient("openai", Options{})
	assert.Error(t, err)
}
