package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Client is the interface for rating providers: one prompt in, raw text out.
type Client interface {
	Rate(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// BaseURL overrides the provider endpoint, mainly for tests.
	BaseURL string
}

// NewClient picks the provider implementation by name.
func NewClient(provider string, opts Options) (Client, error) {
	switch provider {
	case "anthropic":
		return NewAnthropicClient(opts), nil
	case "groq":
		return NewGrokClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// systemPrompt frames every rating request.
const systemPrompt = `You are an analyst at an early-stage venture fund. You score prospective founders strictly in the requested line format and never add extra commentary.`
