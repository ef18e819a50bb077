package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// QuotaError signals that the upstream provider itself is out of quota
// (HTTP 429 / RESOURCE_EXHAUSTED), as opposed to a local session limit.
// Callers use it to start the provider-wide cooldown.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("provider quota exhausted: %s", e.Message)
}

// IsQuotaError reports whether err wraps a provider quota exhaustion.
func IsQuotaError(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}
