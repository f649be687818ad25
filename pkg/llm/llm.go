// Package llm provides the public SDK types for text-generation backends.
// Backend adapters live in internal/llm/{provider}/ and translate their wire
// formats and native errors into the types defined here.
package llm

import "context"

// Provider is the core interface implemented by all text-generation backends.
// A single Chat call is one attempt against one model; retries and fallback
// are the caller's responsibility.
type Provider interface {
	// Generate creates a completion from a single prompt.
	Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error)

	// Chat creates a completion from a conversation history.
	// Use CallOption values to select the model and sampling parameters.
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error)
}

// HealthReporter is optionally implemented by providers that can report
// connection health and model availability. Detected via type assertion.
type HealthReporter interface {
	// Heartbeat checks whether the backend is reachable with the configured credential.
	Heartbeat(ctx context.Context) error

	// ListModels returns the model identifiers available from this provider.
	ListModels(ctx context.Context) ([]string, error)
}

// CallOption configures a single Generate or Chat call.
type CallOption func(*CallConfig)

// CallConfig holds the resolved configuration for a single call.
// Users interact through CallOption functions, not this struct directly.
type CallConfig struct {
	Model             string
	SystemInstruction string
	Temperature       float64
	MaxTokens         int
	TopP              float64
	TopK              int
}

// WithModel sets the model to use for this call, overriding the provider default.
func WithModel(model string) CallOption {
	return func(c *CallConfig) { c.Model = model }
}

// WithSystemInstruction sets the system instruction sent ahead of the conversation.
func WithSystemInstruction(text string) CallOption {
	return func(c *CallConfig) { c.SystemInstruction = text }
}

// WithTemperature sets the sampling temperature.
// 0.0 = deterministic, 1.0+ = creative.
func WithTemperature(temp float64) CallOption {
	return func(c *CallConfig) { c.Temperature = temp }
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(max int) CallOption {
	return func(c *CallConfig) { c.MaxTokens = max }
}

// WithTopP sets nucleus sampling probability mass. Zero leaves the backend default.
func WithTopP(p float64) CallOption {
	return func(c *CallConfig) { c.TopP = p }
}

// WithTopK sets top-k sampling. Zero leaves the backend default.
func WithTopK(k int) CallOption {
	return func(c *CallConfig) { c.TopK = k }
}

// ApplyOptions creates a CallConfig from a list of options, starting from defaults.
func ApplyOptions(opts ...CallOption) CallConfig {
	cfg := CallConfig{
		Temperature: 0.7,
		MaxTokens:   2048,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
