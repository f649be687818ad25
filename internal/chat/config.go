package chat

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config holds the gateway limits, backend identifiers and retry knobs.
// It is built once at startup and never mutated afterwards.
type Config struct {
	Model          string   `mapstructure:"model"`
	FallbackModels []string `mapstructure:"fallback_models"`

	MaxMessageLength int `mapstructure:"max_message_length"` // In runes, after trimming.
	MaxHistoryTurns  int `mapstructure:"max_history_turns"`
	MinAnswerLength  int `mapstructure:"min_answer_length"`

	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	TopP            float64 `mapstructure:"top_p"`
	TopK            int     `mapstructure:"top_k"`

	AttemptTimeout       time.Duration `mapstructure:"attempt_timeout"`
	MaxRetriesPerBackend int           `mapstructure:"max_retries_per_backend"`
	BackoffBase          time.Duration `mapstructure:"backoff_base"`
	BackoffMultiplier    float64       `mapstructure:"backoff_multiplier"`
	BackoffMax           time.Duration `mapstructure:"backoff_max"`
	BackoffJitter        float64       `mapstructure:"backoff_jitter"`
	RetryHintCeiling     time.Duration `mapstructure:"retry_hint_ceiling"`

	SystemPrompt     string `mapstructure:"system_prompt"`
	SystemPromptFile string `mapstructure:"system_prompt_file"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:                "gemini-2.5-flash",
		FallbackModels:       []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"},
		MaxMessageLength:     600,
		MaxHistoryTurns:      10,
		MinAnswerLength:      12,
		Temperature:          0.15,
		MaxOutputTokens:      340,
		TopP:                 0.85,
		TopK:                 40,
		AttemptTimeout:       20 * time.Second,
		MaxRetriesPerBackend: 2,
		BackoffBase:          500 * time.Millisecond,
		BackoffMultiplier:    2,
		BackoffMax:           4 * time.Second,
		BackoffJitter:        0.1,
		RetryHintCeiling:     10 * time.Second,
	}
}

// Candidates returns the ordered backend list for this configuration.
func (c Config) Candidates() []string {
	return Candidates(c.Model, c.FallbackModels)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var result *multierror.Error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			result = multierror.Append(result, fmt.Errorf(format, args...))
		}
	}

	check(len(c.Candidates()) > 0, "at least one model must be configured")
	check(c.MaxMessageLength > 0, "max_message_length must be positive, got %d", c.MaxMessageLength)
	check(c.MaxHistoryTurns >= 0, "max_history_turns must not be negative, got %d", c.MaxHistoryTurns)
	check(c.MinAnswerLength >= 0, "min_answer_length must not be negative, got %d", c.MinAnswerLength)
	check(c.MaxOutputTokens > 0, "max_output_tokens must be positive, got %d", c.MaxOutputTokens)
	check(c.AttemptTimeout > 0, "attempt_timeout must be positive, got %s", c.AttemptTimeout)
	check(c.MaxRetriesPerBackend >= 0, "max_retries_per_backend must not be negative, got %d", c.MaxRetriesPerBackend)
	check(c.BackoffBase > 0, "backoff_base must be positive, got %s", c.BackoffBase)
	check(c.BackoffMultiplier >= 1, "backoff_multiplier must be at least 1, got %g", c.BackoffMultiplier)
	check(c.BackoffMax >= c.BackoffBase, "backoff_max (%s) must not be below backoff_base (%s)", c.BackoffMax, c.BackoffBase)
	check(c.BackoffJitter >= 0 && c.BackoffJitter < 1, "backoff_jitter must be in [0,1), got %g", c.BackoffJitter)
	check(c.RetryHintCeiling > 0, "retry_hint_ceiling must be positive, got %s", c.RetryHintCeiling)

	return result.ErrorOrNil()
}
