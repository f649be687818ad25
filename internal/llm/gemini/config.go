package gemini

import "time"

// Config holds the Gemini provider configuration.
type Config struct {
	URL        string        `mapstructure:"url"`
	APIVersion string        `mapstructure:"api_version"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"` // Upper bound for any single HTTP exchange.
}

// DefaultConfig returns sensible defaults for the public Gemini API.
func DefaultConfig() Config {
	return Config{
		URL:        "https://generativelanguage.googleapis.com",
		APIVersion: "v1beta",
		Model:      "gemini-2.5-flash",
		Timeout:    time.Minute,
	}
}
