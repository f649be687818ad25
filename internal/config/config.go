// Package config loads chatgate settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HerbHall/chatgate/internal/chat"
	"github.com/HerbHall/chatgate/internal/llm/gemini"
	"github.com/HerbHall/chatgate/internal/server"
	"github.com/caarlos0/env/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment override: CG_SERVER_PORT=9090.
const EnvPrefix = "CG"

// Settings is the fully resolved configuration tree.
type Settings struct {
	Server server.Config `mapstructure:"server"`
	Chat   chat.Config   `mapstructure:"chat"`
	Gemini gemini.Config `mapstructure:"gemini"`
}

// Secrets are read straight from the process environment, never from the
// config file. The variable names match the existing deployment.
type Secrets struct {
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	GeminiModel        string `env:"GEMINI_MODEL"`
	AdminSessionSecret string `env:"ADMIN_SESSION_SECRET"`
	AdminEmail         string `env:"ADMIN_EMAIL"`
}

// LoadSecrets parses Secrets from the environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, fmt.Errorf("parse environment: %w", err)
	}
	s.GeminiAPIKey = strings.TrimSpace(s.GeminiAPIKey)
	s.GeminiModel = strings.TrimSpace(s.GeminiModel)
	return s, nil
}

// LogFields describes which secrets are present without revealing them.
func (s Secrets) LogFields() []zap.Field {
	return []zap.Field{
		zap.Bool("gemini_api_key_set", s.GeminiAPIKey != ""),
		zap.Bool("admin_session_secret_set", s.AdminSessionSecret != ""),
		zap.String("gemini_model_override", s.GeminiModel),
	}
}

// Load reads configuration from file and environment variables.
// An empty configPath searches the default locations; a missing file is not an error.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("chatgate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/chatgate")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}

// Resolve unmarshals v, overlays the environment secrets and validates the result.
func Resolve(v *viper.Viper, sec Secrets) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if sec.GeminiModel != "" {
		s.Chat.Model = sec.GeminiModel
		s.Gemini.Model = sec.GeminiModel
	}

	if err := s.Server.Validate(); err != nil {
		return Settings{}, fmt.Errorf("server config: %w", err)
	}
	if err := s.Chat.Validate(); err != nil {
		return Settings{}, fmt.Errorf("chat config: %w", err)
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	srv := server.DefaultConfig()
	v.SetDefault("server.host", srv.Host)
	v.SetDefault("server.port", srv.Port)
	v.SetDefault("server.read_timeout", srv.ReadTimeout)
	v.SetDefault("server.write_timeout", srv.WriteTimeout)
	v.SetDefault("server.idle_timeout", srv.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", srv.ShutdownTimeout)
	v.SetDefault("server.rate_limit.rps", srv.RateLimit.RPS)
	v.SetDefault("server.rate_limit.burst", srv.RateLimit.Burst)
	v.SetDefault("server.trusted_proxies", srv.TrustedProxies)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	gem := gemini.DefaultConfig()
	v.SetDefault("gemini.url", gem.URL)
	v.SetDefault("gemini.api_version", gem.APIVersion)
	v.SetDefault("gemini.model", gem.Model)
	v.SetDefault("gemini.timeout", gem.Timeout)

	c := chat.DefaultConfig()
	v.SetDefault("chat.model", c.Model)
	v.SetDefault("chat.fallback_models", c.FallbackModels)
	v.SetDefault("chat.max_message_length", c.MaxMessageLength)
	v.SetDefault("chat.max_history_turns", c.MaxHistoryTurns)
	v.SetDefault("chat.min_answer_length", c.MinAnswerLength)
	v.SetDefault("chat.temperature", c.Temperature)
	v.SetDefault("chat.max_output_tokens", c.MaxOutputTokens)
	v.SetDefault("chat.top_p", c.TopP)
	v.SetDefault("chat.top_k", c.TopK)
	v.SetDefault("chat.attempt_timeout", c.AttemptTimeout)
	v.SetDefault("chat.max_retries_per_backend", c.MaxRetriesPerBackend)
	v.SetDefault("chat.backoff_base", c.BackoffBase)
	v.SetDefault("chat.backoff_multiplier", c.BackoffMultiplier)
	v.SetDefault("chat.backoff_max", c.BackoffMax)
	v.SetDefault("chat.backoff_jitter", c.BackoffJitter)
	v.SetDefault("chat.retry_hint_ceiling", c.RetryHintCeiling)
	v.SetDefault("chat.system_prompt", "")
	v.SetDefault("chat.system_prompt_file", "")
}
