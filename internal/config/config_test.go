package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HerbHall/chatgate/internal/chat"
	"github.com/HerbHall/chatgate/internal/llm/gemini"
	"github.com/HerbHall/chatgate/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestResolve_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := Load("")
	require.NoError(t, err)

	s, err := Resolve(v, Secrets{})
	require.NoError(t, err)

	want := server.DefaultConfig()
	assert.Empty(t, s.Server.TrustedProxies)
	s.Server.TrustedProxies = want.TrustedProxies
	assert.Equal(t, want, s.Server)
	assert.Equal(t, chat.DefaultConfig(), s.Chat)
	assert.Equal(t, gemini.DefaultConfig(), s.Gemini)
}

func TestResolve_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9091
  rate_limit:
    rps: 3
chat:
  model: gemini-2.0-pro
  fallback_models: [gemini-2.0-flash]
  max_message_length: 300
  attempt_timeout: 5s
gemini:
  url: http://localhost:9999
`)

	v, err := Load(path)
	require.NoError(t, err)
	s, err := Resolve(v, Secrets{})
	require.NoError(t, err)

	assert.Equal(t, 9091, s.Server.Port)
	assert.InDelta(t, 3.0, s.Server.RateLimit.RPS, 0.0001)
	assert.Equal(t, 5, s.Server.RateLimit.Burst)
	assert.Equal(t, "gemini-2.0-pro", s.Chat.Model)
	assert.Equal(t, []string{"gemini-2.0-flash"}, s.Chat.FallbackModels)
	assert.Equal(t, 300, s.Chat.MaxMessageLength)
	assert.Equal(t, 5*time.Second, s.Chat.AttemptTimeout)
	assert.Equal(t, 10, s.Chat.MaxHistoryTurns)
	assert.Equal(t, "http://localhost:9999", s.Gemini.URL)
}

func TestResolve_TrustedProxies(t *testing.T) {
	path := writeConfig(t, `
server:
  trusted_proxies: [10.0.0.0/8, 192.168.1.7]
`)
	v, err := Load(path)
	require.NoError(t, err)
	s, err := Resolve(v, Secrets{})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.7"}, s.Server.TrustedProxies)

	path = writeConfig(t, `
server:
  trusted_proxies: [10.0.0.0/33]
`)
	v, err = Load(path)
	require.NoError(t, err)
	_, err = Resolve(v, Secrets{})
	assert.ErrorContains(t, err, "trusted_proxies")
}

func TestResolve_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CG_SERVER_PORT", "7070")
	t.Setenv("CG_CHAT_MAX_HISTORY_TURNS", "4")

	v, err := Load("")
	require.NoError(t, err)
	s, err := Resolve(v, Secrets{})
	require.NoError(t, err)

	assert.Equal(t, 7070, s.Server.Port)
	assert.Equal(t, 4, s.Chat.MaxHistoryTurns)
}

func TestResolve_ModelSecretOverlay(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := Load("")
	require.NoError(t, err)
	s, err := Resolve(v, Secrets{GeminiModel: "gemini-exp"})
	require.NoError(t, err)

	assert.Equal(t, "gemini-exp", s.Chat.Model)
	assert.Equal(t, "gemini-exp", s.Gemini.Model)
	assert.Equal(t, []string{"gemini-exp", "gemini-2.5-flash", "gemini-2.5-flash-lite"}, s.Chat.Candidates())
}

func TestResolve_InvalidChatConfig(t *testing.T) {
	path := writeConfig(t, `
chat:
  max_message_length: 0
  backoff_multiplier: 0.5
`)

	v, err := Load(path)
	require.NoError(t, err)
	_, err = Resolve(v, Secrets{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_message_length")
	assert.Contains(t, err.Error(), "backoff_multiplier")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "  key-123  ")
	t.Setenv("GEMINI_MODEL", "gemini-exp")
	t.Setenv("ADMIN_SESSION_SECRET", "s3cret")
	t.Setenv("ADMIN_EMAIL", "admin@example.org")

	s, err := LoadSecrets()
	require.NoError(t, err)
	assert.Equal(t, "key-123", s.GeminiAPIKey)
	assert.Equal(t, "gemini-exp", s.GeminiModel)
	assert.Equal(t, "s3cret", s.AdminSessionSecret)
	assert.Equal(t, "admin@example.org", s.AdminEmail)
}

func TestSecrets_LogFieldsNeverLeakValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	s := Secrets{GeminiAPIKey: "AIza-very-secret", AdminSessionSecret: "hmac-very-secret"}
	logger.Info("secrets loaded", s.LogFields()...)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, true, fields["gemini_api_key_set"])
	assert.Equal(t, true, fields["admin_session_secret_set"])
	for _, v := range fields {
		if str, ok := v.(string); ok {
			assert.NotContains(t, str, "very-secret")
		}
	}
}
