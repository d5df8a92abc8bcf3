package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT",
	"OPENAI_API_KEY",
	"OPENAI_BASE_URL",
	"OPENAI_MODEL",
	"ONBOARD_MAX_OUTPUT_TOKENS",
	"ONBOARD_TIMEOUT_SEC",
	"ONBOARD_TOKEN_BUDGET",
	"ONBOARD_ALLOWED_ORIGINS",
	"ONBOARD_LOG_LEVEL",
}

// clearEnv blanks every variable Load reads; empty values are ignored.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, 600, cfg.LLM.MaxOutputTokens)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Zero(t, cfg.LLM.TokenBudget)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: 8081
allowed_origins:
  - https://intranet.example.com
llm:
  model: gpt-4o
  max_output_tokens: 300
  timeout: 15s
  token_budget: 50000
logging:
  level: debug
  development: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, []string{"https://intranet.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 300, cfg.LLM.MaxOutputTokens)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 50000, cfg.LLM.TokenBudget)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL, "unset fields keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "port: [not a number"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("env wins over file", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "port: 8081\nllm:\n  model: gpt-4o\n")
		t.Setenv("PORT", "9090")
		t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	})

	t.Run("api key and base url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-proj-abcdefghijklmnopqrstuvwxyz")
		t.Setenv("OPENAI_BASE_URL", "http://localhost:8089/v1")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "sk-proj-abcdefghijklmnopqrstuvwxyz", cfg.LLM.APIKey)
		assert.Equal(t, "http://localhost:8089/v1", cfg.LLM.BaseURL)
	})

	t.Run("numeric and list values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ONBOARD_MAX_OUTPUT_TOKENS", "1200")
		t.Setenv("ONBOARD_TIMEOUT_SEC", "5")
		t.Setenv("ONBOARD_TOKEN_BUDGET", "1000")
		t.Setenv("ONBOARD_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
		t.Setenv("ONBOARD_LOG_LEVEL", "warn")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 1200, cfg.LLM.MaxOutputTokens)
		assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
		assert.Equal(t, 1000, cfg.LLM.TokenBudget)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("bad numbers are errors", func(t *testing.T) {
		for _, key := range []string{"PORT", "ONBOARD_MAX_OUTPUT_TOKENS", "ONBOARD_TIMEOUT_SEC", "ONBOARD_TOKEN_BUDGET"} {
			clearEnv(t)
			t.Setenv(key, "abc")
			_, err := Load("")
			assert.Error(t, err, key)
		}
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Port = 0
	cfg.LLM.MaxOutputTokens = -1
	cfg.LLM.Timeout = 0
	cfg.LLM.Model = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port 0 out of range")
	assert.Contains(t, err.Error(), "max_output_tokens")
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "model is required")
}

func TestKeyStatus(t *testing.T) {
	t.Run("empty key", func(t *testing.T) {
		status := NewKeyStatus("")
		assert.False(t, status.HasOpenAIKey)
		assert.Nil(t, status.Prefix)
	})

	t.Run("short key has prefix but is not valid", func(t *testing.T) {
		status := NewKeyStatus("sk-short")
		assert.False(t, status.HasOpenAIKey)
		require.NotNil(t, status.Prefix)
		assert.Equal(t, "sk-short", *status.Prefix)
	})

	t.Run("whitespace does not count", func(t *testing.T) {
		status := NewKeyStatus("   sk-1234567890     " + "        ")
		assert.False(t, status.HasOpenAIKey)
	})

	t.Run("multibyte prefix keeps whole characters", func(t *testing.T) {
		status := NewKeyStatus("sk-éééééééééééééééééééé")
		require.NotNil(t, status.Prefix)
		assert.Equal(t, "sk-ééééé", *status.Prefix)
		assert.True(t, utf8.ValidString(*status.Prefix))
		assert.True(t, status.HasOpenAIKey)
	})

	t.Run("multibyte characters count once toward length", func(t *testing.T) {
		// 12 characters, 21 bytes
		status := NewKeyStatus("sk-ééééééééé")
		assert.False(t, status.HasOpenAIKey)
	})

	t.Run("real looking key", func(t *testing.T) {
		key := "sk-proj-abcdefghijklmnopqrstuvwxyz0123456789"
		cfg := Default()
		cfg.LLM.APIKey = key

		status := cfg.KeyStatus()
		assert.True(t, status.HasOpenAIKey)
		require.NotNil(t, status.Prefix)
		assert.Equal(t, "sk-proj-", *status.Prefix)
		assert.NotContains(t, *status.Prefix, "abcdefgh")
	})
}
