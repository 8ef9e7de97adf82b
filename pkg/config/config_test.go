package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3333, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Relay.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.Relay.ReconnectInterval)
	assert.Equal(t, 30*time.Minute, cfg.Session.MaxIdle)
	assert.Equal(t, 10*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  host: 127.0.0.1
  port: 4444
relay:
  request_timeout: 10s
  reconnect_interval: 2s
session:
  max_idle: 5m
  sweep_interval: 1m
llm:
  provider: openai
  model: gpt-4o
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 4444, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Relay.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.Relay.ReconnectInterval)
	assert.Equal(t, 5*time.Minute, cfg.Session.MaxIdle)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Defaults still fill unset fields
	assert.Equal(t, "ws://localhost:3333/ws", cfg.Relay.BridgeURL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_ResolvesEnvKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  api_key_env: BRIDGE_TEST_API_KEY
llm:
  provider: gemini
  api_key_env: BRIDGE_TEST_LLM_KEY
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("BRIDGE_TEST_API_KEY", "secret-1")
	t.Setenv("BRIDGE_TEST_LLM_KEY", "secret-2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-1", cfg.Server.APIKey)
	assert.Equal(t, "secret-2", cfg.LLM.APIKey)
}

func TestValidate_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Relay.RequestTimeout = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Session.MaxIdle = 0
	cfg.Session.MaxIdle = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateExecutor(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ValidateExecutor()
	assert.Error(t, err, "executor config requires an API key")

	cfg.LLM.APIKey = "key"
	assert.NoError(t, cfg.ValidateExecutor())
}

func TestEnabled(t *testing.T) {
	off := false
	on := true

	assert.True(t, Enabled(nil))
	assert.True(t, Enabled(&on))
	assert.False(t, Enabled(&off))
}
