package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the bridge configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Relay    RelayConfig    `yaml:"relay"`
	Session  SessionConfig  `yaml:"session"`
	LLM      LLMConfig      `yaml:"llm"`
	Executor ExecutorConfig `yaml:"executor"`
	LogLevel string         `yaml:"log_level"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	APIKey    string `yaml:"api_key,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// RelayConfig holds relay channel configuration
type RelayConfig struct {
	// RequestTimeout bounds each HTTP call's wait for an executor response.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ReconnectInterval is how long the executor waits before redialing.
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	// BridgeURL is the ws:// endpoint the executor dials.
	BridgeURL string `yaml:"bridge_url"`
}

// SessionConfig holds session registry configuration
type SessionConfig struct {
	MaxIdle       time.Duration `yaml:"max_idle"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LLMConfig holds the generative backend configuration for the executor
type LLMConfig struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key,omitempty"`
	APIKeyEnv   string   `yaml:"api_key_env,omitempty"`
	BaseURL     string   `yaml:"base_url,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	TopK        *int     `yaml:"top_k,omitempty"`
}

// ExecutorConfig holds per-capability enablement for the executor.
// A disabled capability is reported as unavailable, which routes callers
// through the prompting fallback.
type ExecutorConfig struct {
	Write          *bool `yaml:"write,omitempty"`
	Summarize      *bool `yaml:"summarize,omitempty"`
	Translate      *bool `yaml:"translate,omitempty"`
	Rewrite        *bool `yaml:"rewrite,omitempty"`
	Proofread      *bool `yaml:"proofread,omitempty"`
	DetectLanguage *bool `yaml:"detect_language,omitempty"`
}

// Enabled reports the effective enablement of a capability flag (default on).
func Enabled(flag *bool) bool {
	return flag == nil || *flag
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ResolveEnv()
	config.SetDefaults()

	return &config, nil
}

// ResolveEnv resolves secrets referenced by environment variable name
func (c *Config) ResolveEnv() {
	if c.Server.APIKeyEnv != "" {
		c.Server.APIKey = os.Getenv(c.Server.APIKeyEnv)
	}
	if c.LLM.APIKeyEnv != "" {
		c.LLM.APIKey = os.Getenv(c.LLM.APIKeyEnv)
	}
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3333
	}

	if c.Relay.RequestTimeout == 0 {
		c.Relay.RequestTimeout = 30 * time.Second
	}
	if c.Relay.ReconnectInterval == 0 {
		c.Relay.ReconnectInterval = 5 * time.Second
	}
	if c.Relay.BridgeURL == "" {
		c.Relay.BridgeURL = "ws://localhost:3333/ws"
	}

	if c.Session.MaxIdle == 0 {
		c.Session.MaxIdle = 30 * time.Minute
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = 10 * time.Minute
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Relay.RequestTimeout <= 0 {
		return fmt.Errorf("relay.request_timeout must be positive")
	}
	if c.Relay.ReconnectInterval <= 0 {
		return fmt.Errorf("relay.reconnect_interval must be positive")
	}
	if c.Session.MaxIdle <= 0 {
		return fmt.Errorf("session.max_idle must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive")
	}
	return nil
}

// ValidateExecutor validates the fields the executor process needs
func (c *Config) ValidateExecutor() error {
	if c.Relay.BridgeURL == "" {
		return fmt.Errorf("relay.bridge_url is required")
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.APIKey == "" && c.LLM.APIKeyEnv == "" {
		return fmt.Errorf("llm provider %s requires api_key or api_key_env", c.LLM.Provider)
	}
	return nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	config := &Config{}
	config.SetDefaults()
	return config
}
