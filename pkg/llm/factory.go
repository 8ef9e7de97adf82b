package llm

import (
	"fmt"
	"strings"

	"github.com/nanobridge-dev/nanobridge/pkg/config"
	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
)

// NewClientFromConfig creates a generative backend client from configuration
func NewClientFromConfig(cfg *config.LLMConfig) (Client, error) {
	if cfg == nil {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "llm config is required", nil)
	}

	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return NewGeminiClient(cfg)

	case "openai":
		return NewOpenAIClient(cfg)

	case "anthropic":
		return NewAnthropicClient(cfg)

	default:
		return nil, apperrors.New(apperrors.ErrCodeConfig,
			fmt.Sprintf("unsupported llm provider: %s", cfg.Provider), nil)
	}
}
