package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nanobridge-dev/nanobridge/pkg/config"
	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
)

const anthropicDefaultMaxTokens = 4096

// AnthropicClient implements the Client interface for Anthropic
type AnthropicClient struct {
	client anthropic.Client
	config *config.LLMConfig
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(cfg *config.LLMConfig) (*AnthropicClient, error) {
	if cfg == nil {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "Anthropic config is required", nil)
	}

	opts := []option.RequestOption{}

	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		config: cfg,
	}, nil
}

// Generate sends the conversation and returns the assistant's reply text
func (c *AnthropicClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: anthropicDefaultMaxTokens,
		Messages:  c.convertMessages(req.Messages),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	} else if c.config.Temperature != nil {
		params.Temperature = anthropic.Float(*c.config.Temperature)
	}

	if req.TopK != nil {
		params.TopK = anthropic.Int(int64(*req.TopK))
	} else if c.config.TopK != nil {
		params.TopK = anthropic.Int(int64(*c.config.TopK))
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", apperrors.New(apperrors.ErrCodeExecutionFailed, "Anthropic API call failed", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return sb.String(), nil
}

// ModelName returns the name of the model being used
func (c *AnthropicClient) ModelName() string {
	return c.config.Model
}

func (c *AnthropicClient) convertMessages(messages []Message) []anthropic.MessageParam {
	var params []anthropic.MessageParam

	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == RoleAssistant {
			params = append(params, anthropic.NewAssistantMessage(block))
		} else {
			params = append(params, anthropic.NewUserMessage(block))
		}
	}

	return params
}
