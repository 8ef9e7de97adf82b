package llm

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nanobridge-dev/nanobridge/pkg/config"
	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
)

// OpenAIClient implements the Client interface for OpenAI-compatible APIs
type OpenAIClient struct {
	client openai.Client
	config *config.LLMConfig
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg *config.LLMConfig) (*OpenAIClient, error) {
	if cfg == nil {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "OpenAI config is required", nil)
	}

	opts := []option.RequestOption{}

	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	// A custom base URL enables Azure or local OpenAI-compatible endpoints
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: cfg,
	}, nil
}

// Generate sends the conversation and returns the assistant's reply text
func (c *OpenAIClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.config.Model),
		Messages: c.convertMessages(req),
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	} else if c.config.Temperature != nil {
		params.Temperature = openai.Float(*c.config.Temperature)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", apperrors.New(apperrors.ErrCodeExecutionFailed, "OpenAI API call failed", err)
	}

	if len(completion.Choices) == 0 {
		return "", apperrors.New(apperrors.ErrCodeExecutionFailed, "OpenAI returned no choices", nil)
	}

	return completion.Choices[0].Message.Content, nil
}

// ModelName returns the name of the model being used
func (c *OpenAIClient) ModelName() string {
	return c.config.Model
}

func (c *OpenAIClient) convertMessages(req *GenerateRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)

	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	return messages
}
