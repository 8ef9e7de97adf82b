package llm

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/nanobridge-dev/nanobridge/pkg/config"
	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
)

// GeminiClient implements the Client interface for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *config.LLMConfig
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg *config.LLMConfig) (*GeminiClient, error) {
	if cfg == nil {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "config is required", nil)
	}

	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "API key is required", nil)
	}

	ctx := context.Background()
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}

	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "failed to create Gemini client", err)
	}

	return &GeminiClient{
		client: client,
		config: cfg,
	}, nil
}

// Generate sends the conversation and returns the assistant's reply text
func (c *GeminiClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	contents := c.convertMessages(req.Messages)
	genConfig := c.buildConfig(req)

	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, genConfig)
	if err != nil {
		return "", apperrors.New(apperrors.ErrCodeExecutionFailed, "Gemini API call failed", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperrors.New(apperrors.ErrCodeExecutionFailed, "Gemini returned no candidates", nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return sb.String(), nil
}

// ModelName returns the name of the model being used
func (c *GeminiClient) ModelName() string {
	return c.config.Model
}

func (c *GeminiClient) convertMessages(messages []Message) []*genai.Content {
	var contents []*genai.Content

	for _, msg := range messages {
		// Gemini calls the assistant role "model"
		role := string(msg.Role)
		if msg.Role == RoleAssistant {
			role = "model"
		}

		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	return contents
}

func (c *GeminiClient) buildConfig(req *GenerateRequest) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{}

	if req.System != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	if req.Temperature != nil {
		genConfig.Temperature = genai.Ptr(float32(*req.Temperature))
	} else if c.config.Temperature != nil {
		genConfig.Temperature = genai.Ptr(float32(*c.config.Temperature))
	}

	if req.TopK != nil {
		genConfig.TopK = genai.Ptr(float32(*req.TopK))
	} else if c.config.TopK != nil {
		genConfig.TopK = genai.Ptr(float32(*c.config.TopK))
	}

	return genConfig
}
