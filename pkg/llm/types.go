package llm

import "context"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest contains everything a backend needs for one completion.
type GenerateRequest struct {
	// System is the instruction applied to the whole exchange, if any.
	System string `json:"system,omitempty"`
	// Messages is the accumulated turn history, oldest first.
	Messages []Message `json:"messages"`
	// Temperature overrides the backend default when set.
	Temperature *float64 `json:"temperature,omitempty"`
	// TopK overrides the backend default when set.
	TopK *int `json:"top_k,omitempty"`
}

// Client defines the interface for generative backends
type Client interface {
	// Generate sends the conversation and returns the assistant's reply text
	Generate(ctx context.Context, req *GenerateRequest) (string, error)

	// ModelName returns the name of the model being used
	ModelName() string
}
