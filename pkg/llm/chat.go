package llm

import (
	"context"
	"sync"
)

// Chat is a multi-turn conversation bound to one backend client. The system
// instruction is fixed at construction and the turn history accumulates across
// Prompt calls, so a Chat behaves like a persistent model session even though
// each backend call is stateless.
type Chat struct {
	client      Client
	system      string
	temperature *float64
	topK        *int

	mu      sync.Mutex
	history []Message
}

// NewChat creates a conversation. The system instruction is applied here,
// once, and never again for the life of the conversation.
func NewChat(client Client, system string, temperature *float64, topK *int) *Chat {
	return &Chat{
		client:      client,
		system:      system,
		temperature: temperature,
		topK:        topK,
	}
}

// Prompt sends one user turn and records both sides of the exchange.
func (c *Chat) Prompt(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	messages := make([]Message, len(c.history), len(c.history)+1)
	copy(messages, c.history)
	c.mu.Unlock()

	messages = append(messages, Message{Role: RoleUser, Content: text})

	reply, err := c.client.Generate(ctx, &GenerateRequest{
		System:      c.system,
		Messages:    messages,
		Temperature: c.temperature,
		TopK:        c.topK,
	})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.history = append(c.history,
		Message{Role: RoleUser, Content: text},
		Message{Role: RoleAssistant, Content: reply},
	)
	c.mu.Unlock()

	return reply, nil
}

// History returns a copy of the accumulated turns.
func (c *Chat) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// Destroy releases the conversation state.
func (c *Chat) Destroy() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
}
