// Package capability executes relay requests against the configured
// generative backend: one provider per specialized action, with a general
// prompting path that doubles as the fallback for everything else.
package capability

import "encoding/json"

// Action identifies one text-transformation operation.
type Action string

const (
	ActionPrompt         Action = "prompt"
	ActionWrite          Action = "write"
	ActionSummarize      Action = "summarize"
	ActionTranslate      Action = "translate"
	ActionRewrite        Action = "rewrite"
	ActionProofread      Action = "proofread"
	ActionDetectLanguage Action = "detectLanguage"
)

// Params is the action-specific parameter bag carried inside a relay
// request. Fields not relevant to an action are simply left empty.
type Params struct {
	// plain prompting
	UserPrompt   string `json:"userPrompt,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// writing
	Prompt string `json:"prompt,omitempty"`

	// text transformations
	Text string `json:"text,omitempty"`

	// styling options
	Tone   string `json:"tone,omitempty"`
	Format string `json:"format,omitempty"`
	Length string `json:"length,omitempty"`
	Type   string `json:"type,omitempty"`

	// translation
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`

	// sampling
	Temperature    *float64 `json:"temperature,omitempty"`
	TopK           *int     `json:"topK,omitempty"`
	OutputLanguage string   `json:"outputLanguage,omitempty"`

	// session control
	SessionID       string `json:"sessionId,omitempty"`
	ForceNewSession bool   `json:"forceNewSession,omitempty"`
}

// Result is the normalized success value for every action, regardless of
// whether the specialized path or the fallback produced it.
type Result struct {
	Result       string  `json:"result"`
	SessionID    string  `json:"sessionId,omitempty"`
	FallbackUsed bool    `json:"fallbackUsed"`
	OriginalAPI  *string `json:"originalApi"`
}

// Marshal encodes the result for a relay response payload.
func (r *Result) Marshal() (json.RawMessage, error) {
	return json.Marshal(r)
}
