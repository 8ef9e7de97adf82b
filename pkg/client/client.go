// Package client is a typed HTTP caller for the bridge, suitable for
// automation tools that invoke capabilities as part of a workflow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
)

// Config holds the connection settings for a bridge client.
type Config struct {
	BridgeURL string
	APIKey    string
	Timeout   time.Duration
}

// Client calls the bridge's capability endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a bridge client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 35 * time.Second
	}
	return &Client{
		baseURL:    cfg.BridgeURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SessionOptions are common to every capability request.
type SessionOptions struct {
	SessionID       string `json:"sessionId,omitempty"`
	ForceNewSession bool   `json:"forceNewSession,omitempty"`
}

// PromptRequest invokes the general prompting capability.
type PromptRequest struct {
	SessionOptions
	UserPrompt     string   `json:"userPrompt"`
	SystemPrompt   string   `json:"systemPrompt,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	OutputLanguage string   `json:"outputLanguage,omitempty"`
}

// WriteRequest generates content from a writing prompt.
type WriteRequest struct {
	SessionOptions
	Prompt string `json:"prompt"`
	Tone   string `json:"tone,omitempty"`
	Format string `json:"format,omitempty"`
	Length string `json:"length,omitempty"`
}

// SummarizeRequest condenses text.
type SummarizeRequest struct {
	SessionOptions
	Text   string `json:"text"`
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
	Length string `json:"length,omitempty"`
}

// TranslateRequest translates text to a target language.
type TranslateRequest struct {
	SessionOptions
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage"`
}

// RewriteRequest rephrases text.
type RewriteRequest struct {
	SessionOptions
	Text   string `json:"text"`
	Tone   string `json:"tone,omitempty"`
	Format string `json:"format,omitempty"`
	Length string `json:"length,omitempty"`
}

// TextRequest carries a bare text payload, used by proofreading and
// language detection.
type TextRequest struct {
	SessionOptions
	Text string `json:"text"`
}

// Result is the normalized outcome of any capability call.
type Result struct {
	Result       string  `json:"result"`
	SessionID    string  `json:"sessionId,omitempty"`
	FallbackUsed bool    `json:"fallbackUsed"`
	OriginalAPI  *string `json:"originalApi"`
}

// Health is the bridge health payload.
type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) Prompt(ctx context.Context, req *PromptRequest) (*Result, error) {
	return c.post(ctx, "/prompt", req)
}

func (c *Client) Write(ctx context.Context, req *WriteRequest) (*Result, error) {
	return c.post(ctx, "/write", req)
}

func (c *Client) Summarize(ctx context.Context, req *SummarizeRequest) (*Result, error) {
	return c.post(ctx, "/summarize", req)
}

func (c *Client) Translate(ctx context.Context, req *TranslateRequest) (*Result, error) {
	return c.post(ctx, "/translate", req)
}

func (c *Client) Rewrite(ctx context.Context, req *RewriteRequest) (*Result, error) {
	return c.post(ctx, "/rewrite", req)
}

func (c *Client) Proofread(ctx context.Context, req *TextRequest) (*Result, error) {
	return c.post(ctx, "/proofread", req)
}

func (c *Client) DetectLanguage(ctx context.Context, req *TextRequest) (*Result, error) {
	return c.post(ctx, "/detect-language", req)
}

// Health reports the bridge's view of the executor connection.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeClientRequest, "failed to create request", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeClientRequest, "failed to send request", err)
	}
	defer resp.Body.Close()

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeClientRequest, "failed to decode response", err)
	}
	return &health, nil
}

// envelope matches both the success and the failure body shapes.
type envelope struct {
	Success      bool    `json:"success"`
	Result       string  `json:"result"`
	SessionID    string  `json:"sessionId"`
	FallbackUsed bool    `json:"fallbackUsed"`
	OriginalAPI  *string `json:"originalApi"`
	Error        string  `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, body any) (*Result, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeClientRequest, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeClientRequest, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeClientRequest, "failed to send request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeClientRequest, "failed to read response", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeClientRequest,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(raw)), nil)
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, apperrors.New(apperrors.ErrCodeClientRequest, msg, nil)
	}

	return &Result{
		Result:       env.Result,
		SessionID:    env.SessionID,
		FallbackUsed: env.FallbackUsed,
		OriginalAPI:  env.OriginalAPI,
	}, nil
}
