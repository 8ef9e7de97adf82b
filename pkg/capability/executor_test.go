package capability

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
	"github.com/nanobridge-dev/nanobridge/pkg/llm"
	"github.com/nanobridge-dev/nanobridge/pkg/relay"
	"github.com/nanobridge-dev/nanobridge/pkg/session"
)

// fakeBackend records every generate call and answers with a fixed reply.
type fakeBackend struct {
	mu       sync.Mutex
	requests []*llm.GenerateRequest
	reply    string
	err      error
}

func (f *fakeBackend) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *req
	copied.Messages = append([]llm.Message(nil), req.Messages...)
	f.requests = append(f.requests, &copied)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeBackend) ModelName() string { return "fake-model" }

func (f *fakeBackend) calls() []*llm.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*llm.GenerateRequest(nil), f.requests...)
}

// stubProvider gives tests direct control over a specialized path.
type stubProvider struct {
	action Action
	result string
	err    error
}

func (s *stubProvider) Action() Action                         { return s.action }
func (s *stubProvider) Availability(ctx context.Context) error { return s.err }
func (s *stubProvider) Execute(ctx context.Context, p *Params) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.result, nil
}

func newTestExecutor(t *testing.T, backend *fakeBackend, providers ...Provider) *Executor {
	t.Helper()

	registry := session.NewRegistry(func(ctx context.Context, cfg session.Config) (session.Conversation, error) {
		return llm.NewChat(backend, cfg.SystemPrompt, cfg.Temperature, cfg.TopK), nil
	})
	t.Cleanup(registry.Close)

	return NewExecutor(registry, providers)
}

func handle(t *testing.T, e *Executor, action Action, params *Params) *relay.Response {
	t.Helper()

	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return e.Handle(context.Background(), &relay.Request{
		CorrelationID: "test-1",
		Action:        string(action),
		Parameters:    raw,
	})
}

func decodeResult(t *testing.T, resp *relay.Response) *Result {
	t.Helper()

	require.True(t, resp.Success, "expected success, got error: %s", resp.Error)
	var result Result
	require.NoError(t, json.Unmarshal(resp.Value, &result))
	return &result
}

func TestExecutorPrompt(t *testing.T) {
	backend := &fakeBackend{reply: "hello there"}
	e := newTestExecutor(t, backend)

	resp := handle(t, e, ActionPrompt, &Params{UserPrompt: "say hello", SystemPrompt: "be brief"})
	result := decodeResult(t, resp)

	assert.Equal(t, "hello there", result.Result)
	assert.NotEmpty(t, result.SessionID)
	assert.False(t, result.FallbackUsed)
	assert.Nil(t, result.OriginalAPI)

	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "be brief", calls[0].System)
}

func TestExecutorPromptMissingField(t *testing.T) {
	e := newTestExecutor(t, &fakeBackend{reply: "x"})

	resp := handle(t, e, ActionPrompt, &Params{})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "userPrompt")
}

func TestExecutorUnknownAction(t *testing.T) {
	e := newTestExecutor(t, &fakeBackend{reply: "x"})

	resp := handle(t, e, Action("transmogrify"), &Params{Text: "abc"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown action")
}

func TestExecutorMalformedParameters(t *testing.T) {
	e := newTestExecutor(t, &fakeBackend{reply: "x"})

	resp := e.Handle(context.Background(), &relay.Request{
		CorrelationID: "test-1",
		Action:        string(ActionPrompt),
		Parameters:    json.RawMessage(`{"userPrompt":`),
	})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "malformed")
}

func TestExecutorSessionContinuity(t *testing.T) {
	backend := &fakeBackend{reply: "ok"}
	e := newTestExecutor(t, backend)

	first := decodeResult(t, handle(t, e, ActionPrompt, &Params{
		UserPrompt:   "my name is Ada",
		SystemPrompt: "remember facts",
	}))

	second := decodeResult(t, handle(t, e, ActionPrompt, &Params{
		UserPrompt: "what is my name?",
		SessionID:  first.SessionID,
	}))
	assert.Equal(t, first.SessionID, second.SessionID)

	calls := backend.calls()
	require.Len(t, calls, 2)
	// The second turn carries the first exchange and keeps the original
	// system instruction without reapplying a new one.
	assert.Equal(t, "remember facts", calls[1].System)
	require.Len(t, calls[1].Messages, 3)
	assert.Equal(t, "my name is Ada", calls[1].Messages[0].Content)
	assert.Equal(t, "what is my name?", calls[1].Messages[2].Content)
}

func TestExecutorForceNewSession(t *testing.T) {
	backend := &fakeBackend{reply: "ok"}
	e := newTestExecutor(t, backend)

	first := decodeResult(t, handle(t, e, ActionPrompt, &Params{UserPrompt: "turn one"}))

	second := decodeResult(t, handle(t, e, ActionPrompt, &Params{
		UserPrompt:      "turn two",
		SessionID:       first.SessionID,
		ForceNewSession: true,
	}))
	assert.Equal(t, first.SessionID, second.SessionID)

	calls := backend.calls()
	require.Len(t, calls, 2)
	// The recreated session starts with an empty history.
	require.Len(t, calls[1].Messages, 1)
	assert.Equal(t, "turn two", calls[1].Messages[0].Content)
}

func TestExecutorSpecializedSuccess(t *testing.T) {
	backend := &fakeBackend{reply: "unused"}
	e := newTestExecutor(t, backend, &stubProvider{action: ActionTranslate, result: "Hola"})

	result := decodeResult(t, handle(t, e, ActionTranslate, &Params{Text: "Hello", TargetLanguage: "es"}))
	assert.Equal(t, "Hola", result.Result)
	assert.False(t, result.FallbackUsed)
	assert.Nil(t, result.OriginalAPI)
	assert.Empty(t, backend.calls())
}

func TestExecutorFallbackWhenProviderUnavailable(t *testing.T) {
	backend := &fakeBackend{reply: "Hola"}
	e := newTestExecutor(t, backend, &stubProvider{
		action: ActionTranslate,
		err:    apperrors.New(apperrors.ErrCodeUnavailable, "translate capability is not available", nil),
	})

	result := decodeResult(t, handle(t, e, ActionTranslate, &Params{Text: "Hello", TargetLanguage: "es"}))
	assert.Equal(t, "Hola", result.Result)
	assert.True(t, result.FallbackUsed)
	require.NotNil(t, result.OriginalAPI)
	assert.Equal(t, "translate", *result.OriginalAPI)
	assert.NotEmpty(t, result.SessionID)

	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].System, "translator")
	assert.Contains(t, calls[0].System, "es")
}

func TestExecutorFallbackWhenNoProviderRegistered(t *testing.T) {
	backend := &fakeBackend{reply: "a short summary"}
	e := newTestExecutor(t, backend)

	result := decodeResult(t, handle(t, e, ActionSummarize, &Params{Text: "a very long text"}))
	assert.True(t, result.FallbackUsed)
	require.NotNil(t, result.OriginalAPI)
	assert.Equal(t, "summarize", *result.OriginalAPI)
}

func TestExecutorDownloadingSurfacedWithoutFallback(t *testing.T) {
	backend := &fakeBackend{reply: "unused"}
	e := newTestExecutor(t, backend, &stubProvider{
		action: ActionWrite,
		err:    apperrors.New(apperrors.ErrCodeDownloading, "model is still downloading", nil),
	})

	resp := handle(t, e, ActionWrite, &Params{Prompt: "a poem"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "downloading")
	assert.Empty(t, backend.calls())
}

func TestExecutorUserInteractionTriggersFallback(t *testing.T) {
	backend := &fakeBackend{reply: "generated content"}
	e := newTestExecutor(t, backend, &stubProvider{
		action: ActionWrite,
		err:    apperrors.New(apperrors.ErrCodeUserInteraction, "write needs a user gesture", nil),
	})

	result := decodeResult(t, handle(t, e, ActionWrite, &Params{Prompt: "a poem"}))
	assert.True(t, result.FallbackUsed)
	require.NotNil(t, result.OriginalAPI)
	assert.Equal(t, "write", *result.OriginalAPI)
}

func TestExecutorDoubleFailureMentionsBoth(t *testing.T) {
	backend := &fakeBackend{err: apperrors.New(apperrors.ErrCodeExecutionFailed, "backend exploded", nil)}
	e := newTestExecutor(t, backend, &stubProvider{
		action: ActionRewrite,
		err:    apperrors.New(apperrors.ErrCodeExecutionFailed, "rewriter broke", nil),
	})

	resp := handle(t, e, ActionRewrite, &Params{Text: "some text"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "rewriter broke")
	assert.Contains(t, resp.Error, "backend exploded")
}

func TestExecutorUserInteractionDoubleFailureSuggestsPrompt(t *testing.T) {
	backend := &fakeBackend{err: apperrors.New(apperrors.ErrCodeExecutionFailed, "backend exploded", nil)}
	e := newTestExecutor(t, backend, &stubProvider{
		action: ActionWrite,
		err:    apperrors.New(apperrors.ErrCodeUserInteraction, "write needs a user gesture", nil),
	})

	resp := handle(t, e, ActionWrite, &Params{Prompt: "a poem"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "user gesture")
	assert.Contains(t, resp.Error, "prompt action")
}

func TestExecutorPromptNeverFallsBack(t *testing.T) {
	backend := &fakeBackend{err: apperrors.New(apperrors.ErrCodeExecutionFailed, "backend exploded", nil)}
	e := newTestExecutor(t, backend)

	resp := handle(t, e, ActionPrompt, &Params{UserPrompt: "hi"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "backend exploded")

	// Exactly one backend attempt, no second path.
	assert.Len(t, backend.calls(), 1)
}
