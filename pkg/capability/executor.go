package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
	"github.com/nanobridge-dev/nanobridge/pkg/relay"
	"github.com/nanobridge-dev/nanobridge/pkg/session"
)

// Executor dispatches relay requests to capability providers. Specialized
// actions try their provider first and fall back to plain prompting; plain
// prompting itself never falls back.
type Executor struct {
	registry  *session.Registry
	providers map[Action]Provider
	logger    *zap.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the executor logger.
func WithExecutorLogger(l *zap.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an executor over the given session registry and
// providers. Actions without a registered provider go straight to fallback.
func NewExecutor(registry *session.Registry, providers []Provider, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:  registry,
		providers: make(map[Action]Provider, len(providers)),
		logger:    zap.NewNop(),
	}
	for _, p := range providers {
		e.providers[p.Action()] = p
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle executes one relay request and always produces a response.
func (e *Executor) Handle(ctx context.Context, req *relay.Request) *relay.Response {
	var params Params
	if len(req.Parameters) > 0 {
		if err := json.Unmarshal(req.Parameters, &params); err != nil {
			return failure(req.CorrelationID, apperrors.New(apperrors.ErrCodeInvalidInput,
				"malformed request parameters", err))
		}
	}

	if params.ForceNewSession && params.SessionID != "" {
		e.registry.Destroy(params.SessionID)
	}

	result, err := e.execute(ctx, Action(req.Action), &params)
	if err != nil {
		e.logger.Warn("request failed",
			zap.String("correlation_id", req.CorrelationID),
			zap.String("action", req.Action),
			zap.Error(err))
		return failure(req.CorrelationID, err)
	}

	value, err := result.Marshal()
	if err != nil {
		return failure(req.CorrelationID, apperrors.New(apperrors.ErrCodeExecutionFailed,
			"failed to encode result", err))
	}

	return &relay.Response{
		CorrelationID: req.CorrelationID,
		Success:       true,
		Value:         value,
	}
}

func (e *Executor) execute(ctx context.Context, action Action, params *Params) (*Result, error) {
	switch action {
	case ActionPrompt:
		if params.UserPrompt == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "userPrompt is required", nil)
		}
		return e.promptSession(ctx, params, params.SystemPrompt, params.UserPrompt, nil)

	case ActionWrite:
		if params.Prompt == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "prompt is required", nil)
		}
	case ActionTranslate:
		if params.Text == "" || params.TargetLanguage == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "text and targetLanguage are required", nil)
		}
	case ActionSummarize, ActionRewrite, ActionProofread, ActionDetectLanguage:
		if params.Text == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "text is required", nil)
		}
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown action %q", action), nil)
	}

	return e.specialized(ctx, action, params)
}

// specialized runs the provider for the action and, when it is unavailable or
// fails, reproduces the action through plain prompting. A backend still
// provisioning its model is surfaced as-is so the caller can retry later.
func (e *Executor) specialized(ctx context.Context, action Action, params *Params) (*Result, error) {
	var specErr error
	if provider, ok := e.providers[action]; ok {
		result, err := provider.Execute(ctx, params)
		if err == nil {
			return &Result{Result: result}, nil
		}
		if apperrors.HasCode(err, apperrors.ErrCodeDownloading) {
			return nil, err
		}
		specErr = err
	} else {
		specErr = apperrors.New(apperrors.ErrCodeUnavailable,
			fmt.Sprintf("%s capability is not available", action), nil)
	}

	e.logger.Info("falling back to prompting",
		zap.String("action", string(action)),
		zap.Error(specErr))

	instruction, userTurn, ok := FallbackInstruction(action, params)
	if !ok {
		return nil, specErr
	}

	result, err := e.promptSession(ctx, params, instruction, userTurn, &action)
	if err != nil {
		combined := multierror.Append(specErr, err)
		if apperrors.HasCode(specErr, apperrors.ErrCodeUserInteraction) {
			combined = multierror.Append(combined, fmt.Errorf(
				"the %s capability needs user interaction; use the prompt action for automated workflows", action))
		}
		return nil, apperrors.New(apperrors.ErrCodeExecutionFailed,
			fmt.Sprintf("%s failed on both the specialized and the fallback path", action), combined)
	}
	return result, nil
}

// promptSession runs one turn of plain prompting through the session
// registry. via is non-nil when this call is a fallback for a specialized
// action and tags the result accordingly.
func (e *Executor) promptSession(ctx context.Context, params *Params, system, userTurn string, via *Action) (*Result, error) {
	id, conv, err := e.registry.Resolve(ctx, params.SessionID, session.Config{
		SystemPrompt: system,
		Temperature:  params.Temperature,
		TopK:         params.TopK,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeSessionCreate, "failed to create session", err)
	}
	defer e.registry.Release(id)

	result, err := conv.Prompt(ctx, userTurn)
	if err != nil {
		if apperrors.Code(err) != "" {
			return nil, err
		}
		return nil, apperrors.New(apperrors.ErrCodeExecutionFailed, "prompting failed", err)
	}

	out := &Result{Result: result, SessionID: id}
	if via != nil {
		name := string(*via)
		out.FallbackUsed = true
		out.OriginalAPI = &name
	}
	return out, nil
}

func failure(correlationID string, err error) *relay.Response {
	return &relay.Response{
		CorrelationID: correlationID,
		Success:       false,
		Error:         err.Error(),
	}
}
