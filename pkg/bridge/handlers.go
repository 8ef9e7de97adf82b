package bridge

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nanobridge-dev/nanobridge/pkg/capability"
	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
)

// handleAction returns the handler for one capability endpoint. Validation
// failures and a missing executor connection are answered immediately and
// never start a relay round trip.
func (a *App) handleAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params capability.Params
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			a.Metrics.ObserveRequest(action, "validation_error")
			writeFailure(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if msg := validateParams(action, &params); msg != "" {
			a.Metrics.ObserveRequest(action, "validation_error")
			writeFailure(w, http.StatusBadRequest, msg)
			return
		}

		if !a.Hub.Connected() {
			a.Metrics.ObserveRequest(action, "not_connected")
			writeFailure(w, http.StatusServiceUnavailable,
				"Executor not connected. Open the executor before sending requests.")
			return
		}

		resp, err := a.Hub.Call(r.Context(), action, &params)
		if err != nil {
			switch apperrors.Code(err) {
			case apperrors.ErrCodeNotConnected:
				a.Metrics.ObserveRequest(action, "not_connected")
				writeFailure(w, http.StatusServiceUnavailable,
					"Executor not connected. Open the executor before sending requests.")
			case apperrors.ErrCodeTimeout:
				a.Metrics.ObserveRequest(action, "timeout")
				writeFailure(w, http.StatusGatewayTimeout,
					"Request timed out waiting for the executor.")
			default:
				a.Metrics.ObserveRequest(action, "error")
				writeFailure(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		if !resp.Success {
			a.Metrics.ObserveRequest(action, "executor_error")
			writeFailure(w, http.StatusInternalServerError, resp.Error)
			return
		}

		var result capability.Result
		if err := json.Unmarshal(resp.Value, &result); err != nil {
			a.Logger.Error("malformed executor result",
				zap.String("action", action),
				zap.Error(err))
			a.Metrics.ObserveRequest(action, "error")
			writeFailure(w, http.StatusInternalServerError, "malformed executor result")
			return
		}

		a.Metrics.ObserveRequest(action, "success")
		writeSuccess(w, &result)
	}
}

// validateParams checks the required fields for an action and returns an
// error message, or empty when the request is well formed.
func validateParams(action string, params *capability.Params) string {
	switch capability.Action(action) {
	case capability.ActionPrompt:
		if params.UserPrompt == "" {
			return "userPrompt is required"
		}
	case capability.ActionWrite:
		if params.Prompt == "" {
			return "prompt is required"
		}
	case capability.ActionTranslate:
		if params.Text == "" {
			return "text is required"
		}
		if params.TargetLanguage == "" {
			return "targetLanguage is required"
		}
	case capability.ActionSummarize, capability.ActionRewrite,
		capability.ActionProofread, capability.ActionDetectLanguage:
		if params.Text == "" {
			return "text is required"
		}
	}
	return ""
}
