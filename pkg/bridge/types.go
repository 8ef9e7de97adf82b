package bridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nanobridge-dev/nanobridge/pkg/capability"
)

// successResponse is the JSON body for a completed action, identical in
// shape whether the specialized path or the fallback produced the result.
type successResponse struct {
	Success      bool    `json:"success"`
	Result       string  `json:"result"`
	SessionID    string  `json:"sessionId,omitempty"`
	FallbackUsed bool    `json:"fallbackUsed"`
	OriginalAPI  *string `json:"originalApi"`
}

// errorResponse carries a failure; no success fields leak into it.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// healthResponse mirrors the health endpoint payload.
type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeSuccess(w http.ResponseWriter, result *capability.Result) {
	writeJSON(w, http.StatusOK, &successResponse{
		Success:      true,
		Result:       result.Result,
		SessionID:    result.SessionID,
		FallbackUsed: result.FallbackUsed,
		OriginalAPI:  result.OriginalAPI,
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &errorResponse{Error: message})
}

func writeHealth(w http.ResponseWriter, connected bool) {
	body := &healthResponse{
		Status:    "ok",
		Message:   "Executor connected",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if !connected {
		body.Status = "degraded"
		body.Message = "Executor not connected"
	}
	writeJSON(w, http.StatusOK, body)
}
