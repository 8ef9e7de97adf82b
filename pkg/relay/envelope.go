// Package relay implements the persistent bidirectional channel between the
// bridge server and the capability executor. The channel carries tagged
// request/response envelopes; correlation is by id, never by arrival order,
// and the payload inside an envelope is opaque to this package.
package relay

import "encoding/json"

// Request is the outbound envelope from the bridge to the executor.
type Request struct {
	CorrelationID string          `json:"correlationId"`
	Action        string          `json:"action"`
	Parameters    json.RawMessage `json:"parameters"`
}

// Response is the inbound envelope from the executor to the bridge.
// Exactly one response is produced per dispatched correlation id.
type Response struct {
	CorrelationID string          `json:"correlationId"`
	Success       bool            `json:"success"`
	Value         json.RawMessage `json:"value,omitempty"`
	Error         string          `json:"error,omitempty"`
}
