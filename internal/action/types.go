// In file: internal/action/types.go

// Package action turns a recognized intent and its mapped Action into the
// user-facing result. Every intent type is served by one Handler held in a
// Registry; types without a dedicated handler fall through to the generic one.
package action

import (
	"context"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
)

// Result is the payload returned to the client under data.result. The
// optional top-level fields are only set by the handlers they belong to.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    *Data  `json:"data,omitempty"`

	RecordingID string `json:"recording_id,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
	Device      string `json:"device,omitempty"`
	QueryType   string `json:"query_type,omitempty"`
	ActionType  string `json:"action_type,omitempty"`
	Target      string `json:"target,omitempty"`
	Operation   string `json:"operation,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Data is the device-facing command.
type Data struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params"`
	Result  any            `json:"result,omitempty"`
}

// Request is everything a handler may need to produce its Result.
type Request struct {
	SessionID string
	Intent    *intent.Intent
	Action    intent.Action
	// DeviceCity is the session's reported device location, used when the
	// utterance names no city.
	DeviceCity string
}

// Handler produces the Result for one intent type.
type Handler interface {
	Handle(ctx context.Context, req Request) (Result, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (Result, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Statuses and codes shared by the handlers.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	codeOK    = 200
	codeError = 500
)

func command(name string, params map[string]any) *Data {
	if params == nil {
		params = map[string]any{}
	}
	return &Data{Command: name, Params: params}
}
