// In file: internal/service/recognize.go

// Package service orchestrates one recognition request end to end: session
// memory, the strategy chain, action mapping, result generation and intent
// persistence. It is the only thing the HTTP layer and the CLI talk to.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/action"
	"github.com/chengwenxing-cmd/VoiceService/internal/apperrors"
	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/store"
	"github.com/chengwenxing-cmd/VoiceService/internal/strategy"
)

// DefaultSessionID is used when a request carries no session id.
const DefaultSessionID = "default"

// RecognizeRequest is one utterance to recognize.
type RecognizeRequest struct {
	Text      string         `json:"text"`
	Context   map[string]any `json:"context,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

// RecognizeResponse is the data envelope of a successful recognition.
// Confidence is rendered with two decimals.
type RecognizeResponse struct {
	Intent     string        `json:"intent"`
	Confidence string        `json:"confidence"`
	Query      string        `json:"query"`
	Result     action.Result `json:"result"`
}

// Service wires the recognition pipeline together. Construct it once and
// share it; it is safe for concurrent use.
type Service struct {
	sessions *dialogue.Store
	chain    *strategy.Chain
	results  *action.Registry
	intents  store.IntentStore
	logger   *zap.Logger
}

// New creates the service. intents may be nil when persistence is disabled.
func New(sessions *dialogue.Store, chain *strategy.Chain, results *action.Registry, intents store.IntentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions: sessions,
		chain:    chain,
		results:  results,
		intents:  intents,
		logger:   logger.Named("service"),
	}
}

// Recognize runs the whole pipeline for one utterance. Requests for the same
// session are serialized so their history appends never interleave.
func (s *Service) Recognize(ctx context.Context, req RecognizeRequest) (*RecognizeResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.Validation("text不能为空")
	}
	sessionID := normalizeSessionID(req.SessionID)

	unlock := s.sessions.LockSession(sessionID)
	defer unlock()

	start := time.Now()
	s.logger.Info("recognizing intent",
		zap.String("session_id", sessionID),
		zap.String("text", text))

	s.sessions.AddUserMessage(sessionID, text)
	history := s.sessions.History(sessionID)

	info := make(map[string]any, len(req.Context)+2)
	for k, v := range req.Context {
		info[k] = v
	}
	info["session_id"] = sessionID

	deviceCity := ""
	if loc, ok := s.sessions.Location(sessionID); ok {
		deviceCity = loc.City
		info["device_location"] = loc
	}

	in, err := s.chain.Resolve(ctx, text, info, history)
	if err != nil {
		return nil, err
	}

	act := intent.MapAction(in)
	s.logger.Debug("action mapped",
		zap.String("intent", in.Type().String()),
		zap.String("action", string(act.Type)),
		zap.String("target", act.Target),
		zap.String("operation", act.Operation))

	result, err := s.results.Generate(ctx, action.Request{
		SessionID:  sessionID,
		Intent:     in,
		Action:     act,
		DeviceCity: deviceCity,
	})
	if err != nil {
		return nil, err
	}

	s.sessions.AddAssistantMessage(sessionID, result.Message)
	s.chain.Persist(ctx, in)

	s.logger.Info("intent recognized",
		zap.String("session_id", sessionID),
		zap.String("intent", in.Type().String()),
		zap.Float64("confidence", in.Confidence()),
		zap.String("status", result.Status),
		zap.Duration("latency", time.Since(start)))

	return &RecognizeResponse{
		Intent:     in.Type().String(),
		Confidence: FormatConfidence(in.Confidence()),
		Query:      text,
		Result:     result,
	}, nil
}

// FormatConfidence renders a confidence with two decimals.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.2f", c)
}

func normalizeSessionID(id string) string {
	if id = strings.TrimSpace(id); id == "" {
		return DefaultSessionID
	}
	return id
}
