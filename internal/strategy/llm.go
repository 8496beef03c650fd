// In file: internal/strategy/llm.go
package strategy

import (
	"context"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/llm"
)

// LLM delegates to the language-model classifier.
type LLM struct {
	classifier llm.IntentClassifier
	logger     *zap.Logger
}

// NewLLM wraps a classifier. With a nil classifier the strategy abstains.
func NewLLM(classifier llm.IntentClassifier, logger *zap.Logger) *LLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLM{classifier: classifier, logger: logger.Named("strategy.llm")}
}

func (l *LLM) Name() string { return "llm" }

// Recognize always yields an intent when a classifier is configured; model
// failures come back as UNKNOWN.
func (l *LLM) Recognize(ctx context.Context, text string, info map[string]any, history []dialogue.Message) (*intent.Intent, error) {
	if l.classifier == nil {
		return nil, nil
	}

	cls := l.classifier.ClassifyIntent(ctx, text, info, history)
	t := intent.ParseType(cls.Data.Intent)
	confidence := LLMDefaultConfidence
	if cls.Data.Confidence != nil {
		confidence = *cls.Data.Confidence
	}

	if !cls.Success {
		l.logger.Warn("classifier fell back", zap.String("message", cls.Message))
	}
	l.logger.Debug("classifier verdict",
		zap.String("raw_intent", cls.Data.Intent),
		zap.String("intent", t.String()),
		zap.Float64("confidence", confidence))

	return intent.New(t, confidence, text, nil), nil
}
