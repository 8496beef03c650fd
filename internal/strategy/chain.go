// In file: internal/strategy/chain.go
package strategy

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/apperrors"
	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/llm"
	"github.com/chengwenxing-cmd/VoiceService/internal/store"
)

// =================================================================================
// Chain
// =================================================================================

// Chain runs its strategies in order and persists confident results.
type Chain struct {
	strategies []Strategy
	store      store.IntentStore
	logger     *zap.Logger
}

// NewChain builds a chain over an explicit strategy order. s may be nil, in
// which case Persist is a no-op.
func NewChain(strategies []Strategy, s store.IntentStore, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		strategies: append([]Strategy(nil), strategies...),
		store:      s,
		logger:     logger.Named("strategy.chain"),
	}
}

// NewDefaultChain wires the standard cache -> rule -> llm order.
func NewDefaultChain(s store.IntentStore, classifier llm.IntentClassifier, logger *zap.Logger) *Chain {
	return NewChain([]Strategy{
		NewCache(s, logger),
		NewRule(logger),
		NewLLM(classifier, logger),
	}, s, logger)
}

// Names lists the strategies in evaluation order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the first intent any strategy produces, or UNKNOWN with
// FallbackConfidence when all of them abstain. A strategy error aborts the
// chain with a recognition error.
func (c *Chain) Resolve(ctx context.Context, text string, info map[string]any, history []dialogue.Message) (*intent.Intent, error) {
	for _, s := range c.strategies {
		start := time.Now()
		in, err := s.Recognize(ctx, text, info, history)
		latency := time.Since(start)
		if err != nil {
			c.logger.Error("strategy failed",
				zap.String("strategy", s.Name()),
				zap.Duration("latency", latency),
				zap.Error(err))
			return nil, apperrors.Wrap(err, apperrors.CodeRecognition, "意图识别失败")
		}
		if in == nil {
			continue
		}
		c.logger.Info("intent recognized",
			zap.String("strategy", s.Name()),
			zap.String("intent", in.Type().String()),
			zap.Float64("confidence", in.Confidence()),
			zap.Duration("latency", latency))
		return in, nil
	}

	c.logger.Info("all strategies abstained, falling back to UNKNOWN")
	return intent.New(intent.Unknown, FallbackConfidence, text, nil), nil
}

// ShouldPersist reports whether an intent is confident and specific enough
// to be reused by the cache strategy.
func ShouldPersist(in *intent.Intent) bool {
	return in != nil && in.Confidence() > PersistMinConfidence && in.Type() != intent.Unknown
}

// Persist saves in when ShouldPersist allows it. Failures are logged only.
func (c *Chain) Persist(ctx context.Context, in *intent.Intent) bool {
	if c.store == nil || !ShouldPersist(in) {
		return false
	}
	if err := c.store.Save(ctx, in); err != nil {
		c.logger.Warn("failed to persist intent",
			zap.String("intent", in.Type().String()),
			zap.Error(err))
		return false
	}
	return true
}
