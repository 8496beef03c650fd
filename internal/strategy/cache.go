// In file: internal/strategy/cache.go
package strategy

import (
	"context"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/store"
)

// Cache answers from previously persisted intents.
type Cache struct {
	store  store.IntentStore
	logger *zap.Logger
}

// NewCache wraps an intent store. A nil store makes the strategy always abstain.
func NewCache(s store.IntentStore, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: s, logger: logger.Named("strategy.cache")}
}

func (c *Cache) Name() string { return "cache" }

// Recognize returns the stored intent for text when it is confident enough
// and the conversation is still short. Lookup failures count as a miss.
func (c *Cache) Recognize(ctx context.Context, text string, _ map[string]any, history []dialogue.Message) (*intent.Intent, error) {
	if c.store == nil {
		return nil, nil
	}

	cached, err := c.store.FindByText(ctx, text)
	if err != nil {
		c.logger.Warn("intent store lookup failed, treating as miss", zap.Error(err))
		return nil, nil
	}
	if cached == nil {
		return nil, nil
	}

	if cached.Confidence() < CacheMinConfidence || len(history) > CacheMaxHistory {
		c.logger.Debug("cached intent not reused",
			zap.String("intent", cached.Type().String()),
			zap.Float64("confidence", cached.Confidence()),
			zap.Int("history", len(history)))
		return nil, nil
	}
	return cached, nil
}
