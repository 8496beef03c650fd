// In file: internal/strategy/strategy.go

// Package strategy recognizes intents. Three strategies are tried in a fixed
// order (cache, rule, llm) by a Chain; the first one that returns an intent
// wins, and a strategy that returns nil abstains.
package strategy

import (
	"context"

	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
)

// Strategy is one way of recognizing an utterance. A nil intent with a nil
// error means the strategy abstains.
type Strategy interface {
	Name() string
	Recognize(ctx context.Context, text string, info map[string]any, history []dialogue.Message) (*intent.Intent, error)
}

// Confidence thresholds shared across the chain.
const (
	// CacheMinConfidence is the minimum stored confidence the cache trusts.
	CacheMinConfidence = 0.9
	// CacheMaxHistory is the longest history for which a cached answer is
	// still context-free enough to reuse.
	CacheMaxHistory = 2
	// PersistMinConfidence is exclusive: only intents above it are saved.
	PersistMinConfidence = 0.7
	// LLMDefaultConfidence is used when the model does not report one.
	LLMDefaultConfidence = 0.7
	// FallbackConfidence accompanies UNKNOWN when every strategy abstains.
	FallbackConfidence = 0.1

	RuleConfidence        = 0.95
	WeatherRuleConfidence = 0.90
)
