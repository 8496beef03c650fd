// In file: cmd/voiceservice/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/action"
	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/llm"
	"github.com/chengwenxing-cmd/VoiceService/internal/service"
	"github.com/chengwenxing-cmd/VoiceService/internal/store"
	"github.com/chengwenxing-cmd/VoiceService/internal/strategy"
	"github.com/chengwenxing-cmd/VoiceService/internal/weather"
)

// app is the composition root: every long-lived dependency is built here
// once and handed to the service by reference.
type app struct {
	cfg     *AppConfig
	logger  *zap.Logger
	service *service.Service
	closers []func() error
}

func newApp(ctx context.Context, cfg *AppConfig, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	intents, err := a.initIntentStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	classifier, err := a.initClassifier(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	sessions := dialogue.NewStore(dialogue.Config{
		MaxHistory:  cfg.Session.MaxHistory,
		TTL:         cfg.Session.TTL,
		MaxContexts: cfg.Session.MaxContexts,
	}, logger)

	weatherClient := weather.NewClient(weather.Config{
		APIKey:      cfg.Weather.APIKey,
		Timeout:     cfg.Weather.Timeout,
		DefaultCity: cfg.Weather.DefaultCity,
	}, logger)

	var ic llm.IntentClassifier
	if classifier != nil {
		ic = classifier
	}
	chain := strategy.NewDefaultChain(intents, ic, logger)
	results := action.NewRegistry(action.Deps{
		Classifier:  ic,
		Weather:     weatherClient,
		DefaultCity: cfg.Weather.DefaultCity,
	}, logger)

	a.service = service.New(sessions, chain, results, intents, logger)
	logger.Info("✅ All services initialized.",
		zap.Strings("strategies", chain.Names()),
		zap.Int("result_handlers", results.HandlerCount()))
	return a, nil
}

// initIntentStore opens the configured backend and, when REDIS_ADDR is set,
// fronts it with the Redis cache.
func (a *app) initIntentStore(ctx context.Context) (store.IntentStore, error) {
	intents, err := store.Open(a.cfg.Store.DatabaseURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("could not open intent store: %w", err)
	}
	a.closers = append(a.closers, intents.Close)

	if a.cfg.Store.RedisAddr == "" {
		a.logger.Info("✅ Intent store ready (no redis cache).")
		return intents, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: a.cfg.Store.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", a.cfg.Store.RedisAddr, err)
	}
	a.closers = append(a.closers, rdb.Close)
	a.logger.Info("✅ Intent store ready behind redis cache.", zap.String("redis_addr", a.cfg.Store.RedisAddr))
	return store.NewRedisCache(intents, rdb, a.cfg.Store.CacheTTL, a.logger), nil
}

// initClassifier returns nil when no provider or key is configured; the LLM
// strategy then abstains and unknown intents get the fixed reply.
func (a *app) initClassifier(ctx context.Context) (*llm.Classifier, error) {
	c := a.cfg.LLM
	if c.Provider == ProviderNone || c.APIKey == "" {
		a.logger.Warn("LLM classifier disabled", zap.String("provider", c.Provider))
		return nil, nil
	}

	var client llm.LLMClient
	switch c.Provider {
	case ProviderGemini:
		gc, err := llm.NewGeminiClient(ctx, c.APIKey, c.Model, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, gc.Close)
		client = gc
	default:
		oc, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  c.APIKey,
			BaseURL: c.BaseURL,
			Model:   c.Model,
			Timeout: c.Timeout,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		client = oc
	}
	a.logger.Info("✅ LLM classifier initialized.", zap.String("provider", c.Provider), zap.String("model", c.Model))
	return llm.NewClassifier(client, c.Timeout, a.logger), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
