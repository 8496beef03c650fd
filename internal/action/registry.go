// In file: internal/action/registry.go
package action

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/apperrors"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/llm"
	"github.com/chengwenxing-cmd/VoiceService/internal/weather"
)

// WeatherProvider is the subset of the weather adapter the handlers use.
type WeatherProvider interface {
	GetWeather(ctx context.Context, city, datePhrase string) weather.Report
}

// Deps are the collaborators of the built-in handlers. Classifier may be nil,
// in which case unknown intents get the fixed clarification reply. A nil
// Weather is replaced by a keyless client that serves mock data.
type Deps struct {
	Classifier  llm.IntentClassifier
	Weather     WeatherProvider
	DefaultCity string
}

// Registry holds one handler per intent type plus the generic fallback.
// It is populated at construction and read-only afterwards.
type Registry struct {
	handlers map[intent.Type]Handler
	fallback Handler
	logger   *zap.Logger
}

// NewRegistry creates a registry with every built-in handler registered.
func NewRegistry(deps Deps, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.DefaultCity == "" {
		deps.DefaultCity = weather.DefaultCity
	}
	logger = logger.Named("action")

	r := &Registry{
		handlers: make(map[intent.Type]Handler),
		fallback: HandlerFunc(handleGeneric),
		logger:   logger,
	}

	r.Register(intent.Unknown, &unknownHandler{classifier: deps.Classifier, logger: logger})
	r.Register(intent.Chat, HandlerFunc(handleChat))
	r.Register(intent.StartRecording, HandlerFunc(handleStartRecording))
	r.Register(intent.StopRecording, HandlerFunc(handleStopRecording))
	r.Register(intent.PlayMusic, HandlerFunc(handlePlayMusic))
	r.Register(intent.PauseMusic, HandlerFunc(handlePauseMusic))
	r.Register(intent.ControlDeviceOn, HandlerFunc(handleDevice))
	r.Register(intent.ControlDeviceOff, HandlerFunc(handleDevice))
	r.Register(intent.QueryTime, HandlerFunc(handleQueryTime))
	provider := deps.Weather
	if provider == nil {
		logger.Warn("no weather provider configured, weather queries will use mock data")
		provider = weather.NewClient(weather.Config{DefaultCity: deps.DefaultCity}, logger)
	}
	r.Register(intent.QueryWeather, &weatherHandler{
		provider:    provider,
		defaultCity: deps.DefaultCity,
		logger:      logger,
	})
	return r
}

// Register binds h to an intent type, replacing any previous handler.
func (r *Registry) Register(t intent.Type, h Handler) {
	r.handlers[t] = h
}

// HandlerCount returns the number of dedicated handlers.
func (r *Registry) HandlerCount() int {
	return len(r.handlers)
}

// Generate runs the handler for req.Intent. Handler errors and panics are
// reported as result generation failures.
func (r *Registry) Generate(ctx context.Context, req Request) (res Result, err error) {
	if req.Intent == nil {
		return Result{}, apperrors.New(apperrors.CodeResultGeneration, "生成结果数据失败: 意图为空")
	}

	h, ok := r.handlers[req.Intent.Type()]
	if !ok {
		h = r.fallback
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("result handler panicked",
				zap.String("intent", req.Intent.Type().String()),
				zap.Any("panic", p))
			res = Result{}
			err = apperrors.Wrap(fmt.Errorf("panic: %v", p), apperrors.CodeResultGeneration, "生成结果数据失败")
		}
	}()

	start := time.Now()
	res, err = h.Handle(ctx, req)
	if err != nil {
		r.logger.Error("result generation failed",
			zap.String("intent", req.Intent.Type().String()),
			zap.Error(err))
		if _, ok := apperrors.As(err); ok {
			return Result{}, err
		}
		return Result{}, apperrors.Wrap(err, apperrors.CodeResultGeneration, "生成结果数据失败")
	}

	r.logger.Debug("result generated",
		zap.String("intent", req.Intent.Type().String()),
		zap.String("status", res.Status),
		zap.Duration("latency", time.Since(start)))
	return res, nil
}
