// In file: internal/strategy/rule.go
package strategy

import (
	"context"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/lexicon"
)

// Rule recognizes the unambiguous recording commands and weather queries
// from keyword tables.
type Rule struct {
	logger *zap.Logger
}

func NewRule(logger *zap.Logger) *Rule {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rule{logger: logger.Named("strategy.rule")}
}

func (r *Rule) Name() string { return "rule" }

// Recognize never fails. Recording phrases that read as a question or carry
// an opinion are left to the model.
func (r *Rule) Recognize(_ context.Context, text string, _ map[string]any, _ []dialogue.Message) (*intent.Intent, error) {
	if lexicon.HasRecordingKeyword(text) {
		if lexicon.HasQuestionWord(text) || lexicon.HasSentimentWord(text) {
			r.logger.Debug("recording phrase is complex, abstaining", zap.String("text", text))
			return nil, nil
		}
		stop := lexicon.HasRecordingStop(text)
		if lexicon.HasRecordingStart(text) && !stop {
			return intent.New(intent.StartRecording, RuleConfidence, text, map[string]any{
				intent.EntityOperation: "开始",
				intent.EntityTarget:    "录音",
			}), nil
		}
		if stop {
			return intent.New(intent.StopRecording, RuleConfidence, text, map[string]any{
				intent.EntityOperation: "停止",
				intent.EntityTarget:    "录音",
			}), nil
		}
	}

	if lexicon.IsWeatherQuery(text) {
		entities := map[string]any{}
		if city := lexicon.ExtractCity(text); city != "" {
			entities[intent.EntityCity] = city
		}
		if date := lexicon.ExtractDate(text); date != "" {
			entities[intent.EntityDate] = date
		}
		return intent.New(intent.QueryWeather, WeatherRuleConfidence, text, entities), nil
	}

	return nil, nil
}
