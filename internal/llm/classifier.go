// In file: internal/llm/classifier.go
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
)

// FallbackReply is what the user hears when the model cannot be used.
const FallbackReply = "抱歉，我遇到了一些技术问题，暂时无法理解您的请求。"

// Classification is the classifier's answer. It mirrors the JSON contract
// the model is prompted with.
type Classification struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    ClassificationData `json:"data"`
}

// ClassificationData carries the model's verdict. Confidence is nil when the
// model did not provide one.
type ClassificationData struct {
	Intent     string         `json:"intent"`
	Confidence *float64       `json:"confidence,omitempty"`
	Entities   map[string]any `json:"entities"`
	Reply      string         `json:"reply"`
}

// IntentClassifier asks a language model what an utterance means. It never
// fails: every problem is folded into an unsuccessful Classification.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, text string, info map[string]any, history []dialogue.Message) Classification
}

// Classifier implements IntentClassifier on top of any LLMClient.
type Classifier struct {
	client  LLMClient
	timeout time.Duration
	logger  *zap.Logger
}

var _ IntentClassifier = (*Classifier)(nil)

// NewClassifier wraps client. A non-positive timeout means defaultTimeout.
func NewClassifier(client LLMClient, timeout time.Duration, logger *zap.Logger) *Classifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{client: client, timeout: timeout, logger: logger.Named("llm.classifier")}
}

// ClassifyIntent builds system prompt + prior turns + user prompt, calls the
// model in JSON mode and decodes its reply.
func (c *Classifier) ClassifyIntent(ctx context.Context, text string, info map[string]any, history []dialogue.Message) Classification {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: intentSystemPrompt})
	for _, h := range history {
		role := RoleUser
		if h.Role == dialogue.RoleAssistant {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: h.Content})
	}
	messages = append(messages, Message{Role: RoleUser, Content: buildUserPrompt(text, info)})

	start := time.Now()
	result, err := c.client.Generate(ctx, messages, &GenerationConfig{
		Temperature: Float32(0.3),
		MaxTokens:   1500,
		JSONMode:    true,
	})
	if err != nil {
		c.logger.Error("intent classification call failed",
			zap.String("text", truncateForLog(text, 30)),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.Error(err))
		return fallbackClassification(fmt.Sprintf("意图识别失败: %v", err))
	}

	cls, err := parseClassification(result.Content)
	if err != nil {
		c.logger.Warn("failed to parse model reply",
			zap.String("content", truncateForLog(result.Content, 200)),
			zap.Error(err))
		return fallbackClassification("JSON解析失败")
	}

	c.logger.Debug("intent classification completed",
		zap.String("text", truncateForLog(text, 30)),
		zap.String("intent", cls.Data.Intent),
		zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		zap.Int("tokens", result.Usage.TotalTokens))
	return cls
}

// looseFloat decodes a JSON number or a numeric string. Anything else leaves
// it unset instead of failing the whole reply.
type looseFloat struct{ v *float64 }

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		f.v = &v
	}
	return nil
}

// replyData is the wire form of ClassificationData.
type replyData struct {
	Intent     string         `json:"intent"`
	Confidence looseFloat     `json:"confidence"`
	Entities   map[string]any `json:"entities"`
	Reply      string         `json:"reply"`
}

// parseClassification accepts both the enveloped contract
// {"success":..,"data":{..}} and a bare {"intent":..} object.
func parseClassification(content string) (Classification, error) {
	raw := extractJSON(content)
	if raw == "" {
		return Classification{}, fmt.Errorf("empty reply")
	}

	var envelope struct {
		Success *bool      `json:"success"`
		Message string     `json:"message"`
		Data    *replyData `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return Classification{}, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	var wire replyData
	if envelope.Data != nil && envelope.Data.Intent != "" {
		wire = *envelope.Data
	} else if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Classification{}, fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	if strings.TrimSpace(wire.Intent) == "" {
		return Classification{}, fmt.Errorf("reply has no intent")
	}
	data := ClassificationData{
		Intent:     wire.Intent,
		Confidence: wire.Confidence.v,
		Entities:   wire.Entities,
		Reply:      wire.Reply,
	}
	if data.Entities == nil {
		data.Entities = map[string]any{}
	}

	cls := Classification{Success: true, Message: envelope.Message, Data: data}
	if envelope.Success != nil {
		cls.Success = *envelope.Success
	}
	if cls.Message == "" {
		cls.Message = "识别成功"
	}
	return cls, nil
}

func fallbackClassification(message string) Classification {
	zero := 0.0
	return Classification{
		Success: false,
		Message: message,
		Data: ClassificationData{
			Intent:     "UNKNOWN",
			Confidence: &zero,
			Entities:   map[string]any{},
			Reply:      FallbackReply,
		},
	}
}
