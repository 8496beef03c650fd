// In file: internal/llm/openai_client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig configures an OpenAI-compatible client. The defaults point at
// DashScope, so Qwen works with nothing but an API key.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
// (DashScope, OpenAI, local gateways).
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Statically verify that OpenAIClient implements the LLMClient interface.
var _ LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a configured client.
func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai-compatible API key cannot be empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("llm.openai"),
	}, nil
}

// Generate performs a chat completion with retries on transport and 5xx errors.
func (c *OpenAIClient) Generate(ctx context.Context, messages []Message, config *GenerationConfig) (*GenerationResult, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages to send")
	}
	req := c.buildRequest(messages, config)

	var lastErr error
	delay := initialRetryDelay
	for i := 0; i < maxRetries; i++ {
		start := time.Now()
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return nil, errors.New("no choices returned from model")
			}
			c.logger.Debug("chat completion finished",
				zap.String("model", req.Model),
				zap.Int64("latency_ms", time.Since(start).Milliseconds()),
				zap.Int("total_tokens", resp.Usage.TotalTokens))
			return &GenerationResult{
				Content: resp.Choices[0].Message.Content,
				Usage: Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}, nil
		}

		lastErr = fmt.Errorf("chat completion failed (attempt %d/%d): %w", i+1, maxRetries, err)
		// Do not retry on client errors (e.g., 400 Bad Request, 401 Unauthorized).
		if isClientError(err) {
			return nil, lastErr
		}
		c.logger.Warn("chat completion attempt failed", zap.Int("attempt", i+1), zap.Error(err))

		if i < maxRetries-1 {
			if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
				return nil, fmt.Errorf("%w (gave up: %v)", lastErr, sleepErr)
			}
			delay *= 2
		}
	}
	return nil, lastErr
}

// buildRequest converts our generic structures into a go-openai request.
func (c *OpenAIClient) buildRequest(messages []Message, config *GenerationConfig) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	}
	if config == nil {
		return req
	}
	if config.Model != "" {
		req.Model = config.Model
	}
	if config.MaxTokens > 0 {
		req.MaxTokens = config.MaxTokens
	}
	if config.Temperature != nil {
		req.Temperature = *config.Temperature
	}
	if config.TopP != nil {
		req.TopP = *config.TopP
	}
	if config.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return out
}

func isClientError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 && apiErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 400 && reqErr.HTTPStatusCode < 500 && reqErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	return false
}
