// In file: internal/llm/gemini_client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is the client for Google's Gemini models.
type GeminiClient struct {
	client  *genai.Client
	modelID string
	logger  *zap.Logger
}

var _ LLMClient = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini client for modelID.
func NewGeminiClient(ctx context.Context, apiKey, modelID string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if modelID == "" {
		modelID = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelID: modelID, logger: logger.Named("llm.gemini")}, nil
}

// Generate performs a standard, blocking request to the Gemini API. System
// messages become the system instruction; the last message is the prompt.
func (c *GeminiClient) Generate(ctx context.Context, messages []Message, config *GenerationConfig) (*GenerationResult, error) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return nil, errors.New("no user message to send")
	}

	model := c.configureModel(config)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	chat := model.StartChat()
	chat.History = toGeminiContentHistory(turns[:len(turns)-1])

	resp, err := chat.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return parseGeminiResponse(resp)
}

// Close releases the underlying gRPC connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// configureModel builds a fresh model handle per call, so concurrent requests
// never share mutable generation settings.
func (c *GeminiClient) configureModel(config *GenerationConfig) *genai.GenerativeModel {
	modelID := c.modelID
	if config != nil && config.Model != "" {
		modelID = config.Model
	}
	model := c.client.GenerativeModel(modelID)
	model.SetMaxOutputTokens(1500)
	if config == nil {
		return model
	}
	if config.Temperature != nil {
		model.SetTemperature(*config.Temperature)
	}
	if config.TopP != nil {
		model.SetTopP(*config.TopP)
	}
	if config.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(config.MaxTokens))
	}
	if config.JSONMode {
		model.ResponseMIMEType = "application/json"
	}
	return model
}

func splitSystem(messages []Message) (string, []Message) {
	var system []string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}

// toGeminiContentHistory converts prior turns to the Gemini SDK's format.
func toGeminiContentHistory(messages []Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return history
}

// parseGeminiResponse converts a Gemini API response into a GenerationResult.
func parseGeminiResponse(resp *genai.GenerateContentResponse) (*GenerationResult, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no content returned from Gemini")
	}

	var contentBuilder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			contentBuilder.WriteString(string(txt))
		}
	}

	result := &GenerationResult{Content: strings.TrimSpace(contentBuilder.String())}
	if resp.UsageMetadata != nil {
		result.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		result.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}
