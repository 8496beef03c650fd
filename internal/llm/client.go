// In file: internal/llm/client.go

// Package llm talks to large language models. It hides the provider SDKs
// behind one small LLMClient interface and builds the intent classifier used
// by the recognition chain on top of it.
package llm

import (
	"context"
)

// =================================================================================
// Core Data Structures
// =================================================================================

// Role represents the originator of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationConfig holds the parameters that control a single generation.
type GenerationConfig struct {
	// The model to use (e.g., "qwen-max", "gpt-4o-mini", "gemini-1.5-flash").
	// Empty means the client's default model.
	Model string
	// Controls randomness. A pointer distinguishes 0.0 from unset.
	Temperature *float32
	// The maximum number of tokens to generate.
	MaxTokens int
	// Nucleus sampling, an alternative to temperature.
	TopP *float32
	// JSONMode asks the provider to return a single JSON object, where supported.
	JSONMode bool
}

// Usage holds token accounting for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult holds the complete output of a generation call.
type GenerationResult struct {
	Content string
	Usage   Usage
}

// =================================================================================
// LLM Client Interface
// =================================================================================

// LLMClient is the interface every provider client implements.
type LLMClient interface {
	// Generate performs a blocking request with the full message list and
	// returns the complete reply.
	Generate(ctx context.Context, messages []Message, config *GenerationConfig) (*GenerationResult, error)
}

// Float32 is a helper for filling the optional GenerationConfig fields.
func Float32(v float32) *float32 { return &v }
