// In file: internal/llm/constants.go
package llm

import "time"

// Shared across clients in this package.
const (
	defaultTimeout    = 30 * time.Second
	maxRetries        = 3
	initialRetryDelay = time.Second

	// DefaultBaseURL is DashScope's OpenAI-compatible endpoint, which serves
	// the Qwen models.
	DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "qwen-max"
	// DefaultGeminiModel is used by the Gemini provider when none is configured.
	DefaultGeminiModel = "gemini-1.5-flash"
)
