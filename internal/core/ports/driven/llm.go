package driven

import (
	"context"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
)

// LLMService provides chat-completion access to a language model.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Any OpenAI-compatible inference server
type LLMService interface {
	// Chat sends a conversation to the model and returns the completion
	// together with usage statistics when the provider reports them.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (*ChatResult, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures generation behaviour.
type ChatOptions struct {
	// MaxTokens bounds the generated output length.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// ChatResult is a completed generation.
type ChatResult struct {
	// Content is the generated text.
	Content string

	// Usage reports token consumption, zero-valued when unavailable.
	Usage domain.Usage
}
