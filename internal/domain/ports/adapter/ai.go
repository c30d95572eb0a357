package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CallOptions carries the fixed per-call-type request constants.
type CallOptions struct {
	MaxTokens   int
	Temperature float64
}

// Image is an inline image payload for vision calls.
type Image struct {
	Data     []byte
	MimeType string
}

// CompletionAdapter is the port for LLM text generation.
type CompletionAdapter interface {
	// Chat returns the assistant text for the given message sequence.
	Chat(ctx context.Context, messages []Message, opts CallOptions) (string, error)

	// AnalyzeImage runs a one-shot multimodal request: prompt text plus one
	// inline image. No history is involved.
	AnalyzeImage(ctx context.Context, prompt string, img Image, opts CallOptions) (string, error)

	// Name identifies the provider for logs and metrics.
	Name() string
}
