package ai

import (
	"context"
	"errors"

	"cesare-chatbot/internal/domain/ports/adapter"
)

var _ adapter.CompletionAdapter = (*NoopAdapter)(nil)

var errNoProvider = errors.New("no completion provider configured")

// NoopAdapter stands in when no completion provider is configured. Every call
// fails, so a keyless deployment surfaces the misconfiguration on the first
// message instead of silently serving canned text. Deterministic intents
// (commands, locations, media) keep working; only reply generation is down.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter { return &NoopAdapter{} }

func (a *NoopAdapter) Name() string { return "noop" }

func (a *NoopAdapter) Chat(ctx context.Context, messages []adapter.Message, opts adapter.CallOptions) (string, error) {
	return "", errNoProvider
}

func (a *NoopAdapter) AnalyzeImage(ctx context.Context, prompt string, img adapter.Image, opts adapter.CallOptions) (string, error) {
	return "", errNoProvider
}
