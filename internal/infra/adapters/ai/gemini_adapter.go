package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"cesare-chatbot/internal/domain/ports/adapter"
)

var _ adapter.CompletionAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter is the fallback provider when no OpenRouter key is configured.
type GeminiAdapter struct {
	client *genai.Client
	model  string
}

func NewGeminiAdapter(ctx context.Context, apiKey, model string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) Chat(ctx context.Context, messages []adapter.Message, opts adapter.CallOptions) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	last := messages[len(messages)-1]
	if strings.ToLower(last.Role) != "user" {
		return "", errors.New("gemini: last message must be from user")
	}

	chat, err := g.client.Chats.Create(ctx, g.model, genConfig(opts), toGenAIHistory(messages[:len(messages)-1]))
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Content})
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	text := extractText(resp)
	if text == "" {
		return "", errors.New("gemini chat: empty candidate")
	}
	return text, nil
}

func (g *GeminiAdapter) AnalyzeImage(ctx context.Context, prompt string, img adapter.Image, opts adapter.CallOptions) (string, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{Data: img.Data, MIMEType: img.MimeType}},
		},
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genConfig(opts))
	if err != nil {
		return "", fmt.Errorf("gemini vision: %w", err)
	}
	text := extractText(resp)
	if text == "" {
		return "", errors.New("gemini vision: empty candidate")
	}
	return text, nil
}

func genConfig(opts adapter.CallOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	cfg.Temperature = genai.Ptr(float32(opts.Temperature))
	return cfg
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		switch strings.ToLower(m.Role) {
		case "assistant", "model":
			role = genai.RoleModel
		case "system":
			// Gemini has no separate system role in history; pass as user turn.
			role = genai.RoleUser
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
