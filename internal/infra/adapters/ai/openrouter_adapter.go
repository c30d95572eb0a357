package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"cesare-chatbot/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionAdapter = (*OpenRouterAdapter)(nil)

// OpenRouterAdapter implements adapter.CompletionAdapter against OpenRouter's
// OpenAI-compatible Chat Completions API.
type OpenRouterAdapter struct {
	client      openai.Client
	model       string
	visionModel string
}

func NewOpenRouterAdapter(apiKey, baseURL, model, visionModel string) (*OpenRouterAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter api key empty")
	}
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if visionModel == "" {
		visionModel = model
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		// Generation calls are slow; platform calls carry their own shorter deadlines.
		option.WithRequestTimeout(60*time.Second),
	)
	return &OpenRouterAdapter{client: client, model: model, visionModel: visionModel}, nil
}

func (o *OpenRouterAdapter) Name() string { return "openrouter" }

func (o *OpenRouterAdapter) Chat(ctx context.Context, messages []adapter.Message, opts adapter.CallOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: toOpenAIMessages(messages),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	params.Temperature = openai.Float(opts.Temperature)

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openrouter chat: %w", err)
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("openrouter chat: no choice content")
}

func (o *OpenRouterAdapter) AnalyzeImage(ctx context.Context, prompt string, img adapter.Image, opts adapter.CallOptions) (string, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", img.MimeType, base64.StdEncoding.EncodeToString(img.Data))

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURI}),
			}),
		},
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	params.Temperature = openai.Float(opts.Temperature)

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openrouter vision: %w", err)
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("openrouter vision: no choice content")
}

func toOpenAIMessages(messages []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
