package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cesare-chatbot/internal/domain"
	"cesare-chatbot/internal/domain/model"
	"cesare-chatbot/internal/domain/ports/adapter"
	"cesare-chatbot/internal/infra/metrics"
)

const (
	visionMaxTokens   = 400
	visionTemperature = 0.2
	visionTimeout     = 60 * time.Second
	maxImageBytes     = 10 << 20
)

var _ VisionUseCase = (*visionUC)(nil)

type VisionUseCase interface {
	// Analyze runs the one-shot car-identification prompt over an inline
	// image. No session or history is involved.
	Analyze(ctx context.Context, img adapter.Image, lang model.Lang) (string, error)
}

type visionUC struct {
	ai  adapter.CompletionAdapter
	log *zerolog.Logger
}

func NewVisionUseCase(ai adapter.CompletionAdapter, logger *zerolog.Logger) *visionUC {
	ucLog := logger.With().Str("component", "VisionUC").Logger()
	return &visionUC{ai: ai, log: &ucLog}
}

func (v *visionUC) Analyze(ctx context.Context, img adapter.Image, lang model.Lang) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrValidation)
	}
	if len(img.Data) > maxImageBytes {
		return "", fmt.Errorf("%w: image too large", domain.ErrValidation)
	}
	if img.MimeType == "" {
		img.MimeType = "image/jpeg"
	}

	callCtx, cancel := context.WithTimeout(ctx, visionTimeout)
	defer cancel()

	start := time.Now()
	text, err := v.ai.AnalyzeImage(callCtx, visionPrompt(lang), img, adapter.CallOptions{
		MaxTokens:   visionMaxTokens,
		Temperature: visionTemperature,
	})
	metrics.ObserveAICall(v.ai.Name(), "vision", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		v.log.Error().Err(err).Msg("vision analysis failed")
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return text, nil
}
