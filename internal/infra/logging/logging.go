// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"cesare-chatbot/internal/config"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Sampling can be enabled to reduce noise in prod.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// Keep 1 in 100 once the first burst is through.
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxSessID    ctxKey = "session_id"
	ctxChatID    ctxKey = "chat_id"
)

// With attaches request-scoped fields (request_id, session_id, chat_id) from ctx.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v := ctx.Value(ctxRequestID); v != nil {
		l = l.Str("request_id", v.(string))
	}
	if v := ctx.Value(ctxSessID); v != nil {
		l = l.Str("session_id", v.(string))
	}
	if v := ctx.Value(ctxChatID); v != nil {
		l = l.Int64("chat_id", v.(int64))
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs start and end with elapsed duration at TRACE level.
// Usage: defer logging.TraceDuration(logger, "ChatUC.Send")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		logger.Trace().Str("method", name).Dur("duration", time.Since(start)).Msg("finish")
	}
}

// Helpers to put IDs into context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}
func WithSessID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxSessID, id)
}
func WithChatID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxChatID, id)
}
