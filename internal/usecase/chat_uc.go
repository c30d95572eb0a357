// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"cesare-chatbot/internal/domain"
	"cesare-chatbot/internal/domain/model"
	"cesare-chatbot/internal/domain/ports/adapter"
	"cesare-chatbot/internal/domain/ports/repository"
	"cesare-chatbot/internal/infra/logging"
	"cesare-chatbot/internal/infra/metrics"
)

// Fixed request constants per call type.
const (
	MaxMessageLen   = 1000
	chatMaxTokens   = 512
	chatTemperature = 0.7
	chatTimeout     = 60 * time.Second
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// Reply is the outcome of one chat turn.
type Reply struct {
	Text     string
	Language model.Lang
}

type ChatUseCase interface {
	// Send routes one user message through the common chat pipeline:
	// fetch-or-create session, turn-limit check, knowledge context, completion
	// call, record turn. A failed generation records nothing.
	Send(ctx context.Context, sessionID, message string) (Reply, error)
}

type chatUC struct {
	store repository.SessionStore
	ai    adapter.CompletionAdapter
	enc   *tiktoken.Tiktoken // best-effort prompt token estimator, may be nil
	log   *zerolog.Logger
}

func NewChatUseCase(store repository.SessionStore, ai adapter.CompletionAdapter, logger *zerolog.Logger) *chatUC {
	ucLog := logger.With().Str("component", "ChatUC").Logger()
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		ucLog.Warn().Err(err).Msg("token estimator unavailable")
		enc = nil
	}
	return &chatUC{store: store, ai: ai, enc: enc, log: &ucLog}
}

func (c *chatUC) Send(ctx context.Context, sessionID, message string) (Reply, error) {
	defer logging.TraceDuration(c.log, "ChatUC.Send")()

	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, fmt.Errorf("%w: empty message", domain.ErrValidation)
	}
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return Reply{}, fmt.Errorf("%w: message exceeds %d characters", domain.ErrValidation, MaxMessageLen)
	}

	s, created := c.store.GetOrCreate(sessionID, message)
	if created {
		c.log.Debug().Str("session_id", sessionID).Str("language", string(s.Language)).Msg("session created")
	}

	// Frozen sessions get the fixed limit reply; the completion client is
	// never called and history stays untouched.
	if c.store.TurnLimitReached(s) {
		metrics.IncTurnLimitHit()
		return Reply{Text: LimitMessage(s.Language), Language: s.Language}, nil
	}

	msgs := c.buildMessages(s, message)
	c.estimateTokens(msgs)

	callCtx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	start := time.Now()
	text, err := c.ai.Chat(callCtx, msgs, adapter.CallOptions{
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	metrics.ObserveAICall(c.ai.Name(), "chat", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		// Nothing was recorded, so the session is exactly as it was before
		// this turn.
		c.log.Error().Err(err).Str("session_id", sessionID).Msg("completion failed")
		return Reply{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	if err := c.store.RecordTurn(sessionID, message, text); err != nil {
		// Session evicted mid-turn; the reply is still valid for the user.
		c.log.Warn().Err(err).Str("session_id", sessionID).Msg("record turn failed")
	}
	return Reply{Text: text, Language: s.Language}, nil
}

// buildMessages assembles system prompt + prior history + the current message.
func (c *chatUC) buildMessages(s *model.Session, message string) []adapter.Message {
	msgs := make([]adapter.Message, 0, len(s.History)+2)
	msgs = append(msgs, adapter.Message{Role: "system", Content: systemPrompt(s.Language, message)})
	for _, t := range s.History {
		msgs = append(msgs, adapter.Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, adapter.Message{Role: "user", Content: message})
	return msgs
}

func (c *chatUC) estimateTokens(msgs []adapter.Message) {
	if c.enc == nil {
		return
	}
	n := 0
	for _, m := range msgs {
		n += len(c.enc.Encode(m.Content, nil, nil))
	}
	metrics.AddPromptTokens(c.ai.Name(), n)
}
