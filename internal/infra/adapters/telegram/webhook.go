// File: internal/infra/adapters/telegram/webhook.go
package telegram

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"cesare-chatbot/internal/domain/ports/adapter"
	"cesare-chatbot/internal/infra/metrics"
	"cesare-chatbot/internal/infra/redis"
	"cesare-chatbot/internal/knowledge"
	"cesare-chatbot/internal/language"
	"cesare-chatbot/internal/usecase"
)

// Intent routing is a strict first-match-wins cascade: photo, slash command,
// location intent, media intent, free text. Cheap deterministic intents
// short-circuit the completion call; the ordering is part of the contract.
var (
	locationIntentRe = regexp.MustCompile(`dove|dov'|come (si )?arriv|indicazioni|mappa|where is|how (do i|to) get|directions`)
	mediaIntentRe    = regexp.MustCompile(`foto\b|video|galleri|gallery|immagini|photos?|pictures|social|instagram|youtube`)
)

var knownCommands = map[string]struct{}{
	"start": {}, "help": {}, "programma": {}, "biglietti": {},
	"dove": {}, "storia": {}, "info": {},
}

type route struct {
	name   string
	match  func(msg *tgbotapi.Message) bool
	handle func(ctx context.Context, msg *tgbotapi.Message)
}

// Handler processes webhook updates after the HTTP layer has acknowledged them.
type Handler struct {
	chat        usecase.ChatUseCase
	vision      usecase.VisionUseCase
	sender      adapter.TelegramSender
	limiter     *redis.RateLimiter
	perMinute   int
	botUsername string
	log         *zerolog.Logger

	routes []route
}

func NewHandler(
	chat usecase.ChatUseCase,
	vision usecase.VisionUseCase,
	sender adapter.TelegramSender,
	limiter *redis.RateLimiter,
	perMinute int,
	botUsername string,
	logger *zerolog.Logger,
) *Handler {
	hLog := logger.With().Str("component", "TelegramHandler").Logger()
	h := &Handler{
		chat:        chat,
		vision:      vision,
		sender:      sender,
		limiter:     limiter,
		perMinute:   perMinute,
		botUsername: botUsername,
		log:         &hLog,
	}
	h.routes = []route{
		{
			name:   "photo",
			match:  func(m *tgbotapi.Message) bool { return len(m.Photo) > 0 },
			handle: h.handlePhoto,
		},
		{
			name: "command",
			match: func(m *tgbotapi.Message) bool {
				if !strings.HasPrefix(m.Text, "/") {
					return false
				}
				_, known := knownCommands[commandToken(m.Text)]
				return known // unknown commands fall through to free text
			},
			handle: h.handleCommand,
		},
		{
			name: "location",
			match: func(m *tgbotapi.Message) bool {
				return locationIntentRe.MatchString(strings.ToLower(m.Text))
			},
			handle: h.handleLocation,
		},
		{
			name: "media",
			match: func(m *tgbotapi.Message) bool {
				return mediaIntentRe.MatchString(strings.ToLower(m.Text))
			},
			handle: h.handleMedia,
		},
		{
			name:   "freetext",
			match:  func(m *tgbotapi.Message) bool { return strings.TrimSpace(m.Text) != "" },
			handle: h.handleFreeText,
		},
	}
	return h
}

// Process routes one update through the cascade. The HTTP 200 has already been
// sent, so nothing here can affect the webhook response.
func (h *Handler) Process(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	metrics.IncMessage("telegram")

	for _, r := range h.routes {
		if r.match(msg) {
			h.log.Debug().Str("route", r.name).Int64("chat_id", msg.Chat.ID).Msg("update routed")
			r.handle(ctx, msg)
			return
		}
	}
}

// ---- route handlers ----

func (h *Handler) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	lang := language.Detect(msg.Caption)
	h.send(ctx, msg.Chat.ID, func() (string, error) {
		_ = h.sender.SendChatAction(ctx, msg.Chat.ID)

		// Variants are ordered by size; the last one is the highest resolution.
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		data, mime, err := h.sender.DownloadFile(ctx, fileID)
		if err != nil {
			return "", err
		}
		return h.vision.Analyze(ctx, adapter.Image{Data: data, MimeType: mime}, lang)
	}, apologyMessage(lang))
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	lang := language.Detect(msg.Text)
	switch commandToken(msg.Text) {
	case "start":
		h.sendText(ctx, msg.Chat.ID, startMessage(lang))
	case "help":
		h.sendText(ctx, msg.Chat.ID, helpMessage(lang))
	case "programma":
		h.sendText(ctx, msg.Chat.ID, scheduleMessage(lang))
	case "biglietti":
		h.sendText(ctx, msg.Chat.ID, ticketsMessage(lang))
	case "storia":
		h.sendText(ctx, msg.Chat.ID, historyMessage(lang))
	case "info":
		h.sendText(ctx, msg.Chat.ID, infoMessage(lang))
	case "dove":
		// Special-cased: runs the location flow instead of a canned reply.
		h.handleLocation(ctx, msg)
	}
}

func (h *Handler) handleLocation(ctx context.Context, msg *tgbotapi.Message) {
	lang := language.Detect(msg.Text)
	loc, ok := knowledge.FindLocation(msg.Text)
	if !ok {
		h.sendText(ctx, msg.Chat.ID, locationMenuMessage(lang))
		return
	}
	if err := h.sender.SendLocation(ctx, msg.Chat.ID, loc.Lat, loc.Lon); err != nil {
		metrics.IncSendFailure("telegram")
		h.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("send location failed")
	}
	h.sendText(ctx, msg.Chat.ID, locationMessage(loc, lang))
}

func (h *Handler) handleMedia(ctx context.Context, msg *tgbotapi.Message) {
	h.sendText(ctx, msg.Chat.ID, mediaMessage(language.Detect(msg.Text)))
}

func (h *Handler) handleFreeText(ctx context.Context, msg *tgbotapi.Message) {
	lang := language.Detect(msg.Text)
	chatID := msg.Chat.ID

	allowed, err := h.limiter.Allow(ctx, redis.ChannelKey("telegram", fmt.Sprint(chatID)), h.perMinute, time.Minute)
	if err != nil {
		h.log.Warn().Err(err).Msg("rate limiter unavailable, allowing")
		allowed = true
	}
	if !allowed {
		metrics.IncRateLimited("telegram")
		h.sendText(ctx, chatID, slowDownMessage(lang))
		return
	}

	h.send(ctx, chatID, func() (string, error) {
		_ = h.sender.SendChatAction(ctx, chatID)
		reply, err := h.chat.Send(ctx, fmt.Sprintf("telegram_%d", chatID), msg.Text)
		if err != nil {
			return "", err
		}
		return reply.Text, nil
	}, apologyMessage(lang))
}

// ---- helpers ----

// send runs fn and delivers its result, falling back to the localized apology.
// Outbound failures are logged and counted, never propagated.
func (h *Handler) send(ctx context.Context, chatID int64, fn func() (string, error), apology string) {
	text, err := fn()
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("handler failed")
		text = apology
	}
	h.sendText(ctx, chatID, text)
}

func (h *Handler) sendText(ctx context.Context, chatID int64, html string) {
	if err := h.sender.SendMessage(ctx, chatID, html); err != nil {
		metrics.IncSendFailure("telegram")
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}

// commandToken extracts the lower-cased command name, stripping any bot
// mention suffix ("/dove@CesareRallyBot" -> "dove").
func commandToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	tok := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.Index(tok, "@"); i >= 0 {
		tok = tok[:i]
	}
	return tok
}
