package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"cesare-chatbot/internal/infra/logging"
	"cesare-chatbot/internal/infra/memstore"
	"cesare-chatbot/internal/infra/redis"
	"cesare-chatbot/internal/usecase"
)

// SessionAdmin is what the health and admin endpoints need from the store.
type SessionAdmin interface {
	Count() int
	Summaries() []memstore.Summary
	Delete(id string) bool
}

// UpdateProcessor consumes acknowledged Telegram updates.
type UpdateProcessor interface {
	Process(ctx context.Context, update tgbotapi.Update)
}

type Server struct {
	chatUC        usecase.ChatUseCase
	tg            UpdateProcessor // nil when the Telegram channel is disabled
	sessions      SessionAdmin
	limiter       *redis.RateLimiter
	webPerMinute  int
	webhookSecret string
	apiKey        string
	auth          *AuthManager
	version       string
	startedAt     time.Time
	log           *zerolog.Logger

	allowedOrigins []string
}

func NewServer(
	chatUC usecase.ChatUseCase,
	tg UpdateProcessor,
	sessions SessionAdmin,
	limiter *redis.RateLimiter,
	webPerMinute int,
	webhookSecret string,
	apiKey string,
	auth *AuthManager,
	allowedOrigins []string,
	version string,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		chatUC:         chatUC,
		tg:             tg,
		sessions:       sessions,
		limiter:        limiter,
		webPerMinute:   webPerMinute,
		webhookSecret:  webhookSecret,
		apiKey:         apiKey,
		auth:           auth,
		allowedOrigins: allowedOrigins,
		version:        version,
		startedAt:      time.Now(),
		log:            &srvLog,
	}
}

// Router assembles the full route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/api/chat", s.handleChat)
	if s.tg != nil {
		if s.webhookSecret == "" {
			// An empty secret would match every request's empty header.
			s.log.Error().Msg("telegram webhook secret not configured; webhook route disabled")
		} else {
			r.Post("/api/telegram", s.handleTelegramWebhook)
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/sessions", s.handleSessionsList)
			r.Delete("/sessions/{id}", s.handleSessionDelete)
		})
	})
	return r
}

// authMiddleware admits either the static admin API key or a minted JWT.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if hdr := r.Header.Get("Authorization"); hdr != "" {
			parts := strings.SplitN(hdr, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] == s.apiKey {
				next.ServeHTTP(w, r)
				return
			}
		}
		if s.auth != nil {
			if _, err := s.auth.ParseFromRequest(r); err == nil {
				next.ServeHTTP(w, r)
				return
			}
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// requestLogger stamps a ULID request id and logs method/path/duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := ulid.Make().String()
		ctx := logging.WithRequestID(r.Context(), reqID)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
