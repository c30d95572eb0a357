// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cesare-chatbot/internal/config"
	"cesare-chatbot/internal/domain/ports/adapter"
	"cesare-chatbot/internal/domain/ports/repository"
	aiAdapters "cesare-chatbot/internal/infra/adapters/ai"
	tele "cesare-chatbot/internal/infra/adapters/telegram"
	pg "cesare-chatbot/internal/infra/db/postgres"
	"cesare-chatbot/internal/infra/logging"
	"cesare-chatbot/internal/infra/memstore"
	"cesare-chatbot/internal/infra/metrics"
	red "cesare-chatbot/internal/infra/redis"
	"cesare-chatbot/internal/infra/web"
	"cesare-chatbot/internal/language"
	"cesare-chatbot/internal/usecase"
)

var version = "1.2.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}
	metrics.MustRegister()

	// ---- Redis (optional, rate limiting) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis not configured; rate limiting disabled")
	}

	// ---- Postgres (optional, transcript archive) ----
	var archive repository.TranscriptArchive
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		repo := pg.NewTranscriptRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("postgres schema: %v", err)
		}
		archive = repo
	}

	// ---- Session store ----
	store := memstore.NewStore(
		cfg.Session.TTL(), cfg.Session.SweepInterval(), cfg.Session.MaxTurns,
		language.Detect, archive, logger,
	)
	store.Start(ctx)
	defer store.Stop()
	metrics.RegisterActiveSessions(store.Count)

	// ---- Completion adapter (OpenRouter -> Gemini -> noop) ----
	var ai adapter.CompletionAdapter
	switch {
	case cfg.AI.OpenRouterKey != "":
		ai, err = aiAdapters.NewOpenRouterAdapter(cfg.AI.OpenRouterKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.VisionModel)
		if err != nil {
			log.Fatalf("openrouter adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("completion adapter: openrouter")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("completion adapter: gemini")
	default:
		ai = aiAdapters.NewNoopAdapter()
		logger.Warn().Msg("no completion provider configured; reply generation will fail")
	}

	chatUC := usecase.NewChatUseCase(store, ai, logger)
	visionUC := usecase.NewVisionUseCase(ai, logger)

	// ---- Telegram (optional channel) ----
	var tg web.UpdateProcessor
	if cfg.Bot.Token != "" {
		client, err := tele.NewClient(cfg.Bot.Token)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		tg = tele.NewHandler(chatUC, visionUC, client, limiter, cfg.RateLimit.TelegramPerMinute, client.Username(), logger)
	} else {
		logger.Warn().Msg("bot token not configured; telegram channel disabled")
	}

	// ---- HTTP server ----
	var auth *web.AuthManager
	if cfg.Admin.JWTSecret != "" {
		auth = web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, 30*time.Minute)
	}
	srv := web.NewServer(
		chatUC, tg, store, limiter, cfg.RateLimit.WebPerMinute,
		cfg.Bot.WebhookSecret, cfg.Admin.APIKey, auth,
		cfg.Server.AllowedOrigins, version, logger,
	)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
