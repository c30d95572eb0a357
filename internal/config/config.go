// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type BotConfig struct {
	Token         string `yaml:"token"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type AIConfig struct {
	OpenRouterKey string `yaml:"openrouter_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	VisionModel   string `yaml:"vision_model"`
	GeminiKey     string `yaml:"gemini_key"`
}

type SessionConfig struct {
	TTLMinutes   int `yaml:"ttl_minutes"`
	SweepMinutes int `yaml:"sweep_minutes"`
	MaxTurns     int `yaml:"max_turns"`
}

func (s SessionConfig) TTL() time.Duration           { return time.Duration(s.TTLMinutes) * time.Minute }
func (s SessionConfig) SweepInterval() time.Duration { return time.Duration(s.SweepMinutes) * time.Minute }

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	WebPerMinute      int `yaml:"web_per_minute"`
	TelegramPerMinute int `yaml:"telegram_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type AdminConfig struct {
	APIKey    string `yaml:"api_key"`
	JWTSecret string `yaml:"jwt_secret"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Bot       BotConfig       `yaml:"bot"`
	AI        AIConfig        `yaml:"ai"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Database  DatabaseConfig  `yaml:"database"`
	Admin     AdminConfig     `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, layers .env / environment overrides on top
// and applies defaults. A missing config file is not fatal: everything can be
// supplied through the environment.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideStr(&cfg.Bot.Token, "TELEGRAM_BOT_TOKEN")
	overrideStr(&cfg.Bot.WebhookSecret, "TELEGRAM_WEBHOOK_SECRET")
	overrideStr(&cfg.AI.OpenRouterKey, "OPENROUTER_API_KEY")
	overrideStr(&cfg.AI.Model, "OPENROUTER_MODEL")
	overrideStr(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	overrideStr(&cfg.Redis.URL, "REDIS_URL")
	overrideStr(&cfg.Database.URL, "DATABASE_URL")
	overrideStr(&cfg.Admin.APIKey, "ADMIN_API_KEY")
	overrideStr(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")
	overrideInt(&cfg.Server.Port, "PORT")
	overrideInt(&cfg.Session.TTLMinutes, "SESSION_TTL_MINUTES")
	overrideInt(&cfg.RateLimit.WebPerMinute, "RATE_LIMIT_WEB_PER_MINUTE")
	overrideInt(&cfg.RateLimit.TelegramPerMinute, "RATE_LIMIT_TELEGRAM_PER_MINUTE")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitAndTrim(v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3001
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "anthropic/claude-3.5-haiku"
	}
	if cfg.AI.VisionModel == "" {
		cfg.AI.VisionModel = cfg.AI.Model
	}
	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 30
	}
	if cfg.Session.SweepMinutes <= 0 {
		cfg.Session.SweepMinutes = 5
	}
	if cfg.Session.MaxTurns <= 0 {
		cfg.Session.MaxTurns = 10
	}
	if cfg.RateLimit.WebPerMinute <= 0 {
		cfg.RateLimit.WebPerMinute = 20
	}
	if cfg.RateLimit.TelegramPerMinute <= 0 {
		cfg.RateLimit.TelegramPerMinute = 30
	}
}

func overrideStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
