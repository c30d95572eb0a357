// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_messages_total",
			Help: "Inbound messages per channel (web/telegram).",
		},
		[]string{"channel"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "Completion call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 20000},
		},
		[]string{"provider", "kind", "success"},
	)

	aiPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens_total",
			Help: "Estimated prompt tokens sent per provider.",
		},
		[]string{"provider"},
	)

	sessionsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_sessions_evicted_total",
			Help: "Sessions removed by the TTL sweep.",
		},
	)

	turnLimitHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_turn_limit_hits_total",
			Help: "Messages answered with the fixed turn-limit reply.",
		},
	)

	sendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_send_failures_total",
			Help: "Best-effort outbound sends that failed, per channel.",
		},
		[]string{"channel"},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_rate_limited_total",
			Help: "Messages rejected by the per-channel rate limiter.",
		},
		[]string{"channel"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			messagesTotal, aiCallsLatencyMs, aiPromptTokens,
			sessionsEvicted, turnLimitHits, sendFailures, rateLimited,
		)
	})
}

// RegisterActiveSessions exposes a live-session gauge backed by the store.
func RegisterActiveSessions(count func() int) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "chatbot_sessions_active",
			Help: "Live sessions currently held in memory.",
		},
		func() float64 { return float64(count()) },
	))
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncMessage(channel string)     { messagesTotal.WithLabelValues(norm(channel)).Inc() }
func IncSendFailure(channel string) { sendFailures.WithLabelValues(norm(channel)).Inc() }
func IncRateLimited(channel string) { rateLimited.WithLabelValues(norm(channel)).Inc() }
func IncTurnLimitHit()              { turnLimitHits.Inc() }
func AddSessionsEvicted(n int)      { sessionsEvicted.Add(float64(n)) }

func AddPromptTokens(provider string, n int) {
	aiPromptTokens.WithLabelValues(norm(provider)).Add(float64(n))
}

// ObserveAICall records one completion call. kind is "chat" or "vision".
func ObserveAICall(provider, kind string, latencyMs int64, success bool) {
	aiCallsLatencyMs.
		WithLabelValues(norm(provider), norm(kind), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
