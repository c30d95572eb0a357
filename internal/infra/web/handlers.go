package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"cesare-chatbot/internal/domain"
	"cesare-chatbot/internal/infra/metrics"
	"cesare-chatbot/internal/infra/redis"
	"cesare-chatbot/internal/usecase"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// genericErrorMsg is the only failure text web clients ever see; upstream
// detail stays in the logs.
const genericErrorMsg = "Si è verificato un errore. Riprova più tardi."

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Language  string `json:"language,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleChat is the web widget endpoint.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{Success: false, Error: "Corpo della richiesta non valido"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, chatResponse{Success: false, Error: "Il messaggio è obbligatorio"})
		return
	}
	if utf8.RuneCountInString(req.Message) > usecase.MaxMessageLen {
		writeJSON(w, http.StatusBadRequest, chatResponse{Success: false, Error: "Messaggio troppo lungo (max 1000 caratteri)"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	metrics.IncMessage("web")

	allowed, err := s.limiter.Allow(ctx, redis.ChannelKey("web", sessionID), s.webPerMinute, time.Minute)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing")
		allowed = true
	}
	if !allowed {
		metrics.IncRateLimited("web")
		writeJSON(w, http.StatusTooManyRequests, chatResponse{Success: false, Error: "Troppe richieste, riprova tra poco"})
		return
	}

	reply, err := s.chatUC.Send(ctx, sessionID, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, chatResponse{Success: false, Error: "Messaggio non valido"})
			return
		}
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("chat pipeline failed")
		writeJSON(w, http.StatusInternalServerError, chatResponse{Success: false, Error: genericErrorMsg})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Success:   true,
		Response:  reply.Text,
		SessionID: sessionID,
		Language:  string(reply.Language),
	})
}

// handleTelegramWebhook verifies the shared secret, acknowledges immediately
// and hands the update to the cascade in a detached goroutine. The platform
// retries on slow responses, so the 200 must never wait on business logic.
func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(telegramSecretHeader) != s.webhookSecret {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Unauthorized"})
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		// Still acknowledge: the platform would otherwise retry a payload we
		// can never parse.
		s.log.Warn().Err(err).Msg("undecodable telegram update")
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.tg.Process(ctx, update)
	}()
}

type healthResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	Version        string `json:"version"`
	ActiveSessions int    `json:"active_sessions"`
	Timestamp      string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		Version:        s.version,
		ActiveSessions: s.sessions.Count(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

// ---- admin ----

type loginRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if s.apiKey == "" || req.APIKey != s.apiKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	summaries := s.sessions.Summaries()
	writeJSON(w, http.StatusOK, struct {
		Total int `json:"total"`
		Data  any `json:"data"`
	}{Total: len(summaries), Data: summaries})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}
	if !s.sessions.Delete(id) {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
