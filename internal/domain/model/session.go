package model

import (
	"time"
)

// Lang is the conversation language detected on the first message.
type Lang string

const (
	LangItalian Lang = "it"
	LangEnglish Lang = "en"
)

// Turn is one entry of a session's history.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Session is the per-conversation state record. Language is fixed at the
// first message and never changes afterwards. History always holds complete
// user/assistant pairs; a failed generation records nothing.
type Session struct {
	ID           string
	History      []Turn
	Language     Lang
	CreatedAt    time.Time
	LastActivity time.Time
}

func NewSession(id string, lang Lang) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		History:      make([]Turn, 0, 8),
		Language:     lang,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// AppendTurn records one completed exchange, keeping history length even.
func (s *Session) AppendTurn(userText, assistantText string) {
	s.History = append(s.History,
		Turn{Role: "user", Content: userText},
		Turn{Role: "assistant", Content: assistantText},
	)
	s.LastActivity = time.Now()
}

// Turns is the number of completed user/assistant exchanges.
func (s *Session) Turns() int { return len(s.History) / 2 }

// IdleSince reports how long the session has been inactive at the given instant.
func (s *Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}
