package repository

import (
	"context"

	"cesare-chatbot/internal/domain/model"
)

// SessionStore holds live conversation state. Implementations are in-memory;
// a process restart loses all sessions.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating it lazily with the
	// language detected from firstMessage. LastActivity is refreshed either way.
	GetOrCreate(id, firstMessage string) (s *model.Session, created bool)

	// RecordTurn appends a completed user/assistant pair. The append is atomic:
	// history length stays even at all times.
	RecordTurn(id, userText, assistantText string) error

	// TurnLimitReached reports whether the session is frozen at the turn cap.
	TurnLimitReached(s *model.Session) bool

	// Count returns the number of live sessions.
	Count() int

	// Delete removes a session immediately.
	Delete(id string) bool
}

// TranscriptArchive receives evicted sessions for best-effort archival.
type TranscriptArchive interface {
	SaveTranscript(ctx context.Context, s *model.Session) error
}
