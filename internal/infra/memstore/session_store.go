// Package memstore is the in-memory session store. Sessions live only in this
// process; the background sweep evicts anything idle past the TTL.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cesare-chatbot/internal/domain"
	"cesare-chatbot/internal/domain/model"
	"cesare-chatbot/internal/domain/ports/repository"
	"cesare-chatbot/internal/infra/metrics"
)

// Compile-time check
var _ repository.SessionStore = (*Store)(nil)

// Summary is a read-only view of one live session for the admin API.
type Summary struct {
	ID           string     `json:"id"`
	Language     model.Lang `json:"language"`
	Turns        int        `json:"turns"`
	LastActivity time.Time  `json:"last_activity"`
}

// Store holds live sessions behind a single mutex. The lock scope keeps each
// operation (get-or-create, limit-check + record) atomic per call; two
// concurrent requests for the same session id remain best-effort ordered.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session

	ttl           time.Duration
	sweepInterval time.Duration
	maxTurns      int

	detect  func(string) model.Lang
	archive repository.TranscriptArchive // optional, receives evicted sessions
	log     *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStore constructs an isolated store instance. detect tags the language of
// a session's first message; archive may be nil.
func NewStore(ttl, sweepInterval time.Duration, maxTurns int, detect func(string) model.Lang, archive repository.TranscriptArchive, logger *zerolog.Logger) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	if maxTurns <= 0 {
		maxTurns = 10
	}
	storeLog := logger.With().Str("component", "SessionStore").Logger()
	return &Store{
		sessions:      make(map[string]*model.Session),
		ttl:           ttl,
		sweepInterval: sweepInterval,
		maxTurns:      maxTurns,
		detect:        detect,
		archive:       archive,
		log:           &storeLog,
		done:          make(chan struct{}),
	}
}

func (st *Store) GetOrCreate(id, firstMessage string) (*model.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		s.LastActivity = time.Now()
		return s, false
	}
	s := model.NewSession(id, st.detect(firstMessage))
	st.sessions[id] = s
	return s, true
}

func (st *Store) RecordTurn(id, userText, assistantText string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.AppendTurn(userText, assistantText)
	return nil
}

func (st *Store) TurnLimitReached(s *model.Session) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(s.History) >= 2*st.maxTurns
}

func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Summaries returns copies safe to serialize without holding the lock.
func (st *Store) Summaries() []Summary {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]Summary, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, Summary{
			ID:           s.ID,
			Language:     s.Language,
			Turns:        s.Turns(),
			LastActivity: s.LastActivity,
		})
	}
	return out
}

// Start launches the sweep loop. Calling Start twice has no effect.
func (st *Store) Start(parentCtx context.Context) {
	if st.ctx != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	st.ctx = ctx
	st.cancel = cancel
	go st.loop()
}

// Stop cancels the sweep and waits for the loop to finish. Idempotent.
func (st *Store) Stop() {
	if st.cancel == nil {
		return
	}
	st.cancel()
	<-st.done
	st.ctx = nil
	st.cancel = nil
	st.done = make(chan struct{})
}

func (st *Store) loop() {
	ticker := time.NewTicker(st.sweepInterval)
	defer func() {
		ticker.Stop()
		close(st.done)
	}()

	st.log.Info().Dur("interval", st.sweepInterval).Dur("ttl", st.ttl).Msg("session sweep started")
	for {
		select {
		case <-st.ctx.Done():
			st.log.Info().Msg("session sweep stopped")
			return
		case <-ticker.C:
			st.Sweep(time.Now())
		}
	}
}

// Sweep evicts sessions idle past the TTL at instant now. Exposed so tests can
// drive eviction without waiting for the ticker. Archive failures are logged
// per session and never abort the rest of the sweep.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	var evicted []*model.Session
	for id, s := range st.sessions {
		if s.IdleSince(now) > st.ttl {
			delete(st.sessions, id)
			evicted = append(evicted, s)
		}
	}
	st.mu.Unlock()

	if len(evicted) == 0 {
		return 0
	}
	for _, s := range evicted {
		st.archiveOne(s)
	}
	metrics.AddSessionsEvicted(len(evicted))
	st.log.Info().Int("count", len(evicted)).Msg("sessions evicted")
	return len(evicted)
}

func (st *Store) archiveOne(s *model.Session) {
	if st.archive == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			st.log.Error().Interface("panic", r).Str("session_id", s.ID).Msg("transcript archive panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.archive.SaveTranscript(ctx, s); err != nil {
		st.log.Warn().Err(err).Str("session_id", s.ID).Msg("transcript archive failed")
	}
}
