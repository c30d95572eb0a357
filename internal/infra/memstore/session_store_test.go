package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cesare-chatbot/internal/domain"
	"cesare-chatbot/internal/domain/model"
	"cesare-chatbot/internal/language"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func newTestStore(ttl time.Duration) *Store {
	return NewStore(ttl, time.Minute, 10, language.Detect, nil, newTestLogger())
}

func TestGetOrCreateIdentity(t *testing.T) {
	st := newTestStore(30 * time.Minute)

	s1, created := st.GetOrCreate("web_abc", "Quando si svolge il rally?")
	require.True(t, created)
	assert.Equal(t, model.LangItalian, s1.Language)
	assert.Empty(t, s1.History)

	s2, created := st.GetOrCreate("web_abc", "when is the race exactly?")
	assert.False(t, created)
	assert.Same(t, s1, s2, "same id returns the same session object")
	assert.Equal(t, model.LangItalian, s2.Language, "language is fixed at first message")

	assert.Equal(t, 1, st.Count())
}

func TestRecordTurnKeepsHistoryEven(t *testing.T) {
	st := newTestStore(30 * time.Minute)
	s, _ := st.GetOrCreate("id", "ciao")

	require.NoError(t, st.RecordTurn("id", "ciao", "salve!"))
	require.NoError(t, st.RecordTurn("id", "programma?", "eccolo"))

	assert.Len(t, s.History, 4)
	assert.Equal(t, 0, len(s.History)%2)
	assert.Equal(t, "user", s.History[2].Role)
	assert.Equal(t, "assistant", s.History[3].Role)
}

func TestRecordTurnUnknownSession(t *testing.T) {
	st := newTestStore(30 * time.Minute)
	assert.ErrorIs(t, st.RecordTurn("ghost", "a", "b"), domain.ErrNotFound)
}

func TestTurnLimit(t *testing.T) {
	st := newTestStore(30 * time.Minute)
	s, _ := st.GetOrCreate("id", "ciao")

	for i := 0; i < 9; i++ {
		require.NoError(t, st.RecordTurn("id", "q", "a"))
		assert.False(t, st.TurnLimitReached(s))
	}
	require.NoError(t, st.RecordTurn("id", "q", "a"))
	assert.True(t, st.TurnLimitReached(s), "10 turns freeze the session")
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	st := newTestStore(30 * time.Minute)
	stale, _ := st.GetOrCreate("stale", "ciao")
	stale.LastActivity = time.Now().Add(-31 * time.Minute)
	st.GetOrCreate("fresh", "ciao")

	evicted := st.Sweep(time.Now())
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, st.Count())

	_, created := st.GetOrCreate("stale", "ciao")
	assert.True(t, created, "evicted session is gone")
}

func TestSweepKeepsActiveAcrossCycles(t *testing.T) {
	st := newTestStore(30 * time.Minute)
	s, _ := st.GetOrCreate("live", "ciao")

	for i := 0; i < 3; i++ {
		s.LastActivity = time.Now().Add(-5 * time.Minute)
		assert.Equal(t, 0, st.Sweep(time.Now()))
	}
	assert.Equal(t, 1, st.Count())
}

type recordingArchive struct {
	mu    sync.Mutex
	saved []*model.Session
	fail  bool
}

func (a *recordingArchive) SaveTranscript(ctx context.Context, s *model.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return context.DeadlineExceeded
	}
	a.saved = append(a.saved, s)
	return nil
}

func TestSweepArchivesEvicted(t *testing.T) {
	arch := &recordingArchive{}
	st := NewStore(30*time.Minute, time.Minute, 10, language.Detect, arch, newTestLogger())

	s, _ := st.GetOrCreate("old", "ciao")
	require.NoError(t, st.RecordTurn("old", "ciao", "salve"))
	s.LastActivity = time.Now().Add(-time.Hour)

	st.Sweep(time.Now())
	require.Len(t, arch.saved, 1)
	assert.Equal(t, "old", arch.saved[0].ID)
}

func TestSweepSurvivesArchiveFailure(t *testing.T) {
	arch := &recordingArchive{fail: true}
	st := NewStore(30*time.Minute, time.Minute, 10, language.Detect, arch, newTestLogger())

	a, _ := st.GetOrCreate("a", "ciao")
	b, _ := st.GetOrCreate("b", "ciao")
	a.LastActivity = time.Now().Add(-time.Hour)
	b.LastActivity = time.Now().Add(-time.Hour)

	assert.Equal(t, 2, st.Sweep(time.Now()), "archive failures do not abort the sweep")
	assert.Equal(t, 0, st.Count())
}

func TestStartStop(t *testing.T) {
	st := NewStore(time.Minute, 10*time.Millisecond, 10, language.Detect, nil, newTestLogger())
	st.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	st.Stop()
	// Stop is idempotent and the store remains usable.
	st.Stop()
	st.GetOrCreate("id", "ciao")
	assert.Equal(t, 1, st.Count())
}

func TestDeleteAndSummaries(t *testing.T) {
	st := newTestStore(30 * time.Minute)
	st.GetOrCreate("telegram_42", "hello there, when is the race?")
	require.NoError(t, st.RecordTurn("telegram_42", "hi", "hello"))

	sums := st.Summaries()
	require.Len(t, sums, 1)
	assert.Equal(t, "telegram_42", sums[0].ID)
	assert.Equal(t, model.LangEnglish, sums[0].Language)
	assert.Equal(t, 1, sums[0].Turns)

	assert.True(t, st.Delete("telegram_42"))
	assert.False(t, st.Delete("telegram_42"))
	assert.Equal(t, 0, st.Count())
}
