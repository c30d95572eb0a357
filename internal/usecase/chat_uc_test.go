package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cesare-chatbot/internal/domain"
	"cesare-chatbot/internal/domain/model"
	"cesare-chatbot/internal/domain/ports/adapter"
	"cesare-chatbot/internal/infra/adapters/ai"
	"cesare-chatbot/internal/infra/memstore"
	"cesare-chatbot/internal/language"
)

// ---- Fakes ----

type fakeAI struct {
	mu       sync.Mutex
	calls    int
	lastMsgs []adapter.Message
	reply    string
	err      error
}

func (f *fakeAI) Name() string { return "fake" }

func (f *fakeAI) Chat(ctx context.Context, messages []adapter.Message, opts adapter.CallOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastMsgs = messages
	if f.err != nil {
		return "", f.err
	}
	if f.reply == "" {
		return "ok", nil
	}
	return f.reply, nil
}

func (f *fakeAI) AnalyzeImage(ctx context.Context, prompt string, img adapter.Image, opts adapter.CallOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "Lancia Stratos HF", nil
}

var _ adapter.CompletionAdapter = (*fakeAI)(nil)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func newTestStore() *memstore.Store {
	return memstore.NewStore(30*time.Minute, time.Minute, 10, language.Detect, nil, newTestLogger())
}

// ---- Tests ----

func TestSendValidation(t *testing.T) {
	uc := NewChatUseCase(newTestStore(), &fakeAI{}, newTestLogger())

	_, err := uc.Send(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Send(context.Background(), "s1", strings.Repeat("a", MaxMessageLen+1))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSendLimitCountsRunesNotBytes(t *testing.T) {
	uc := NewChatUseCase(newTestStore(), &fakeAI{}, newTestLogger())

	// 1000 accented runes are 2000 bytes and must still pass.
	_, err := uc.Send(context.Background(), "s1", strings.Repeat("è", MaxMessageLen))
	require.NoError(t, err)

	_, err = uc.Send(context.Background(), "s1", strings.Repeat("è", MaxMessageLen+1))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSendNoProviderFailsUpstream(t *testing.T) {
	store := newTestStore()
	uc := NewChatUseCase(store, ai.NewNoopAdapter(), newTestLogger())

	_, err := uc.Send(context.Background(), "s1", "Quando si svolge il rally?")
	assert.ErrorIs(t, err, domain.ErrUpstream, "keyless deployments must not serve replies")

	s, _ := store.GetOrCreate("s1", "x")
	assert.Empty(t, s.History, "failed generation records nothing")
}

func TestSendRecordsTurn(t *testing.T) {
	store := newTestStore()
	ai := &fakeAI{reply: "Il rally parte il 25 settembre."}
	uc := NewChatUseCase(store, ai, newTestLogger())

	reply, err := uc.Send(context.Background(), "s1", "Quando si svolge il rally?")
	require.NoError(t, err)
	assert.Equal(t, "Il rally parte il 25 settembre.", reply.Text)
	assert.Equal(t, model.LangItalian, reply.Language)

	s, created := store.GetOrCreate("s1", "x")
	assert.False(t, created)
	require.Len(t, s.History, 2)
	assert.Equal(t, "Quando si svolge il rally?", s.History[0].Content)
}

func TestSendSystemPromptCarriesKnowledge(t *testing.T) {
	ai := &fakeAI{}
	uc := NewChatUseCase(newTestStore(), ai, newTestLogger())

	_, err := uc.Send(context.Background(), "s1", "quanto costano i biglietti?")
	require.NoError(t, err)

	require.NotEmpty(t, ai.lastMsgs)
	sys := ai.lastMsgs[0]
	assert.Equal(t, "system", sys.Role)
	assert.Contains(t, sys.Content, "BIGLIETTI:", "ticket context injected for a ticket question")
	assert.Equal(t, "user", ai.lastMsgs[len(ai.lastMsgs)-1].Role)
}

func TestSendUpstreamFailureLeavesHistoryUntouched(t *testing.T) {
	store := newTestStore()
	ai := &fakeAI{err: errors.New("http 502")}
	uc := NewChatUseCase(store, ai, newTestLogger())

	// Seed one good turn, then fail the next.
	ai.err = nil
	_, err := uc.Send(context.Background(), "s1", "ciao")
	require.NoError(t, err)
	ai.err = errors.New("http 502")

	_, err = uc.Send(context.Background(), "s1", "e i biglietti?")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	s, _ := store.GetOrCreate("s1", "x")
	assert.Len(t, s.History, 2, "failed turn is rolled back; history even")
}

func TestSendTurnLimitFreezesSession(t *testing.T) {
	store := newTestStore()
	ai := &fakeAI{}
	uc := NewChatUseCase(store, ai, newTestLogger())

	for i := 0; i < 10; i++ {
		_, err := uc.Send(context.Background(), "s1", "domanda")
		require.NoError(t, err)
	}
	require.Equal(t, 10, ai.calls)

	// 11th message: fixed limit reply, no completion call, no history growth.
	reply, err := uc.Send(context.Background(), "s1", "ancora una")
	require.NoError(t, err)
	assert.Equal(t, LimitMessage(model.LangItalian), reply.Text)
	assert.Contains(t, reply.Text, "Limite conversazione raggiunto")
	assert.Equal(t, 10, ai.calls, "completion client not invoked past the limit")

	s, _ := store.GetOrCreate("s1", "x")
	assert.Len(t, s.History, 20)
}

func TestSendLanguageFixedPerSession(t *testing.T) {
	store := newTestStore()
	uc := NewChatUseCase(store, &fakeAI{}, newTestLogger())

	r1, err := uc.Send(context.Background(), "s1", "what time does the race start?")
	require.NoError(t, err)
	assert.Equal(t, model.LangEnglish, r1.Language)

	r2, err := uc.Send(context.Background(), "s1", "e i biglietti?")
	require.NoError(t, err)
	assert.Equal(t, model.LangEnglish, r2.Language, "language never changes after the first message")
}
