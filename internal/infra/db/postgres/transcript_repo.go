// File: internal/infra/db/postgres/transcript_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cesare-chatbot/internal/domain/model"
	"cesare-chatbot/internal/domain/ports/repository"
)

var _ repository.TranscriptArchive = (*TranscriptRepo)(nil)

// TranscriptRepo archives evicted sessions. Write-only: live sessions stay in
// memory and are lost on restart regardless of this repo.
type TranscriptRepo struct {
	pool *pgxpool.Pool
}

func NewPgxPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

func NewTranscriptRepo(pool *pgxpool.Pool) *TranscriptRepo {
	return &TranscriptRepo{pool: pool}
}

// EnsureSchema creates the archive tables when missing.
func (r *TranscriptRepo) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS chat_transcripts (
  session_id  TEXT PRIMARY KEY,
  language    TEXT NOT NULL,
  started_at  TIMESTAMPTZ NOT NULL,
  ended_at    TIMESTAMPTZ NOT NULL,
  turns       INT NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_transcript_messages (
  session_id  TEXT NOT NULL REFERENCES chat_transcripts(session_id) ON DELETE CASCADE,
  seq         INT NOT NULL,
  role        TEXT NOT NULL,
  content     TEXT NOT NULL,
  PRIMARY KEY (session_id, seq)
);`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure transcript schema: %w", err)
	}
	return nil
}

func (r *TranscriptRepo) SaveTranscript(ctx context.Context, s *model.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const qHead = `
INSERT INTO chat_transcripts (session_id, language, started_at, ended_at, turns)
VALUES ($1,$2,$3,$4,$5);`
	if _, err := tx.Exec(ctx, qHead, s.ID, string(s.Language), s.CreatedAt, s.LastActivity, s.Turns()); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Same session id archived before (store restart with a reused
			// web session id); keep the first transcript.
			return nil
		}
		return fmt.Errorf("insert transcript: %w", err)
	}

	batch := &pgx.Batch{}
	const qMsg = `
INSERT INTO chat_transcript_messages (session_id, seq, role, content)
VALUES ($1,$2,$3,$4);`
	for i, t := range s.History {
		batch.Queue(qMsg, s.ID, i, t.Role, t.Content)
	}
	br := tx.SendBatch(ctx, batch)
	for range s.History {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert transcript message: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return tx.Commit(ctx)
}
