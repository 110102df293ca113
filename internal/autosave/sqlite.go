package autosave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Ngyama/idea-canvas/internal/store"
)

// SQLiteSink keeps snapshots in a local sqlite file, payloads zstd-compressed.
type SQLiteSink struct {
	db *sql.DB
}

func OpenSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	db, err := store.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS autosave (
		k TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		digest TEXT NOT NULL,
		saved_at_unixms INTEGER NOT NULL,
		payload BLOB NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Save(ctx context.Context, key string, snap Snapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO autosave(k, session_id, digest, saved_at_unixms, payload) VALUES(?, ?, ?, ?, ?)`,
		key, snap.SessionID, snap.Digest, snap.SavedAt.UTC().UnixMilli(), store.Compress(snap.Payload))
	return err
}

func (s *SQLiteSink) Load(ctx context.Context, key string) (Snapshot, error) {
	var (
		snap Snapshot
		ms   int64
		blob []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, digest, saved_at_unixms, payload FROM autosave WHERE k = ?`, key).
		Scan(&snap.SessionID, &snap.Digest, &ms, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, err
	}
	raw, err := store.Decompress(blob)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Payload = raw
	snap.SavedAt = time.UnixMilli(ms).UTC()
	return snap, nil
}

func (s *SQLiteSink) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM autosave WHERE k = ?`, key)
	return err
}

func (s *SQLiteSink) Close() error { return s.db.Close() }
