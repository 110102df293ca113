package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Ngyama/idea-canvas/internal/model"

	_ "modernc.org/sqlite"
)

const boardDBName = "board.sqlite"

// SessionState is everything persisted for a board: the live entities and
// the undo buffer with its cursor. Cursor is -1 when there is no history.
type SessionState struct {
	DB      *DB
	History []*DB
	Cursor  int
}

func (s Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), boardDBName)
}

// OpenSQLite opens (creating if needed) a modernc sqlite database at path
// with the pragmas used for local multi-process access.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	db, err := OpenSQLite(ctx, s.sqlitePath())
	if err != nil {
		return nil, err
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// LoadSession reads the board and its history. A missing database loads as
// an empty board with no history.
func (s Store) LoadSession(ctx context.Context) (*SessionState, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	board, err := loadBoardFromSQLite(ctx, db)
	if err != nil {
		return nil, err
	}
	hist, err := loadHistoryFromSQLite(ctx, db)
	if err != nil {
		return nil, err
	}

	st := &SessionState{DB: board, History: hist, Cursor: -1}
	if len(hist) > 0 {
		st.Cursor = len(hist) - 1
		if v := readMeta(ctx, db, "history_cursor"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(hist) {
				st.Cursor = n
			}
		}
	}
	return st, nil
}

// SaveSession replaces the persisted board and history in one transaction.
func (s Store) SaveSession(ctx context.Context, st *SessionState) error {
	if st == nil || st.DB == nil {
		return errors.New("nil session state")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", "1"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "history_cursor", strconv.Itoa(st.Cursor)); err != nil {
		return err
	}

	// Replace-all strategy; boards are small.
	for _, t := range []string{"tasks", "categories", "history"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()
	for i, t := range st.DB.Tasks {
		raw, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(seq, id, parent_id, category_id, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			i, t.ID, t.ParentIDValue(), t.CategoryIDValue(), string(raw), nowMs); err != nil {
			return fmt.Errorf("save task %s: %w", t.ID, err)
		}
	}
	for i, c := range st.DB.Categories {
		raw, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories(seq, id, name, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			i, c.ID, strings.TrimSpace(c.Name), string(raw), nowMs); err != nil {
			return fmt.Errorf("save category %s: %w", c.ID, err)
		}
	}
	for i, h := range st.History {
		blob, err := EncodeSnapshot(h)
		if err != nil {
			return err
		}
		digest, err := Digest(h)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO history(idx, digest, snapshot, created_at_unixms) VALUES(?, ?, ?, ?)`,
			i, digest, blob, nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Save persists the board and keeps whatever history is stored.
func (s Store) Save(ctx context.Context, board *DB) error {
	st, err := s.LoadSession(ctx)
	if err != nil {
		return err
	}
	st.DB = board
	return s.SaveSession(ctx, st)
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			parent_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category_id);`,
		`CREATE TABLE IF NOT EXISTS categories (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			idx INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			snapshot BLOB NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func readMeta(ctx context.Context, db *sql.DB, k string) string {
	var v string
	_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
	return strings.TrimSpace(v)
}

func loadBoardFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{}
	tasks, err := readJSONRows[model.Task](ctx, db, `SELECT json FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	cats, err := readJSONRows[model.Category](ctx, db, `SELECT json FROM categories ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	out.Tasks = tasks
	out.Categories = cats
	return out, nil
}

func loadHistoryFromSQLite(ctx context.Context, db *sql.DB) ([]*DB, error) {
	rows, err := db.QueryContext(ctx, `SELECT idx, digest, snapshot FROM history ORDER BY idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DB
	for rows.Next() {
		var (
			idx    int
			digest string
			blob   []byte
		)
		if err := rows.Scan(&idx, &digest, &blob); err != nil {
			return nil, err
		}
		snap, err := DecodeSnapshot(blob)
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w", idx, err)
		}
		if got, err := Digest(snap); err != nil || got != digest {
			return nil, fmt.Errorf("history entry %d: digest mismatch", idx)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
