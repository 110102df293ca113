// Package autosave periodically writes a read-only copy of the live board to
// a persistence sink and offers the latest fresh copy back on startup.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ngyama/idea-canvas/internal/store"
)

// Key is the fixed sink key every board snapshot is stored under.
const Key = "idea-canvas-autosave"

var (
	ErrNoSnapshot      = errors.New("no autosave snapshot")
	ErrSnapshotExpired = errors.New("autosave snapshot expired")
)

// Snapshot is one persisted board in export form.
type Snapshot struct {
	Payload   []byte
	SavedAt   time.Time
	SessionID string
	// Digest is the hex BLAKE3 of Payload.
	Digest string
}

// Sink stores at most one snapshot per key. Load returns ErrNoSnapshot when
// nothing is stored.
type Sink interface {
	Save(ctx context.Context, key string, snap Snapshot) error
	Load(ctx context.Context, key string) (Snapshot, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

func verify(snap Snapshot) error {
	if snap.Digest != "" && store.DigestBytes(snap.Payload) != snap.Digest {
		return fmt.Errorf("autosave snapshot digest mismatch")
	}
	return nil
}

// LoadFresh reads the snapshot under key and decodes it. Snapshots older
// than window are deleted and reported as ErrSnapshotExpired.
func LoadFresh(ctx context.Context, sink Sink, key string, now time.Time, window time.Duration) (*store.DB, Snapshot, error) {
	snap, err := sink.Load(ctx, key)
	if err != nil {
		return nil, Snapshot{}, err
	}
	if window > 0 && now.Sub(snap.SavedAt) > window {
		if err := sink.Delete(ctx, key); err != nil {
			return nil, snap, fmt.Errorf("discard expired snapshot: %w", err)
		}
		return nil, snap, ErrSnapshotExpired
	}
	if err := verify(snap); err != nil {
		return nil, snap, err
	}
	db, err := store.Import(snap.Payload)
	if err != nil {
		return nil, snap, err
	}
	return db, snap, nil
}
