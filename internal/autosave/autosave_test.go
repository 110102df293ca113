package autosave

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

type boardSource struct {
	mu sync.Mutex
	db *store.DB
}

func (b *boardSource) Snapshot() *store.DB {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Clone()
}

func (b *boardSource) addTask(content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.db.CreateTask(model.Point{X: 10, Y: 10}, content)
}

type countingSink struct {
	Sink
	mu    sync.Mutex
	saves int
	err   error
}

func (c *countingSink) Save(ctx context.Context, key string, snap Snapshot) error {
	c.mu.Lock()
	c.saves++
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.Sink.Save(ctx, key, snap)
}

func (c *countingSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func newSQLiteSink(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := OpenSQLiteSink(context.Background(), filepath.Join(t.TempDir(), "autosave.sqlite"))
	if err != nil {
		t.Fatalf("open sqlite sink: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRedisSink(t *testing.T, ttl time.Duration) (*RedisSink, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sink := NewRedisSink(client, ttl)
	t.Cleanup(func() { _ = sink.Close() })
	return sink, mr
}

func TestSinks_SaveLoadDelete(t *testing.T) {
	redisSink, _ := newRedisSink(t, 0)
	sinks := map[string]Sink{
		"sqlite": newSQLiteSink(t),
		"redis":  redisSink,
	}
	for name, sink := range sinks {
		ctx := context.Background()
		if _, err := sink.Load(ctx, Key); !errors.Is(err, ErrNoSnapshot) {
			t.Fatalf("%s: expected ErrNoSnapshot on empty sink; got %v", name, err)
		}

		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		payload := []byte(`{"tasks":{},"categories":{}}`)
		in := Snapshot{Payload: payload, SavedAt: at, SessionID: "sess-1", Digest: store.DigestBytes(payload)}
		if err := sink.Save(ctx, Key, in); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		out, err := sink.Load(ctx, Key)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if !bytes.Equal(out.Payload, payload) || !out.SavedAt.Equal(at) || out.SessionID != "sess-1" || out.Digest != in.Digest {
			t.Fatalf("%s: unexpected snapshot %+v", name, out)
		}

		// Saving again replaces the previous snapshot.
		in.SessionID = "sess-2"
		if err := sink.Save(ctx, Key, in); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		if out, _ := sink.Load(ctx, Key); out.SessionID != "sess-2" {
			t.Fatalf("%s: expected replaced snapshot; got %q", name, out.SessionID)
		}

		if err := sink.Delete(ctx, Key); err != nil {
			t.Fatalf("%s: delete: %v", name, err)
		}
		if _, err := sink.Load(ctx, Key); !errors.Is(err, ErrNoSnapshot) {
			t.Fatalf("%s: expected ErrNoSnapshot after delete; got %v", name, err)
		}
	}
}

func TestRedisSink_TTLExpires(t *testing.T) {
	sink, mr := newRedisSink(t, time.Hour)
	ctx := context.Background()
	if err := sink.Save(ctx, Key, Snapshot{Payload: []byte(`{}`), SavedAt: time.Now()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := sink.Load(ctx, Key); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected snapshot to expire; got %v", err)
	}
}

func TestLoadFresh(t *testing.T) {
	ctx := context.Background()
	sink := newSQLiteSink(t)

	db := &store.DB{}
	db.CreateTask(model.Point{X: 1, Y: 2}, "remember me")
	payload, err := store.Export(db, false)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	saved := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := sink.Save(ctx, Key, Snapshot{Payload: payload, SavedAt: saved, Digest: store.DigestBytes(payload)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _, err := LoadFresh(ctx, sink, Key, saved.Add(23*time.Hour), 24*time.Hour)
	if err != nil {
		t.Fatalf("expected fresh snapshot: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Content != "remember me" {
		t.Fatalf("unexpected board %+v", got.Tasks)
	}

	_, _, err = LoadFresh(ctx, sink, Key, saved.Add(25*time.Hour), 24*time.Hour)
	if !errors.Is(err, ErrSnapshotExpired) {
		t.Fatalf("expected ErrSnapshotExpired; got %v", err)
	}
	if _, err := sink.Load(ctx, Key); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected expired snapshot to be discarded; got %v", err)
	}
}

func TestLoadFresh_RejectsTamperedPayload(t *testing.T) {
	ctx := context.Background()
	sink := newSQLiteSink(t)
	if err := sink.Save(ctx, Key, Snapshot{Payload: []byte(`{}`), SavedAt: time.Now(), Digest: "deadbeef"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, err := LoadFresh(ctx, sink, Key, time.Now(), 24*time.Hour); err == nil {
		t.Fatalf("expected digest mismatch error")
	}
}

func TestAutosaver_SkipsUnchangedBoard(t *testing.T) {
	ctx := context.Background()
	src := &boardSource{db: &store.DB{}}
	sink := &countingSink{Sink: newSQLiteSink(t)}
	a := New(sink, src, Options{})

	if saved, err := a.SaveNow(ctx); err != nil || !saved {
		t.Fatalf("expected first save; got saved=%v err=%v", saved, err)
	}
	if saved, _ := a.SaveNow(ctx); saved {
		t.Fatalf("expected unchanged board to be skipped")
	}
	src.addTask("new")
	if saved, _ := a.SaveNow(ctx); !saved {
		t.Fatalf("expected changed board to be saved")
	}
	if sink.count() != 2 {
		t.Fatalf("expected 2 sink writes; got %d", sink.count())
	}

	snap, err := sink.Load(ctx, Key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.SessionID != a.SessionID() {
		t.Fatalf("expected session id %s; got %s", a.SessionID(), snap.SessionID)
	}

	if err := a.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if saved, _ := a.SaveNow(ctx); !saved {
		t.Fatalf("expected save after clear")
	}
}

func TestAutosaver_FailedSaveRetriesNextTick(t *testing.T) {
	ctx := context.Background()
	src := &boardSource{db: &store.DB{}}
	sink := &countingSink{Sink: newSQLiteSink(t), err: errors.New("disk full")}
	a := New(sink, src, Options{})

	if _, err := a.SaveNow(ctx); err == nil {
		t.Fatalf("expected sink error")
	}
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	if saved, err := a.SaveNow(ctx); err != nil || !saved {
		t.Fatalf("expected retry to save; got saved=%v err=%v", saved, err)
	}
}

func TestAutosaver_LoopAndFinalSave(t *testing.T) {
	ctx := context.Background()
	src := &boardSource{db: &store.DB{}}
	sink := &countingSink{Sink: newSQLiteSink(t)}
	a := New(sink, src, Options{Interval: 10 * time.Millisecond})

	a.Start(ctx)
	a.Start(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sink.count() == 0 {
		t.Fatalf("expected the loop to save at least once")
	}

	src.addTask("last edit")
	a.Stop(ctx)
	a.Stop(ctx)

	got, _, err := LoadFresh(ctx, sink, Key, time.Now(), 24*time.Hour)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Content != "last edit" {
		t.Fatalf("expected final save on stop; got %+v", got.Tasks)
	}
}
