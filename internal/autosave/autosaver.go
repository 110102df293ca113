package autosave

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ngyama/idea-canvas/internal/store"
)

// Source hands out a read-only copy of the live board. canvas.Session
// satisfies it.
type Source interface {
	Snapshot() *store.DB
}

type Options struct {
	Key      string
	Interval time.Duration
	Logger   logrus.FieldLogger
	// Now is overridable for tests.
	Now func() time.Time
}

// Autosaver writes the board to a sink on a fixed interval. Saves are
// skipped while the board's digest is unchanged. Failures are logged and
// never surface to the editing path.
type Autosaver struct {
	sink      Sink
	src       Source
	key       string
	interval  time.Duration
	log       logrus.FieldLogger
	now       func() time.Time
	sessionID string

	mu         sync.Mutex
	running    bool
	lastDigest string
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(sink Sink, src Source, opts Options) *Autosaver {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	key := opts.Key
	if key == "" {
		key = Key
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Autosaver{
		sink:      sink,
		src:       src,
		key:       key,
		interval:  interval,
		log:       log,
		now:       now,
		sessionID: uuid.NewString(),
	}
}

func (a *Autosaver) SessionID() string { return a.sessionID }

// SaveNow writes the current board unless it matches the last save.
func (a *Autosaver) SaveNow(ctx context.Context) (bool, error) {
	db := a.src.Snapshot()
	payload, err := store.Export(db, false)
	if err != nil {
		return false, err
	}
	digest := store.DigestBytes(payload)

	a.mu.Lock()
	same := digest == a.lastDigest
	a.mu.Unlock()
	if same {
		return false, nil
	}

	snap := Snapshot{
		Payload:   payload,
		SavedAt:   a.now().UTC(),
		SessionID: a.sessionID,
		Digest:    digest,
	}
	if err := a.sink.Save(ctx, a.key, snap); err != nil {
		return false, err
	}

	a.mu.Lock()
	a.lastDigest = digest
	a.mu.Unlock()
	a.log.WithFields(logrus.Fields{
		"key":    a.key,
		"digest": digest[:12],
		"tasks":  len(db.Tasks),
	}).Debug("autosaved board")
	return true, nil
}

// Start runs the save loop until Stop or ctx is done. Calling Start twice is
// a no-op.
func (a *Autosaver) Start(ctx context.Context) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.running = true
	a.cancel = cancel
	a.done = make(chan struct{})
	done := a.done
	a.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.tick(ctx)
			}
		}
	}()
}

func (a *Autosaver) tick(ctx context.Context) {
	if _, err := a.SaveNow(ctx); err != nil && ctx.Err() == nil {
		a.log.WithError(err).WithField("key", a.key).Warn("autosave failed")
	}
}

// Stop ends the loop and writes one final snapshot.
func (a *Autosaver) Stop(ctx context.Context) {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	cancel()
	<-done
	a.tick(ctx)
}

// Clear removes the stored snapshot and forgets the last digest so the next
// tick writes again.
func (a *Autosaver) Clear(ctx context.Context) error {
	a.mu.Lock()
	a.lastDigest = ""
	a.mu.Unlock()
	return a.sink.Delete(ctx, a.key)
}
