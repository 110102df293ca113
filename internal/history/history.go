// Package history is a linear undo/redo buffer of full board snapshots.
package history

import (
	"fmt"

	"github.com/Ngyama/idea-canvas/internal/store"
)

// DefaultCap is the number of snapshots kept before the oldest is evicted.
const DefaultCap = 50

// History stores deep copies; neither Push nor Undo/Redo share memory with
// the caller's board.
type History struct {
	entries []*store.DB
	cursor  int
	cap     int
}

func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &History{cursor: -1, cap: capacity}
}

// Push records db as the newest state. Redo entries past the cursor are
// discarded.
func (h *History) Push(db *store.DB) {
	h.entries = append(h.entries[:h.cursor+1], db.Clone())
	if over := len(h.entries) - h.cap; over > 0 {
		h.entries = append([]*store.DB(nil), h.entries[over:]...)
	}
	h.cursor = len(h.entries) - 1
}

// Undo steps back and returns the snapshot now under the cursor. ok is
// false at the oldest entry.
func (h *History) Undo() (*store.DB, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), true
}

func (h *History) Redo() (*store.DB, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }
func (h *History) Len() int      { return len(h.entries) }
func (h *History) Cursor() int   { return h.cursor }
func (h *History) Cap() int      { return h.cap }

// Reset drops every entry and starts over from initial.
func (h *History) Reset(initial *store.DB) {
	h.entries = nil
	h.cursor = -1
	h.Push(initial)
}

// Entries returns copies of every snapshot, oldest first.
func (h *History) Entries() []*store.DB {
	out := make([]*store.DB, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, e.Clone())
	}
	return out
}

// Restore replaces the buffer with persisted entries. Entries beyond the cap
// are trimmed from the oldest end and the cursor follows.
func (h *History) Restore(entries []*store.DB, cursor int) error {
	if len(entries) == 0 {
		return fmt.Errorf("restore history: no entries")
	}
	if cursor < 0 || cursor >= len(entries) {
		return fmt.Errorf("restore history: cursor %d out of range [0,%d)", cursor, len(entries))
	}
	if over := len(entries) - h.cap; over > 0 {
		entries = entries[over:]
		cursor -= over
		if cursor < 0 {
			cursor = 0
		}
	}
	h.entries = make([]*store.DB, 0, len(entries))
	for _, e := range entries {
		h.entries = append(h.entries, e.Clone())
	}
	h.cursor = cursor
	return nil
}
