package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

const (
	taskIDPrefix     = "task"
	categoryIDPrefix = "cat"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits (~1 trillion) of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

func idExists(db *DB, id string) bool {
	if _, ok := db.FindTask(id); ok {
		return true
	}
	_, ok := db.FindCategory(id)
	return ok
}

// nextID allocates an id that is not used by any task or category.
func (db *DB) nextID(prefix string) string {
	for i := 0; i < 10; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			break
		}
		if !idExists(db, id) {
			return id
		}
	}
	// crypto/rand failed or we kept colliding; fall back to a counter.
	n := len(db.Tasks) + len(db.Categories) + 1
	for {
		id := fmt.Sprintf("%s-%d", prefix, n)
		if !idExists(db, id) {
			return id
		}
		n++
	}
}
