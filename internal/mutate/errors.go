package mutate

import (
	"errors"

	"github.com/Ngyama/idea-canvas/internal/store"
)

// ErrCycle is returned when nesting would make a task its own ancestor.
var ErrCycle = errors.New("nesting would create a cycle")

// NotFoundError is the store's referential-miss error; operations return it
// without touching the board.
type NotFoundError = store.NotFoundError
