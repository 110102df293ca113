package store

import (
	"errors"
	"fmt"
)

var ErrCategoryTooSmall = errors.New("a category needs at least two tasks")

// NotFoundError reports an operation on an id that is not on the board.
// It is informational: the board is left untouched.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// ImportError reports a payload that could not be turned into a board.
// Nothing is loaded when it is returned.
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import: %s: %v", e.Reason, e.Err)
	}
	return "import: " + e.Reason
}

func (e *ImportError) Unwrap() error { return e.Err }
