package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLeaf is returned when a leaf operation is given a split.
	ErrNotLeaf = errors.New("container is not a leaf")
	// ErrNotSplit is returned when a split operation is given a leaf.
	ErrNotSplit = errors.New("container is not a split")
)

// InvariantError reports a broken structural invariant: a stale ID, a split
// missing a child, a parent that does not reference its child. Callers treat
// it as a signal to rebuild the session rather than as a user error.
type InvariantError struct {
	Op     string
	ID     ID
	Reason string
	Err    error
}

func (e *InvariantError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	return fmt.Sprintf("tree invariant violated in %s (container %d): %s", e.Op, e.ID, msg)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

func invariant(op string, id ID, reason string) error {
	return &InvariantError{Op: op, ID: id, Reason: reason}
}

func invariantErr(op string, id ID, err error) error {
	return &InvariantError{Op: op, ID: id, Err: err}
}

// IsInvariant reports whether err wraps an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
