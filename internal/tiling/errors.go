package tiling

import (
	"errors"
	"fmt"

	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tree"
)

// ErrExit is returned by Dispatch when the user asked the manager to quit.
var ErrExit = errors.New("exit requested")

// BackendError wraps a failure reported by the display backend.
type BackendError struct {
	Op     string
	Window platform.WindowID
	Err    error
}

func (e *BackendError) Error() string {
	if e.Window != 0 {
		return fmt.Sprintf("backend %s (window %d): %v", e.Op, e.Window, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// CommandError reports a command that could not be decoded.
type CommandError struct {
	Name string
	Arg  string
	Err  error
}

func (e *CommandError) Error() string {
	if e.Arg != "" {
		return fmt.Sprintf("command %q (arg %q): %v", e.Name, e.Arg, e.Err)
	}
	return fmt.Sprintf("command %q: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsInvariant reports whether err signals corrupted layout state. The session
// should be rebuilt with Reset when this happens.
func IsInvariant(err error) bool {
	return tree.IsInvariant(err)
}

func backendErr(op string, id platform.WindowID, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Window: id, Err: err}
}

func invariantf(op string, format string, args ...any) error {
	return &tree.InvariantError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
