package tiling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tree"
)

// MaxWorkspaces bounds workspace indices accepted from commands.
const MaxWorkspaces = 32

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("invalid argument")
)

// Command is a decoded user operation. The set is closed; every variant is
// declared in this file.
type Command interface {
	// Name is the canonical command name.
	Name() string
	// Arg renders the argument the command was decoded from.
	Arg() string
	command()
}

type (
	// KillActive closes the focused window.
	KillActive struct{}
	// ToggleFullscreen covers the monitor with the focused window, or
	// restores the workspace's fullscreen window.
	ToggleFullscreen struct{}
	// ToggleFloating moves the focused window between the tree and the
	// floating set.
	ToggleFloating struct{}
	// Resize grows the focused window toward Side.
	Resize struct{ Side tree.Side }
	// ToggleSplitDirection flips the split holding the focused window.
	ToggleSplitDirection struct{}
	// SwapSides exchanges the children of the split holding the focused
	// window.
	SwapSides struct{}
	// MoveToWorkspace sends the focused window to another workspace.
	MoveToWorkspace struct{ Index int }
	// SetWorkspace shows a workspace on the monitor under the cursor.
	SetWorkspace struct{ Index int }
	// Exit stops the window manager.
	Exit struct{}
)

func (KillActive) Name() string           { return "kill-active" }
func (ToggleFullscreen) Name() string     { return "toggle-fullscreen" }
func (ToggleFloating) Name() string       { return "toggle-floating" }
func (Resize) Name() string               { return "resize" }
func (ToggleSplitDirection) Name() string { return "change-split-direction" }
func (SwapSides) Name() string            { return "swap-sides" }
func (MoveToWorkspace) Name() string      { return "move" }
func (SetWorkspace) Name() string         { return "set-workspace" }
func (Exit) Name() string                 { return "exit" }

func (KillActive) Arg() string           { return "" }
func (ToggleFullscreen) Arg() string     { return "" }
func (ToggleFloating) Arg() string       { return "" }
func (c Resize) Arg() string             { return c.Side.String() }
func (ToggleSplitDirection) Arg() string { return "" }
func (SwapSides) Arg() string            { return "" }
func (c MoveToWorkspace) Arg() string    { return strconv.Itoa(c.Index) }
func (c SetWorkspace) Arg() string       { return strconv.Itoa(c.Index) }
func (Exit) Arg() string                 { return "" }

func (KillActive) command()           {}
func (ToggleFullscreen) command()     {}
func (ToggleFloating) command()       {}
func (Resize) command()               {}
func (ToggleSplitDirection) command() {}
func (SwapSides) command()            {}
func (MoveToWorkspace) command()      {}
func (SetWorkspace) command()         {}
func (Exit) command()                 {}

// aliases maps the CamelCase names accepted for compatibility.
var aliases = map[string]string{
	"KillActive":                       "kill-active",
	"ToggleFullscreen":                 "toggle-fullscreen",
	"ToggleFloating":                   "toggle-floating",
	"ResizeActiveWindow":               "resize",
	"ChangeActiveWindowSplitDirection": "change-split-direction",
	"SwapActiveWindowSides":            "swap-sides",
	"MoveActiveWindow":                 "move",
	"SetFocusedMonitorToWorkspace":     "set-workspace",
	"ExitWM":                           "exit",
}

// CommandNames lists the canonical command names.
func CommandNames() []string {
	return []string{
		"kill-active",
		"toggle-fullscreen",
		"toggle-floating",
		"resize",
		"change-split-direction",
		"swap-sides",
		"move",
		"set-workspace",
		"exit",
	}
}

// ParseCommand decodes a command name and its argument.
func ParseCommand(name, arg string) (Command, error) {
	canonical := strings.TrimSpace(name)
	if a, ok := aliases[canonical]; ok {
		canonical = a
	}
	arg = strings.TrimSpace(arg)

	noArg := func(c Command) (Command, error) {
		if arg != "" {
			return nil, &CommandError{Name: name, Arg: arg, Err: fmt.Errorf("%w: takes no argument", ErrBadArgument)}
		}
		return c, nil
	}

	switch canonical {
	case "kill-active":
		return noArg(KillActive{})
	case "toggle-fullscreen":
		return noArg(ToggleFullscreen{})
	case "toggle-floating":
		return noArg(ToggleFloating{})
	case "change-split-direction":
		return noArg(ToggleSplitDirection{})
	case "swap-sides":
		return noArg(SwapSides{})
	case "exit":
		return noArg(Exit{})
	case "resize":
		side, err := ParseSide(arg)
		if err != nil {
			return nil, &CommandError{Name: name, Arg: arg, Err: err}
		}
		return Resize{Side: side}, nil
	case "move":
		idx, err := parseWorkspace(arg)
		if err != nil {
			return nil, &CommandError{Name: name, Arg: arg, Err: err}
		}
		return MoveToWorkspace{Index: idx}, nil
	case "set-workspace":
		idx, err := parseWorkspace(arg)
		if err != nil {
			return nil, &CommandError{Name: name, Arg: arg, Err: err}
		}
		return SetWorkspace{Index: idx}, nil
	default:
		return nil, &CommandError{Name: name, Arg: arg, Err: ErrUnknownCommand}
	}
}

// ParseSide decodes left, right, up or down.
func ParseSide(s string) (tree.Side, error) {
	switch strings.ToLower(s) {
	case "left":
		return tree.Left, nil
	case "right":
		return tree.Right, nil
	case "up":
		return tree.Up, nil
	case "down":
		return tree.Down, nil
	default:
		return 0, fmt.Errorf("%w: side must be left, right, up or down", ErrBadArgument)
	}
}

func parseWorkspace(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: workspace index: %v", ErrBadArgument, err)
	}
	if n < 0 || n >= MaxWorkspaces {
		return 0, fmt.Errorf("%w: workspace index must be in [0, %d)", ErrBadArgument, MaxWorkspaces)
	}
	return n, nil
}

// CommandInvoked decodes and runs a command.
func (e *Engine) CommandInvoked(name, arg string) error {
	cmd, err := ParseCommand(name, arg)
	if err != nil {
		e.stats.Counter("command_errors").Inc(1)
		return err
	}
	return e.Dispatch(cmd)
}

// Dispatch runs a decoded command against the focused window. Commands that
// need a focused window do nothing when there is none.
func (e *Engine) Dispatch(cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.SubScope("commands").Counter(cmd.Name()).Inc(1)
	e.logger.Debug("command", "name", cmd.Name(), "arg", cmd.Arg())

	var err error
	switch c := cmd.(type) {
	case KillActive:
		err = e.killActive()
	case ToggleFullscreen:
		err = e.toggleFullscreen()
	case ToggleFloating:
		err = e.toggleFloating()
	case Resize:
		err = e.resize(c.Side)
	case ToggleSplitDirection:
		err = e.onFocusedSplit(e.arena.ToggleDirection)
	case SwapSides:
		err = e.onFocusedSplit(e.arena.SwapChildren)
	case MoveToWorkspace:
		err = e.moveToWorkspace(c.Index)
	case SetWorkspace:
		err = e.setFocusedMonitorToWorkspace(c.Index)
	case Exit:
		return ErrExit
	default:
		err = fmt.Errorf("unhandled command %T", cmd)
	}
	return e.observe(err)
}

func (e *Engine) killActive() error {
	leaf, _, ok, err := e.focused()
	if err != nil || !ok {
		return err
	}
	w, err := e.arena.Window(leaf)
	if err != nil {
		return err
	}
	id := platform.WindowID(w.Handle)
	graceful, err := e.backend.Close(id)
	if err != nil {
		return backendErr("close", id, err)
	}
	if !graceful {
		return backendErr("kill", id, e.backend.Kill(id))
	}
	return nil
}

func (e *Engine) toggleFullscreen() error {
	leaf, wsIdx, ok, err := e.focused()
	if err != nil || !ok {
		return err
	}
	ws := e.workspaces[wsIdx]
	if ws.Fullscreen != tree.None {
		prev := ws.Fullscreen
		ws.Fullscreen = tree.None
		return e.place(prev)
	}

	ws.Fullscreen = leaf
	w, err := e.arena.Window(leaf)
	if err != nil {
		return err
	}
	id := platform.WindowID(w.Handle)
	if err := e.backend.Raise(id); err != nil {
		return backendErr("raise", id, err)
	}
	return e.place(leaf)
}

func (e *Engine) toggleFloating() error {
	leaf, wsIdx, ok, err := e.focused()
	if err != nil || !ok {
		return err
	}
	promoted, err := e.detach(leaf, wsIdx)
	if err != nil {
		return err
	}
	w, err := e.arena.Window(leaf)
	if err != nil {
		return err
	}
	w.Floating = !w.Floating
	if w.Floating {
		w.Position, w.Size = defaultFloatPosition, defaultFloatSize
	}
	top, err := e.attach(leaf, wsIdx, tree.Right)
	if err != nil {
		return err
	}

	var raiseErr error
	if w.Floating {
		id := platform.WindowID(w.Handle)
		raiseErr = backendErr("raise", id, e.backend.Raise(id))
	}
	return errors.Join(e.recompute(promoted), e.recompute(top), raiseErr)
}

func (e *Engine) resize(side tree.Side) error {
	leaf, _, ok, err := e.focused()
	if err != nil || !ok {
		return err
	}
	w, err := e.arena.Window(leaf)
	if err != nil {
		return err
	}

	if w.Floating {
		step := e.settings.FloatingResizeStep
		if !side.Trailing() {
			step = -step
		}
		if side.Direction() == tree.Vertical {
			w.Size.X = clampFraction(w.Size.X + step)
		} else {
			w.Size.Y = clampFraction(w.Size.Y + step)
		}
		return e.place(leaf)
	}

	path, err := e.arena.Path(leaf)
	if err != nil {
		return err
	}
	for i := len(path) - 1; i >= 0; i-- {
		s, err := e.arena.Split(path[i].Split)
		if err != nil {
			return err
		}
		if s.Direction != side.Direction() {
			continue
		}
		step := e.settings.ResizeStep
		if !side.Trailing() {
			step = -step
		}
		ratio, err := e.arena.AdjustRatio(path[i].Split, step)
		if err != nil {
			return err
		}
		e.logger.Debug("split resized", "split", uint32(path[i].Split), "ratio", ratio)
		return e.recompute(path[i].Split)
	}
	return nil
}

// minFloatingSize keeps a floating window from shrinking to nothing.
const minFloatingSize = 0.05

func clampFraction(f float64) float64 {
	if f < minFloatingSize {
		return minFloatingSize
	}
	if f > 1 {
		return 1
	}
	return f
}

// onFocusedSplit applies op to the split directly holding the focused tiled
// window and lays out the result.
func (e *Engine) onFocusedSplit(op func(tree.ID) error) error {
	leaf, _, ok, err := e.focused()
	if err != nil || !ok {
		return err
	}
	w, err := e.arena.Window(leaf)
	if err != nil {
		return err
	}
	if w.Floating {
		return nil
	}
	parent, err := e.arena.Parent(leaf)
	if err != nil || parent == tree.None {
		return err
	}
	if err := op(parent); err != nil {
		return err
	}
	return e.recompute(parent)
}

func (e *Engine) moveToWorkspace(target int) error {
	leaf, wsIdx, ok, err := e.focused()
	if err != nil || !ok || wsIdx == target {
		return err
	}
	promoted, err := e.detach(leaf, wsIdx)
	if err != nil {
		return err
	}
	e.clearPointers(leaf, e.workspaces[wsIdx])
	top, err := e.attach(leaf, target, tree.Right)
	if err != nil {
		return err
	}
	e.logger.Debug("window moved", "from", wsIdx, "to", target)
	return errors.Join(e.recompute(promoted), e.recompute(top))
}
