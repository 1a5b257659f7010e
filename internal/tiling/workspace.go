package tiling

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/1broseidon/exert/internal/config"
	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tree"
	"github.com/google/uuid"
	"github.com/uber-go/tally"
)

// NoWorkspace marks a monitor that displays nothing.
const NoWorkspace = -1

// Default floating placement, as monitor fractions.
var (
	defaultFloatPosition = tree.Fraction{X: 0.25, Y: 0.25}
	defaultFloatSize     = tree.Fraction{X: 0.5, Y: 0.5}
)

// Workspace is one independent layout. It is on screen while a monitor
// displays it and parked off screen otherwise.
type Workspace struct {
	Root       tree.ID
	Floating   []tree.ID
	Fullscreen tree.ID
}

// Monitor is a physical output and the workspace bound to it.
type Monitor struct {
	Name      string `json:"name"`
	Rect      Rect   `json:"rect"`
	Workspace int    `json:"workspace"`
}

// Engine owns the layout state of one session and applies it through a
// platform backend. All exported methods are safe for concurrent use; each
// runs to completion under a single lock.
type Engine struct {
	mu       sync.Mutex
	backend  platform.Backend
	settings config.Settings
	logger   *slog.Logger
	stats    tally.Scope

	session    uuid.UUID
	arena      *tree.Arena
	monitors   []*Monitor
	workspaces []*Workspace
	focus      tree.ID
}

// NewEngine creates an engine with no monitors. Call Start or Reset before
// feeding it events.
func NewEngine(backend platform.Backend, settings config.Settings, logger *slog.Logger, stats tally.Scope) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if stats == nil {
		stats = tally.NoopScope
	}
	return &Engine{
		backend:  backend,
		settings: settings,
		logger:   logger,
		stats:    stats,
		session:  uuid.New(),
		arena:    tree.NewArena(),
	}
}

// Start enumerates monitors from the backend and resets the session.
func (e *Engine) Start() error {
	displays, err := e.backend.Displays()
	if err != nil {
		return backendErr("displays", 0, err)
	}
	e.Reset(displays)
	return nil
}

// Reset discards all layout state and binds a fresh workspace to each
// display. Windows must be re-announced with WindowMapped afterwards.
func (e *Engine) Reset(displays []platform.Display) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session = uuid.New()
	e.arena = tree.NewArena()
	e.workspaces = nil
	e.focus = tree.None
	e.monitors = make([]*Monitor, 0, len(displays))
	for _, d := range displays {
		e.monitors = append(e.monitors, &Monitor{
			Name:      d.Name,
			Rect:      rectFromPlatform(d.Bounds),
			Workspace: NoWorkspace,
		})
	}
	for i := range e.monitors {
		e.assignFreeWorkspace(i)
	}
	e.stats.SubScope("windows").Gauge("managed").Update(0)
	e.logger.Info("session reset", "session", e.session.String(), "monitors", len(e.monitors))
}

// UpdateSettings swaps the geometry settings and re-lays out every workspace.
func (e *Engine) UpdateSettings(settings config.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings = settings
	return e.observe(e.recomputeAll())
}

// Managed returns the handles of every managed window.
func (e *Engine) Managed() ([]platform.WindowID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, err := e.managed()
	return ids, e.observe(err)
}

func (e *Engine) managed() ([]platform.WindowID, error) {
	var out []platform.WindowID
	for _, ws := range e.workspaces {
		leaves, err := e.arena.Leaves(ws.Root)
		if err != nil {
			return nil, err
		}
		for _, id := range append(leaves, ws.Floating...) {
			w, err := e.arena.Window(id)
			if err != nil {
				return nil, err
			}
			out = append(out, platform.WindowID(w.Handle))
		}
	}
	return out, nil
}

// Manages reports whether the engine owns the geometry of a window. A broken
// layout is logged and reported as not managed.
func (e *Engine) Manages(id platform.WindowID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _, ok, err := e.findLeaf(tree.Handle(id))
	if err != nil {
		e.observe(err)
		return false
	}
	return ok
}

func (e *Engine) workspace(i int) *Workspace {
	for len(e.workspaces) <= i {
		e.workspaces = append(e.workspaces, &Workspace{})
	}
	return e.workspaces[i]
}

// monitorFor returns the index of the monitor displaying ws.
func (e *Engine) monitorFor(ws int) (int, bool) {
	for i, m := range e.monitors {
		if m.Workspace == ws {
			return i, true
		}
	}
	return -1, false
}

// findLeaf locates the leaf holding h in any workspace, tiled or floating.
func (e *Engine) findLeaf(h tree.Handle) (tree.ID, int, bool, error) {
	for i, ws := range e.workspaces {
		id, ok, err := e.arena.FindLeaf(ws.Root, h)
		if err != nil {
			return tree.None, NoWorkspace, false, err
		}
		if ok {
			return id, i, true, nil
		}
		for _, id := range ws.Floating {
			w, err := e.arena.Window(id)
			if err != nil {
				return tree.None, NoWorkspace, false, err
			}
			if w.Handle == h {
				return id, i, true, nil
			}
		}
	}
	return tree.None, NoWorkspace, false, nil
}

// workspaceOf resolves the workspace owning leaf.
func (e *Engine) workspaceOf(leaf tree.ID) (int, error) {
	root, err := e.arena.Root(leaf)
	if err != nil {
		return NoWorkspace, err
	}
	for i, ws := range e.workspaces {
		if ws.Root == root || slices.Contains(ws.Floating, leaf) {
			return i, nil
		}
	}
	return NoWorkspace, invariantf("workspace of", "container %d belongs to no workspace", leaf)
}

// focused returns the focused leaf and its workspace.
func (e *Engine) focused() (tree.ID, int, bool, error) {
	if e.focus == tree.None {
		return tree.None, NoWorkspace, false, nil
	}
	ws, err := e.workspaceOf(e.focus)
	if err != nil {
		return tree.None, NoWorkspace, false, err
	}
	return e.focus, ws, true, nil
}

// activeMonitor is the monitor under the cursor, or the first monitor.
func (e *Engine) activeMonitor() (int, error) {
	if len(e.monitors) == 0 {
		return -1, invariantf("active monitor", "no monitors")
	}
	x, y, err := e.backend.CursorPosition()
	if err != nil {
		return -1, backendErr("cursor position", 0, err)
	}
	for i, m := range e.monitors {
		if m.Rect.Contains(x, y) {
			return i, nil
		}
	}
	return 0, nil
}

// clearPointers drops fullscreen and focus references to leaf.
func (e *Engine) clearPointers(leaf tree.ID, ws *Workspace) {
	if ws.Fullscreen == leaf {
		ws.Fullscreen = tree.None
	}
	if e.focus == leaf {
		e.focus = tree.None
	}
}

// detach takes leaf out of its workspace's tree or floating set. The leaf
// stays allocated. The returned container took the leaf's place and must be
// laid out again; it is None when nothing moved.
func (e *Engine) detach(leaf tree.ID, wsIdx int) (tree.ID, error) {
	ws := e.workspaces[wsIdx]
	w, err := e.arena.Window(leaf)
	if err != nil {
		return tree.None, err
	}
	if w.Floating {
		i := slices.Index(ws.Floating, leaf)
		if i < 0 {
			return tree.None, invariantf("detach", "floating container %d missing from workspace %d", leaf, wsIdx)
		}
		ws.Floating = slices.Delete(ws.Floating, i, i+1)
		return tree.None, nil
	}

	r, err := e.arena.RemoveLeaf(leaf)
	if err != nil {
		return tree.None, err
	}
	switch {
	case r.Empty:
		ws.Root = tree.None
	case r.NewRoot:
		ws.Root = r.Promoted
	}
	return r.Promoted, e.arena.Validate(ws.Root)
}

// attach adds a detached leaf to ws: floating leaves join the floating set,
// tiled leaves go beside the last tiled leaf.
func (e *Engine) attach(leaf tree.ID, wsIdx int, side tree.Side) (tree.ID, error) {
	ws := e.workspace(wsIdx)
	w, err := e.arena.Window(leaf)
	if err != nil {
		return tree.None, err
	}
	if w.Floating {
		ws.Floating = append(ws.Floating, leaf)
		return leaf, nil
	}
	if ws.Root == tree.None {
		ws.Root = leaf
		return leaf, nil
	}
	leaves, err := e.arena.Leaves(ws.Root)
	if err != nil {
		return tree.None, err
	}
	target := leaves[len(leaves)-1]
	split, err := e.arena.Attach(target, leaf, side)
	if err != nil {
		return tree.None, err
	}
	if ws.Root == target {
		ws.Root = split
	}
	return split, e.arena.Validate(ws.Root)
}

// updateManaged refreshes the managed window gauge.
func (e *Engine) updateManaged() error {
	ids, err := e.managed()
	if err != nil {
		return err
	}
	e.stats.SubScope("windows").Gauge("managed").Update(float64(len(ids)))
	return nil
}

// observe records invariant failures before handing err back.
func (e *Engine) observe(err error) error {
	if err != nil && IsInvariant(err) {
		e.stats.Counter("invariant_errors").Inc(1)
		e.logger.Error("layout invariant violated", "session", e.session.String(), "error", err)
	}
	return err
}
