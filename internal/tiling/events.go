package tiling

import (
	"errors"

	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tree"
)

// WindowMapped adopts a window into the workspace of the monitor under the
// cursor. Dialogs, utilities and popups float; normal windows split the
// leaf chosen by insertionTarget.
func (e *Engine) WindowMapped(id platform.WindowID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.SubScope("events").Counter("mapped").Inc(1)
	err := e.windowMapped(id)
	return e.observe(errors.Join(err, e.updateManaged()))
}

func (e *Engine) windowMapped(id platform.WindowID) error {
	h := tree.Handle(id)
	if _, _, ok, err := e.findLeaf(h); err != nil || ok {
		return err
	}
	class, err := e.backend.Classify(id)
	if err != nil {
		return backendErr("classify", id, err)
	}
	if class == platform.ClassUnmanaged {
		return nil
	}

	mon, err := e.activeMonitor()
	if err != nil {
		return err
	}
	wsIdx := e.monitors[mon].Workspace
	if wsIdx == NoWorkspace {
		wsIdx = e.assignFreeWorkspace(mon)
	}
	ws := e.workspace(wsIdx)

	if class.Floats() {
		leaf := e.arena.NewLeaf(tree.Window{
			Handle:   h,
			Floating: true,
			Position: defaultFloatPosition,
			Size:     defaultFloatSize,
		})
		ws.Floating = append(ws.Floating, leaf)
		e.logger.Debug("window adopted", "window", uint32(id), "class", class.String(), "workspace", wsIdx)
		return errors.Join(e.place(leaf), backendErr("raise", id, e.backend.Raise(id)))
	}

	if ws.Root == tree.None {
		ws.Root = e.arena.NewLeaf(tree.Window{Handle: h})
		e.logger.Debug("window adopted", "window", uint32(id), "workspace", wsIdx, "root", true)
		return e.place(ws.Root)
	}

	x, y, err := e.backend.CursorPosition()
	if err != nil {
		return backendErr("cursor position", 0, err)
	}
	target, targetRect, err := e.insertionTarget(wsIdx, mon, x, y)
	if err != nil {
		return err
	}
	side := sideFor(targetRect, x, y)
	split, _, err := e.arena.InsertLeaf(target, tree.Window{Handle: h}, side)
	if err != nil {
		return err
	}
	if ws.Root == target {
		ws.Root = split
	}
	if err := e.arena.Validate(ws.Root); err != nil {
		return err
	}
	e.logger.Debug("window adopted", "window", uint32(id), "workspace", wsIdx, "side", side.String())
	return e.recompute(split)
}

// insertionTarget picks the leaf a new window splits: the focused tiled
// leaf of the workspace, else the leaf under the cursor, else the last leaf.
// It also returns the target's tiled rectangle.
func (e *Engine) insertionTarget(wsIdx, mon, x, y int) (tree.ID, Rect, error) {
	ws := e.workspaces[wsIdx]
	monRect := e.monitors[mon].Rect

	if e.focus != tree.None {
		fws, err := e.workspaceOf(e.focus)
		if err != nil {
			return tree.None, Rect{}, err
		}
		w, err := e.arena.Window(e.focus)
		if err != nil {
			return tree.None, Rect{}, err
		}
		if fws == wsIdx && !w.Floating {
			r, err := e.tiledRect(e.focus, monRect)
			return e.focus, r, err
		}
	}

	leaves, err := e.arena.Leaves(ws.Root)
	if err != nil {
		return tree.None, Rect{}, err
	}
	if len(leaves) == 0 {
		return tree.None, Rect{}, invariantf("insertion target", "workspace %d has a root but no leaves", wsIdx)
	}
	var last Rect
	for _, leaf := range leaves {
		r, err := e.tiledRect(leaf, monRect)
		if err != nil {
			return tree.None, Rect{}, err
		}
		if r.Contains(x, y) {
			return leaf, r, nil
		}
		last = r
	}
	return leaves[len(leaves)-1], last, nil
}

// WindowUnmapped forgets a window that was withdrawn. Unknown windows are
// ignored.
func (e *Engine) WindowUnmapped(id platform.WindowID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.SubScope("events").Counter("unmapped").Inc(1)
	return e.observe(e.forget(id))
}

// WindowDestroyed forgets a destroyed window. Unknown windows are ignored.
func (e *Engine) WindowDestroyed(id platform.WindowID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.SubScope("events").Counter("destroyed").Inc(1)
	return e.observe(e.forget(id))
}

func (e *Engine) forget(id platform.WindowID) error {
	leaf, wsIdx, ok, err := e.findLeaf(tree.Handle(id))
	if err != nil || !ok {
		return err
	}
	promoted, err := e.detach(leaf, wsIdx)
	if err != nil {
		return err
	}
	e.clearPointers(leaf, e.workspaces[wsIdx])
	if err := e.arena.Release(leaf); err != nil {
		return err
	}
	if err := e.updateManaged(); err != nil {
		return err
	}
	e.logger.Debug("window released", "window", uint32(id), "workspace", wsIdx)
	return e.recompute(promoted)
}

// PointerEntered moves focus to the window under the pointer and redraws the
// borders of the old and new focus.
func (e *Engine) PointerEntered(id platform.WindowID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.SubScope("events").Counter("entered").Inc(1)
	return e.observe(e.pointerEntered(id))
}

func (e *Engine) pointerEntered(id platform.WindowID) error {
	leaf, _, ok, err := e.findLeaf(tree.Handle(id))
	if err != nil || !ok || leaf == e.focus {
		return err
	}
	prev := e.focus
	e.focus = leaf
	if err := e.backend.Focus(id); err != nil {
		return backendErr("focus", id, err)
	}
	if !e.colorsEnabled() {
		return nil
	}
	var errs []error
	if prev != tree.None {
		errs = append(errs, e.place(prev))
	}
	errs = append(errs, e.place(leaf))
	return errors.Join(errs...)
}
