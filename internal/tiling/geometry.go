package tiling

import (
	"errors"

	"github.com/1broseidon/exert/internal/config"
	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tree"
)

// placement is the computed geometry for one window.
type placement struct {
	rect   Rect
	border platform.Border
}

// computeRect derives the rectangle and border for leaf from the layout
// state. Windows of workspaces without a monitor are pushed below the active
// monitor by a multiple of its height.
func (e *Engine) computeRect(leaf tree.ID) (placement, error) {
	w, err := e.arena.Window(leaf)
	if err != nil {
		return placement{}, err
	}
	wsIdx, err := e.workspaceOf(leaf)
	if err != nil {
		return placement{}, err
	}
	ws := e.workspaces[wsIdx]
	border := e.border(leaf, w)

	monIdx, onScreen := e.monitorFor(wsIdx)
	if !onScreen {
		r, err := e.offscreenRect(w.Handle)
		if err != nil {
			return placement{}, err
		}
		return placement{rect: r, border: border}, nil
	}
	mon := e.monitors[monIdx].Rect

	var r Rect
	switch {
	case ws.Fullscreen == leaf:
		r = mon
	case w.Floating:
		r = mon.Fraction(w.Position, w.Size)
	default:
		r, err = e.tiledRect(leaf, mon)
		if err != nil {
			return placement{}, err
		}
	}

	// X11 draws the border outside the client area.
	r.Width -= 2 * border.Width
	r.Height -= 2 * border.Width
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return placement{rect: r, border: border}, nil
}

// tiledRect walks the splits from the root down to leaf, narrowing the padded
// monitor rectangle at each one.
func (e *Engine) tiledRect(leaf tree.ID, mon Rect) (Rect, error) {
	r := mon.Inset(e.settings.MonitorPadding)
	path, err := e.arena.Path(leaf)
	if err != nil {
		return Rect{}, err
	}
	for _, step := range path {
		s, err := e.arena.Split(step.Split)
		if err != nil {
			return Rect{}, err
		}
		first, second := r.Divide(s.Direction, s.Ratio)
		if step.Left {
			r = first
		} else {
			r = second
		}
	}
	return r.Inset(e.settings.WindowPadding / 2), nil
}

func (e *Engine) offscreenRect(h tree.Handle) (Rect, error) {
	id := platform.WindowID(h)
	cur, err := e.backend.WindowRect(id)
	if err != nil {
		return Rect{}, backendErr("window rect", id, err)
	}
	r := rectFromPlatform(cur)

	// Already parked; moving it again would only push it further out.
	visible := false
	for _, m := range e.monitors {
		if r.Intersects(m.Rect) {
			visible = true
			break
		}
	}
	if !visible {
		return r, nil
	}

	monIdx, err := e.activeMonitor()
	if err != nil {
		return Rect{}, err
	}
	r.Y += int(float64(e.monitors[monIdx].Rect.Height) * e.settings.OffscreenMultiplier)
	return r, nil
}

func (e *Engine) border(leaf tree.ID, w *tree.Window) platform.Border {
	s := e.settings
	active := e.focus == leaf
	var width int
	var color config.Color
	switch {
	case w.Floating && active:
		width, color = s.FloatingBorderWidth, s.ActiveFloatingBorderColor
	case w.Floating:
		width, color = s.FloatingBorderWidth, s.InactiveFloatingBorderColor
	case active:
		width, color = s.TiledBorderWidth, s.ActiveTiledBorderColor
	default:
		width, color = s.TiledBorderWidth, s.InactiveTiledBorderColor
	}
	return platform.Border{Width: width, Color: int64(color)}
}

// colorsEnabled reports whether focus changes alter any border color.
func (e *Engine) colorsEnabled() bool {
	s := e.settings
	return s.ActiveTiledBorderColor != s.InactiveTiledBorderColor ||
		s.ActiveFloatingBorderColor != s.InactiveFloatingBorderColor
}

// place computes and applies the geometry of a single leaf.
func (e *Engine) place(leaf tree.ID) error {
	p, err := e.computeRect(leaf)
	if err != nil {
		return err
	}
	w, err := e.arena.Window(leaf)
	if err != nil {
		return err
	}
	id := platform.WindowID(w.Handle)
	return backendErr("configure", id, e.backend.Configure(id, p.rect.platform(), p.border))
}

// recompute places every leaf under id.
func (e *Engine) recompute(id tree.ID) error {
	leaves, err := e.arena.Leaves(id)
	if err != nil {
		return err
	}
	var errs []error
	for _, leaf := range leaves {
		if err := e.place(leaf); err != nil {
			if IsInvariant(err) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// recomputeWorkspace places every tiled and floating window of ws.
func (e *Engine) recomputeWorkspace(wsIdx int) error {
	if wsIdx < 0 || wsIdx >= len(e.workspaces) {
		return nil
	}
	ws := e.workspaces[wsIdx]
	var errs []error
	if err := e.recompute(ws.Root); err != nil {
		if IsInvariant(err) {
			return err
		}
		errs = append(errs, err)
	}
	for _, leaf := range ws.Floating {
		if err := e.place(leaf); err != nil {
			if IsInvariant(err) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) recomputeAll() error {
	var errs []error
	for i := range e.workspaces {
		if err := e.recomputeWorkspace(i); err != nil {
			if IsInvariant(err) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
