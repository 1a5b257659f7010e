package tiling

import (
	"errors"
	"fmt"

	"github.com/1broseidon/exert/internal/tree"
)

// freeWorkspace returns the lowest workspace index no monitor displays,
// creating a workspace when every existing one is claimed.
func (e *Engine) freeWorkspace() int {
	for i := range e.workspaces {
		if _, claimed := e.monitorFor(i); !claimed {
			return i
		}
	}
	e.workspace(len(e.workspaces))
	return len(e.workspaces) - 1
}

func (e *Engine) assignFreeWorkspace(mon int) int {
	ws := e.freeWorkspace()
	e.monitors[mon].Workspace = ws
	return ws
}

// AssignFreeWorkspace binds the lowest unclaimed workspace to a monitor and
// returns its index.
func (e *Engine) AssignFreeWorkspace(mon int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if mon < 0 || mon >= len(e.monitors) {
		return NoWorkspace, fmt.Errorf("monitor %d out of range", mon)
	}
	ws := e.freeWorkspace()
	return ws, e.observe(e.setWorkspaceToMonitor(ws, mon))
}

// SetWorkspaceToMonitor shows workspace ws on monitor mon. A workspace that
// is already visible elsewhere trades places with the monitor's current one;
// otherwise the current one is parked off screen.
func (e *Engine) SetWorkspaceToMonitor(ws, mon int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.observe(e.setWorkspaceToMonitor(ws, mon))
}

func (e *Engine) setWorkspaceToMonitor(ws, mon int) error {
	if mon < 0 || mon >= len(e.monitors) {
		return fmt.Errorf("monitor %d out of range", mon)
	}
	if ws < 0 {
		return fmt.Errorf("workspace %d out of range", ws)
	}
	e.workspace(ws)

	target := e.monitors[mon]
	prev := target.Workspace
	if prev == ws {
		return nil
	}

	if other, ok := e.monitorFor(ws); ok {
		e.monitors[other].Workspace = prev
		target.Workspace = ws
		e.logger.Debug("workspaces swapped", "workspace", ws, "monitor", target.Name, "other", e.monitors[other].Name)
		if err := e.recomputeWorkspace(prev); err != nil && IsInvariant(err) {
			return err
		} else if err != nil {
			return errors.Join(err, e.recomputeWorkspace(ws))
		}
		return e.recomputeWorkspace(ws)
	}

	target.Workspace = ws
	if prev != NoWorkspace {
		if e.focus != tree.None {
			if fws, err := e.workspaceOf(e.focus); err != nil {
				return err
			} else if fws == prev {
				e.focus = tree.None
			}
		}
	}
	e.logger.Debug("workspace shown", "workspace", ws, "monitor", target.Name, "parked", prev)

	// Parking reads each window's current rectangle, so it runs first.
	parkErr := e.recomputeWorkspace(prev)
	if parkErr != nil && IsInvariant(parkErr) {
		return parkErr
	}
	return errors.Join(parkErr, e.recomputeWorkspace(ws))
}

// setFocusedMonitorToWorkspace shows ws on the monitor under the cursor.
func (e *Engine) setFocusedMonitorToWorkspace(ws int) error {
	mon, err := e.activeMonitor()
	if err != nil {
		return err
	}
	return e.setWorkspaceToMonitor(ws, mon)
}

// Monitors returns a copy of the monitor table.
func (e *Engine) Monitors() []Monitor {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Monitor, len(e.monitors))
	for i, m := range e.monitors {
		out[i] = *m
	}
	return out
}
