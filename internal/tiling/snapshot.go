package tiling

import (
	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tree"
)

// Node is a container of a workspace tree as reported to clients.
type Node struct {
	Kind      string            `json:"kind"`
	Direction string            `json:"direction,omitempty"`
	Ratio     float64           `json:"ratio,omitempty"`
	Window    platform.WindowID `json:"window,omitempty"`
	Floating  bool              `json:"floating,omitempty"`
	Focused   bool              `json:"focused,omitempty"`
	Rect      *Rect             `json:"rect,omitempty"`
	Children  []Node            `json:"children,omitempty"`
}

// WorkspaceSnapshot is one workspace's layout.
type WorkspaceSnapshot struct {
	Index      int               `json:"index"`
	Monitor    string            `json:"monitor,omitempty"`
	Root       *Node             `json:"root,omitempty"`
	Floating   []Node            `json:"floating,omitempty"`
	Fullscreen platform.WindowID `json:"fullscreen,omitempty"`
}

// Snapshot is a read-only copy of the whole session layout.
type Snapshot struct {
	Session    string              `json:"session"`
	Monitors   []Monitor           `json:"monitors"`
	Workspaces []WorkspaceSnapshot `json:"workspaces"`
}

// Status summarises the session.
type Status struct {
	Session    string            `json:"session"`
	Monitors   int               `json:"monitors"`
	Workspaces int               `json:"workspaces"`
	Windows    int               `json:"windows"`
	Focused    platform.WindowID `json:"focused,omitempty"`
}

// Snapshot copies the layout. Rectangles are reported for windows on
// displayed workspaces only.
func (e *Engine) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Session:    e.session.String(),
		Monitors:   make([]Monitor, len(e.monitors)),
		Workspaces: make([]WorkspaceSnapshot, 0, len(e.workspaces)),
	}
	for i, m := range e.monitors {
		snap.Monitors[i] = *m
	}
	for i, ws := range e.workspaces {
		out := WorkspaceSnapshot{Index: i}
		mon, shown := e.monitorFor(i)
		if shown {
			out.Monitor = e.monitors[mon].Name
		}
		if ws.Root != tree.None {
			root, err := e.node(ws.Root, shown)
			if err != nil {
				return Snapshot{}, e.observe(err)
			}
			out.Root = &root
		}
		for _, leaf := range ws.Floating {
			n, err := e.node(leaf, shown)
			if err != nil {
				return Snapshot{}, e.observe(err)
			}
			out.Floating = append(out.Floating, n)
		}
		if ws.Fullscreen != tree.None {
			w, err := e.arena.Window(ws.Fullscreen)
			if err != nil {
				return Snapshot{}, e.observe(err)
			}
			out.Fullscreen = platform.WindowID(w.Handle)
		}
		snap.Workspaces = append(snap.Workspaces, out)
	}
	return snap, nil
}

func (e *Engine) node(id tree.ID, withRect bool) (Node, error) {
	if e.arena.IsLeaf(id) {
		w, err := e.arena.Window(id)
		if err != nil {
			return Node{}, err
		}
		n := Node{
			Kind:     "leaf",
			Window:   platform.WindowID(w.Handle),
			Floating: w.Floating,
			Focused:  id == e.focus,
		}
		if withRect {
			p, err := e.computeRect(id)
			if err != nil {
				return Node{}, err
			}
			n.Rect = &p.rect
		}
		return n, nil
	}

	s, err := e.arena.Split(id)
	if err != nil {
		return Node{}, err
	}
	left, err := e.node(s.Left, withRect)
	if err != nil {
		return Node{}, err
	}
	right, err := e.node(s.Right, withRect)
	if err != nil {
		return Node{}, err
	}
	return Node{
		Kind:      "split",
		Direction: s.Direction.String(),
		Ratio:     s.Ratio,
		Children:  []Node{left, right},
	}, nil
}

// Status reports session counters.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Session:    e.session.String(),
		Monitors:   len(e.monitors),
		Workspaces: len(e.workspaces),
	}
	ids, err := e.managed()
	if err != nil {
		e.observe(err)
	}
	st.Windows = len(ids)
	if e.focus != tree.None {
		if w, err := e.arena.Window(e.focus); err == nil {
			st.Focused = platform.WindowID(w.Handle)
		}
	}
	return st
}
