package x11

import (
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Handlers receives the window lifecycle events a tiling manager reacts to.
// All callbacks run on the event loop goroutine.
type Handlers struct {
	Mapped    func(xproto.Window)
	Unmapped  func(xproto.Window)
	Destroyed func(xproto.Window)
	Entered   func(xproto.Window)
	// Managed reports whether geometry for a window is owned by the
	// manager. Configure requests from other windows are honoured as sent.
	Managed func(xproto.Window) bool
	// Error reports failures in event plumbing itself.
	Error func(op string, win xproto.Window, err error)
}

// Manage connects h to the root window. Announce must have been called so
// that map and configure requests are redirected to this client.
func (c *Connection) Manage(h Handlers) {
	xevent.MapRequestFun(func(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		c.watch(ev.Window, h)
		if err := c.Map(ev.Window); err != nil {
			c.report(h, "map", ev.Window, err)
			return
		}
		h.Mapped(ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		h.Unmapped(ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		xevent.Detach(xu, ev.Window)
		c.watched.remove(ev.Window)
		h.Destroyed(ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.ConfigureRequestFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
		if h.Managed != nil && h.Managed(ev.Window) {
			return
		}
		c.passConfigure(h, ev)
	}).Connect(c.XUtil, c.Root)
}

// Adopt registers an already-mapped window as if it had been requested.
func (c *Connection) Adopt(win xproto.Window, h Handlers) {
	c.watch(win, h)
	h.Mapped(win)
}

// watch connects the enter callback for win. A window that unmaps and maps
// again keeps the callback from its first map.
func (c *Connection) watch(win xproto.Window, h Handlers) {
	if !c.watched.add(win) {
		return
	}
	w := xwindow.New(c.XUtil, win)
	if err := w.Listen(xproto.EventMaskEnterWindow); err != nil {
		c.watched.remove(win)
		c.report(h, "listen", win, err)
		return
	}
	xevent.EnterNotifyFun(func(xu *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		if ev.Mode != xproto.NotifyModeNormal {
			return
		}
		h.Entered(ev.Event)
	}).Connect(c.XUtil, win)
}

func (c *Connection) passConfigure(h Handlers, ev xevent.ConfigureRequestEvent) {
	var values []uint32
	mask := ev.ValueMask
	if mask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(int32(ev.X)))
	}
	if mask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(int32(ev.Y)))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(ev.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(ev.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(ev.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(ev.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(ev.StackMode))
	}
	if err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), ev.Window, mask, values).Check(); err != nil {
		c.report(h, "configure request", ev.Window, err)
	}
}

func (c *Connection) report(h Handlers, op string, win xproto.Window, err error) {
	if h.Error != nil {
		h.Error(op, win, err)
	}
}

// windowSet tracks the windows with callbacks attached.
type windowSet struct {
	mu   sync.Mutex
	wins map[xproto.Window]struct{}
}

// add records win and reports whether it was new.
func (s *windowSet) add(win xproto.Window) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wins[win]; ok {
		return false
	}
	if s.wins == nil {
		s.wins = make(map[xproto.Window]struct{})
	}
	s.wins[win] = struct{}{}
	return true
}

func (s *windowSet) remove(win xproto.Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wins, win)
}

func (s *windowSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wins)
}
