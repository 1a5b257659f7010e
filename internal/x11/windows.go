package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowType is the coarse class of a top-level window.
type WindowType int

const (
	TypeNormal WindowType = iota
	TypeDialog
	TypeUtility
	TypePopup
	// TypeUnmanaged covers docks, desktops and notifications; they are
	// mapped but never tiled.
	TypeUnmanaged
)

// Geometry returns a window's client rectangle in root coordinates.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("translate coordinates: %w", err)
	}

	// TranslateCoordinates reports the client origin; the configured
	// position is the outer corner of the border.
	bw := int(geom.BorderWidth)
	return int(translate.DstX) - bw, int(translate.DstY) - bw, int(geom.Width), int(geom.Height), nil
}

// Configure places a window and sets its border. A negative color leaves
// the border pixel unchanged.
func (c *Connection) Configure(windowID xproto.Window, x, y, width, height, border int, color int64) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight |
		xproto.ConfigWindowBorderWidth)
	values := []uint32{
		uint32(int32(x)),
		uint32(int32(y)),
		uint32(width),
		uint32(height),
		uint32(border),
	}
	if err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check(); err != nil {
		return fmt.Errorf("configure window %d: %w", windowID, err)
	}

	if color < 0 {
		return nil
	}
	err := xproto.ChangeWindowAttributesChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.CwBorderPixel,
		[]uint32{uint32(color)},
	).Check()
	if err != nil {
		return fmt.Errorf("set border color on %d: %w", windowID, err)
	}
	return nil
}

// Map makes a window visible.
func (c *Connection) Map(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// Focus gives a window keyboard focus and publishes it as _NET_ACTIVE_WINDOW.
func (c *Connection) Focus(windowID xproto.Window) error {
	err := xproto.SetInputFocusChecked(
		c.XUtil.Conn(),
		xproto.InputFocusPointerRoot,
		windowID,
		xproto.TimeCurrentTime,
	).Check()
	if err != nil {
		return fmt.Errorf("set input focus: %w", err)
	}
	return ewmh.ActiveWindowSet(c.XUtil, windowID)
}

// Raise moves a window to the top of the stacking order.
func (c *Connection) Raise(windowID xproto.Window) error {
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}

// SupportsDelete reports whether the client advertises WM_DELETE_WINDOW.
func (c *Connection) SupportsDelete(windowID xproto.Window) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == "WM_DELETE_WINDOW" {
			return true
		}
	}
	return false
}

// RequestClose sends WM_DELETE_WINDOW to a window.
func (c *Connection) RequestClose(windowID xproto.Window) error {
	deleteReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_DELETE_WINDOW")), "WM_DELETE_WINDOW").Reply()
	if err != nil {
		return err
	}
	protocolsReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteReply.Atom), uint32(xproto.TimeCurrentTime), 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// Kill disconnects the client owning a window.
func (c *Connection) Kill(windowID xproto.Window) error {
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(windowID)).Check()
}

// Classify reports how a window should be managed based on
// _NET_WM_WINDOW_TYPE, falling back to WM_TRANSIENT_FOR.
func (c *Connection) Classify(windowID xproto.Window) WindowType {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err == nil {
		for _, t := range types {
			switch t {
			case "_NET_WM_WINDOW_TYPE_NORMAL":
				return TypeNormal
			case "_NET_WM_WINDOW_TYPE_DIALOG":
				return TypeDialog
			case "_NET_WM_WINDOW_TYPE_UTILITY", "_NET_WM_WINDOW_TYPE_TOOLBAR", "_NET_WM_WINDOW_TYPE_MENU":
				return TypeUtility
			case "_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_POPUP_MENU",
				"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU", "_NET_WM_WINDOW_TYPE_TOOLTIP":
				return TypePopup
			case "_NET_WM_WINDOW_TYPE_DOCK", "_NET_WM_WINDOW_TYPE_DESKTOP",
				"_NET_WM_WINDOW_TYPE_NOTIFICATION":
				return TypeUnmanaged
			}
		}
	}

	if parent, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil && parent != 0 {
		return TypeDialog
	}
	return TypeNormal
}

// TopLevel returns the viewable, non override-redirect children of the root.
// These are the windows a freshly started manager adopts.
func (c *Connection) TopLevel() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree: %w", err)
	}

	var out []xproto.Window
	for _, w := range tree.Children {
		if c.check != nil && w == c.check.Id {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), w).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}
