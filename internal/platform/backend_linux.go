//go:build linux

package platform

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/exert/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Announce registers as the window manager under name.
func (b *LinuxBackend) Announce(name string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Announce(name)
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops a running EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Manage routes X11 window events to sink and adopts windows that were
// already on screen.
func (b *LinuxBackend) Manage(sink EventSink, logger *slog.Logger) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}

	handlers := x11.Handlers{
		Mapped: func(w xproto.Window) {
			sink.WindowMapped(WindowID(w))
		},
		Unmapped: func(w xproto.Window) {
			sink.WindowUnmapped(WindowID(w))
		},
		Destroyed: func(w xproto.Window) {
			sink.WindowDestroyed(WindowID(w))
		},
		Entered: func(w xproto.Window) {
			sink.PointerEntered(WindowID(w))
		},
		Managed: func(w xproto.Window) bool {
			return sink.Manages(WindowID(w))
		},
		Error: func(op string, w xproto.Window, err error) {
			logger.Warn("x11 event failed", "op", op, "window", uint32(w), "error", err)
		},
	}
	conn.Manage(handlers)

	existing, err := conn.TopLevel()
	if err != nil {
		return err
	}
	for _, w := range existing {
		conn.Adopt(w, handlers)
	}
	return nil
}

// Windows lists the top-level windows currently on screen.
func (b *LinuxBackend) Windows() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	wins, err := conn.TopLevel()
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, len(wins))
	for i, w := range wins {
		out[i] = WindowID(w)
	}
	return out, nil
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	return displays, nil
}

// WindowRect returns the current outer rectangle of a window.
func (b *LinuxBackend) WindowRect(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	x, y, w, h, err := conn.Geometry(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

// Configure moves, resizes and borders a window.
func (b *LinuxBackend) Configure(windowID WindowID, bounds Rect, border Border) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Configure(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
		border.Width,
		border.Color,
	)
}

// Focus gives a window input focus.
func (b *LinuxBackend) Focus(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Focus(xproto.Window(windowID))
}

// Raise stacks a window above its siblings.
func (b *LinuxBackend) Raise(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Raise(xproto.Window(windowID))
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(windowID WindowID) (bool, error) {
	conn, err := b.connection()
	if err != nil {
		return false, err
	}
	if !conn.SupportsDelete(xproto.Window(windowID)) {
		return false, nil
	}
	if err := conn.RequestClose(xproto.Window(windowID)); err != nil {
		return false, err
	}
	return true, nil
}

// Kill forcibly disconnects the window's client.
func (b *LinuxBackend) Kill(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Kill(xproto.Window(windowID))
}

// CursorPosition returns the pointer position in root coordinates.
func (b *LinuxBackend) CursorPosition() (int, int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, 0, err
	}
	return conn.PointerPosition()
}

// Classify maps the X11 window type onto a WindowClass.
func (b *LinuxBackend) Classify(windowID WindowID) (WindowClass, error) {
	conn, err := b.connection()
	if err != nil {
		return ClassNormal, err
	}
	switch conn.Classify(xproto.Window(windowID)) {
	case x11.TypeDialog:
		return ClassDialog, nil
	case x11.TypeUtility:
		return ClassUtility, nil
	case x11.TypePopup:
		return ClassPopup, nil
	case x11.TypeUnmanaged:
		return ClassUnmanaged, nil
	default:
		return ClassNormal, nil
	}
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
	}
}
