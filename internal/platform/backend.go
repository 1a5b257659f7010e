package platform

//go:generate mockgen -source=backend.go -destination=platformmock/backend.go -package=platformmock Backend

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Border is the frame drawn around a window. A negative Color leaves the
// current border color unchanged.
type Border struct {
	Width int
	Color int64
}

// WindowClass is how a window asks to be managed.
type WindowClass int

const (
	ClassNormal WindowClass = iota
	ClassDialog
	ClassUtility
	ClassPopup
	// ClassUnmanaged windows are shown but never placed by the layout.
	ClassUnmanaged
)

func (c WindowClass) String() string {
	switch c {
	case ClassNormal:
		return "normal"
	case ClassDialog:
		return "dialog"
	case ClassUtility:
		return "utility"
	case ClassPopup:
		return "popup"
	case ClassUnmanaged:
		return "unmanaged"
	default:
		return "unknown"
	}
}

// Floats reports whether windows of this class bypass tiling.
func (c WindowClass) Floats() bool {
	return c == ClassDialog || c == ClassUtility || c == ClassPopup
}

// Backend abstracts the window-system operations the layout engine issues.
type Backend interface {
	Displays() ([]Display, error)
	WindowRect(windowID WindowID) (Rect, error)
	Configure(windowID WindowID, bounds Rect, border Border) error
	Focus(windowID WindowID) error
	Raise(windowID WindowID) error
	// Close asks a window to close itself. It returns false when the client
	// does not support graceful close and nothing was sent.
	Close(windowID WindowID) (bool, error)
	Kill(windowID WindowID) error
	CursorPosition() (x, y int, err error)
	Classify(windowID WindowID) (WindowClass, error)
}

// EventSink receives window lifecycle events from a backend's event loop.
type EventSink interface {
	WindowMapped(windowID WindowID)
	WindowUnmapped(windowID WindowID)
	WindowDestroyed(windowID WindowID)
	PointerEntered(windowID WindowID)
	Manages(windowID WindowID) bool
}
