package daemon

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tiling"
)

// WindowLister returns the top-level windows currently on screen.
type WindowLister func() ([]platform.WindowID, error)

// WMConfig wires a WM to the rest of the daemon.
type WMConfig struct {
	Backend platform.Backend
	Windows WindowLister
	// Reload re-reads the configuration and applies it.
	Reload func() error
	// Quit stops the event loop.
	Quit   func()
	Logger *slog.Logger
}

// WM adapts a tiling engine to the event loop and the IPC server. Event
// handlers log failures instead of returning them, and corrupted layout
// state triggers a rebuild from the windows still on screen.
type WM struct {
	*tiling.Engine

	backend platform.Backend
	windows WindowLister
	reload  func() error
	quit    func()
	logger  *slog.Logger

	recovering sync.Mutex
}

var _ platform.EventSink = (*WM)(nil)

// NewWM wraps engine.
func NewWM(engine *tiling.Engine, cfg WMConfig) *WM {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WM{
		Engine:  engine,
		backend: cfg.Backend,
		windows: cfg.Windows,
		reload:  cfg.Reload,
		quit:    cfg.Quit,
		logger:  logger,
	}
}

func (w *WM) WindowMapped(id platform.WindowID) {
	w.handle("mapped", id, w.Engine.WindowMapped(id))
}

func (w *WM) WindowUnmapped(id platform.WindowID) {
	w.handle("unmapped", id, w.Engine.WindowUnmapped(id))
}

func (w *WM) WindowDestroyed(id platform.WindowID) {
	w.handle("destroyed", id, w.Engine.WindowDestroyed(id))
}

func (w *WM) PointerEntered(id platform.WindowID) {
	w.handle("entered", id, w.Engine.PointerEntered(id))
}

// Dispatch runs cmd. An exit request stops the event loop and is not an
// error.
func (w *WM) Dispatch(cmd tiling.Command) error {
	err := w.Engine.Dispatch(cmd)
	if errors.Is(err, tiling.ErrExit) {
		w.logger.Info("exit requested")
		if w.quit != nil {
			w.quit()
		}
		return nil
	}
	if tiling.IsInvariant(err) {
		w.logger.Error("layout corrupted by command, rebuilding", "command", cmd.Name(), "error", err)
		if rerr := w.Recover(); rerr != nil {
			return errors.Join(err, rerr)
		}
	}
	return err
}

// Reload re-reads the configuration.
func (w *WM) Reload() error {
	if w.reload == nil {
		return errors.New("reload not supported")
	}
	return w.reload()
}

// Recover discards the layout and re-adopts every window on screen.
func (w *WM) Recover() error {
	if !w.recovering.TryLock() {
		return nil
	}
	defer w.recovering.Unlock()

	displays, err := w.backend.Displays()
	if err != nil {
		return &tiling.BackendError{Op: "displays", Err: err}
	}
	w.Engine.Reset(displays)

	if w.windows == nil {
		return nil
	}
	ids, err := w.windows()
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if err := w.Engine.WindowMapped(id); err != nil {
			errs = append(errs, err)
		}
	}
	w.logger.Info("layout rebuilt", "windows", len(ids), "errors", len(errs))
	return errors.Join(errs...)
}

func (w *WM) handle(event string, id platform.WindowID, err error) {
	if err == nil {
		return
	}
	if !tiling.IsInvariant(err) {
		w.logger.Warn("event failed", "event", event, "window", uint32(id), "error", err)
		return
	}
	w.logger.Error("layout corrupted, rebuilding", "event", event, "window", uint32(id), "error", err)
	if rerr := w.Recover(); rerr != nil {
		w.logger.Error("rebuild failed", "error", rerr)
	}
}
