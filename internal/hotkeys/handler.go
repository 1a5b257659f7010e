package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/exert/internal/config"
	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tiling"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Invoker runs decoded window manager commands.
type Invoker interface {
	Dispatch(cmd tiling.Command) error
}

// Spawner starts external programs without waiting for them.
type Spawner interface {
	Spawn(command string) error
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Binding is a key sequence and the action it triggers.
type Binding struct {
	Keys string
	Run  func()
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	mu    sync.Mutex
	bound []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, logger *slog.Logger) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   root,
		logger: logger,
	}
}

// Bindings decodes keybinds into actions. Command names are checked here so
// a typo is reported when the config loads rather than on key press.
func Bindings(kbs []config.Keybind, inv Invoker, sp Spawner, logger *slog.Logger) ([]Binding, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]Binding, 0, len(kbs))
	for i, kb := range kbs {
		kb := kb
		if kb.Internal() {
			cmd, err := tiling.ParseCommand(kb.Command, kb.Arg)
			if err != nil {
				return nil, fmt.Errorf("keybind %d (%s): %w", i, kb.Keys, err)
			}
			out = append(out, Binding{Keys: kb.Keys, Run: func() {
				if err := inv.Dispatch(cmd); err != nil {
					logger.Error("command failed", "keys", kb.Keys, "command", cmd.Name(), "error", err)
				}
			}})
			continue
		}
		out = append(out, Binding{Keys: kb.Keys, Run: func() {
			logger.Debug("spawning", "keys", kb.Keys, "exec", kb.Exec)
			if err := sp.Spawn(kb.Exec); err != nil {
				logger.Error("spawn failed", "keys", kb.Keys, "exec", kb.Exec, "error", err)
			}
		}})
	}
	return out, nil
}

// Bind grabs every binding on the root window, replacing any earlier set.
func (h *Handler) Bind(bindings []Binding) error {
	h.Unbind()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range bindings {
		if err := h.RegisterFunc(b.Keys, b.Run); err != nil {
			return fmt.Errorf("failed to register hotkey %q: %w", b.Keys, err)
		}
		h.bound = append(h.bound, b.Keys)
	}
	h.logger.Info("hotkeys bound", "count", len(h.bound))
	return nil
}

// Unbind releases every grab made by Bind.
func (h *Handler) Unbind() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.bound) == 0 || h.xu == nil {
		return
	}
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys need an X11 backend")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	if xu == nil {
		return
	}
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
