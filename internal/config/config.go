package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Color is a 0xRRGGBB border pixel. ColorNone leaves the border color as the
// X server drew it.
type Color int64

// ColorNone disables border coloring.
const ColorNone Color = -1

// UnmarshalYAML accepts "#rrggbb", "0xrrggbb", a plain integer, or "none".
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a scalar", node.Line)
	}
	v, err := ParseColor(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = v
	return nil
}

// MarshalYAML renders colors in #rrggbb form.
func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) String() string {
	if c < 0 {
		return "none"
	}
	return fmt.Sprintf("#%06x", int64(c))
}

// ParseColor parses the textual color forms accepted in config files.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "-1":
		return ColorNone, nil
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"):
		s, base = s[2:], 16
	}
	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	if n < 0 || n > 0xFFFFFF {
		return 0, fmt.Errorf("color %q out of range", s)
	}
	return Color(n), nil
}

// Settings controls window geometry and decoration.
type Settings struct {
	MonitorPadding      int `yaml:"monitor_padding"`
	WindowPadding       int `yaml:"window_padding"`
	TiledBorderWidth    int `yaml:"tiled_border_width"`
	FloatingBorderWidth int `yaml:"floating_border_width"`

	ActiveTiledBorderColor      Color `yaml:"active_tiled_border_color"`
	InactiveTiledBorderColor    Color `yaml:"inactive_tiled_border_color"`
	ActiveFloatingBorderColor   Color `yaml:"active_floating_border_color"`
	InactiveFloatingBorderColor Color `yaml:"inactive_floating_border_color"`

	// OffscreenMultiplier scales the active monitor height when moving the
	// windows of hidden workspaces out of view. Must be greater than 1.
	OffscreenMultiplier float64 `yaml:"offscreen_multiplier"`
	// ResizeStep is the ratio change per tiled resize command.
	ResizeStep float64 `yaml:"resize_step"`
	// FloatingResizeStep is the monitor fraction per floating resize command.
	FloatingResizeStep float64 `yaml:"floating_resize_step"`
}

// Keybind maps a key sequence such as "Mod4-Return" to either an internal
// command or a shell command line.
type Keybind struct {
	Keys    string `yaml:"keys"`
	Command string `yaml:"command,omitempty"`
	Arg     string `yaml:"arg,omitempty"`
	Exec    string `yaml:"exec,omitempty"`
}

// Internal reports whether the binding targets the window manager itself.
func (k Keybind) Internal() bool {
	return k.Command != ""
}

// Config is the top-level configuration file.
type Config struct {
	Settings Settings  `yaml:"settings"`
	Keybinds []Keybind `yaml:"keybinds"`
	// Exports are set in the manager's environment before anything is
	// spawned.
	Exports map[string]string `yaml:"exports,omitempty"`
	// EnvFile is an optional dotenv file loaded before Exports.
	EnvFile string `yaml:"env_file,omitempty"`
	// Startup commands run once when the manager starts.
	Startup []string `yaml:"startup,omitempty"`
	// Shell runs Exec keybinds and Startup commands with "-c".
	Shell             string        `yaml:"shell"`
	LogLevel          string        `yaml:"log_level"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// DefaultSettings mirrors a plain, borderless-color setup.
func DefaultSettings() Settings {
	return Settings{
		MonitorPadding:              0,
		WindowPadding:               0,
		TiledBorderWidth:            3,
		FloatingBorderWidth:         3,
		ActiveTiledBorderColor:      ColorNone,
		InactiveTiledBorderColor:    ColorNone,
		ActiveFloatingBorderColor:   ColorNone,
		InactiveFloatingBorderColor: ColorNone,
		OffscreenMultiplier:         3,
		ResizeStep:                  0.01,
		FloatingResizeStep:          0.05,
	}
}

// DefaultKeybinds returns the stock bindings.
func DefaultKeybinds() []Keybind {
	binds := []Keybind{
		{Keys: "Mod4-m", Command: "exit"},
		{Keys: "Mod4-c", Command: "kill-active"},
		{Keys: "Mod4-f", Command: "toggle-fullscreen"},
		{Keys: "Mod4-x", Command: "toggle-floating"},
		{Keys: "Mod4-Left", Command: "resize", Arg: "left"},
		{Keys: "Mod4-Right", Command: "resize", Arg: "right"},
		{Keys: "Mod4-Up", Command: "resize", Arg: "up"},
		{Keys: "Mod4-Down", Command: "resize", Arg: "down"},
		{Keys: "Mod4-l", Command: "change-split-direction"},
		{Keys: "Mod4-k", Command: "swap-sides"},
		{Keys: "Mod4-q", Exec: "alacritty"},
		{Keys: "Mod4-space", Exec: "rofi -show drun"},
	}
	for i := 1; i <= 9; i++ {
		idx := strconv.Itoa(i - 1)
		binds = append(binds,
			Keybind{Keys: fmt.Sprintf("Mod4-%d", i), Command: "set-workspace", Arg: idx},
			Keybind{Keys: fmt.Sprintf("Mod4-Shift-%d", i), Command: "move", Arg: idx},
		)
	}
	return binds
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Settings: DefaultSettings(),
		Keybinds: DefaultKeybinds(),
		Exports: map[string]string{
			"XDG_CURRENT_DESKTOP": "Exert",
		},
		Shell:             "/bin/sh",
		LogLevel:          "info",
		ReconcileInterval: 5 * time.Second,
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks value ranges and keybind shape.
func (c *Config) Validate() error {
	s := c.Settings
	for _, f := range []struct {
		path  string
		value int
	}{
		{"settings.monitor_padding", s.MonitorPadding},
		{"settings.window_padding", s.WindowPadding},
		{"settings.tiled_border_width", s.TiledBorderWidth},
		{"settings.floating_border_width", s.FloatingBorderWidth},
	} {
		if f.value < 0 {
			return &ValidationError{Path: f.path, Err: fmt.Errorf("must be >= 0, got %d", f.value)}
		}
	}
	if s.OffscreenMultiplier <= 1 {
		return &ValidationError{
			Path: "settings.offscreen_multiplier",
			Err:  fmt.Errorf("must be > 1, got %g", s.OffscreenMultiplier),
		}
	}
	if s.ResizeStep <= 0 || s.ResizeStep > 0.5 {
		return &ValidationError{
			Path: "settings.resize_step",
			Err:  fmt.Errorf("must be in (0, 0.5], got %g", s.ResizeStep),
		}
	}
	if s.FloatingResizeStep <= 0 || s.FloatingResizeStep > 0.5 {
		return &ValidationError{
			Path: "settings.floating_resize_step",
			Err:  fmt.Errorf("must be in (0, 0.5], got %g", s.FloatingResizeStep),
		}
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("unknown level %q", c.LogLevel)}
	}
	if strings.TrimSpace(c.Shell) == "" {
		return &ValidationError{Path: "shell", Err: errors.New("must not be empty")}
	}
	if c.ReconcileInterval < 0 {
		return &ValidationError{Path: "reconcile_interval", Err: errors.New("must not be negative")}
	}

	seen := make(map[string]int, len(c.Keybinds))
	for i, kb := range c.Keybinds {
		path := fmt.Sprintf("keybinds[%d]", i)
		if strings.TrimSpace(kb.Keys) == "" {
			return &ValidationError{Path: path + ".keys", Err: errors.New("must not be empty")}
		}
		if (kb.Command == "") == (kb.Exec == "") {
			return &ValidationError{Path: path, Err: errors.New("exactly one of command or exec is required")}
		}
		if kb.Exec != "" && kb.Arg != "" {
			return &ValidationError{Path: path + ".arg", Err: errors.New("arg only applies to command bindings")}
		}
		if prev, dup := seen[kb.Keys]; dup {
			return &ValidationError{
				Path: path + ".keys",
				Err:  fmt.Errorf("%q already bound by keybinds[%d]", kb.Keys, prev),
			}
		}
		seen[kb.Keys] = i
	}
	return nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
