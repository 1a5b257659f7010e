package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Settings.TiledBorderWidth != 3 || cfg.Settings.FloatingBorderWidth != 3 {
		t.Fatalf("unexpected default border widths: %+v", cfg.Settings)
	}
	if cfg.Settings.ActiveTiledBorderColor != ColorNone {
		t.Fatalf("expected border colors disabled by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if len(res.Config.Keybinds) != len(DefaultKeybinds()) {
		t.Fatalf("expected default keybinds")
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Settings.ResizeStep != 0.01 {
		t.Fatalf("expected default resize step, got %g", res.Config.Settings.ResizeStep)
	}
}

func TestLoadFromPath_PartialSettingsKeepDefaults(t *testing.T) {
	path := writeConfig(t, `
settings:
  window_padding: 8
  active_tiled_border_color: "#ff8800"
reconcile_interval: 2s
exports:
  EDITOR: nvim
keybinds:
  - keys: Mod4-Return
    exec: xterm
  - keys: Mod4-h
    command: resize
    arg: left
`)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Settings.WindowPadding != 8 {
		t.Fatalf("expected window_padding 8, got %d", cfg.Settings.WindowPadding)
	}
	if cfg.Settings.TiledBorderWidth != 3 {
		t.Fatalf("expected default border width to survive, got %d", cfg.Settings.TiledBorderWidth)
	}
	if cfg.Settings.ActiveTiledBorderColor != 0xff8800 {
		t.Fatalf("expected color 0xff8800, got %v", cfg.Settings.ActiveTiledBorderColor)
	}
	if cfg.ReconcileInterval != 2*time.Second {
		t.Fatalf("expected 2s interval, got %v", cfg.ReconcileInterval)
	}
	if len(cfg.Keybinds) != 2 {
		t.Fatalf("expected file keybinds to replace defaults, got %d", len(cfg.Keybinds))
	}
	if cfg.Exports["EDITOR"] != "nvim" || cfg.Exports["XDG_CURRENT_DESKTOP"] != "Exert" {
		t.Fatalf("expected exports merged with defaults, got %v", cfg.Exports)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "gap_size: 4\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, `
settings:
  offscreen_multiplier: 0.5
`)

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "settings.offscreen_multiplier" {
		t.Fatalf("unexpected path %q", verr.Path)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("expected line 3, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), ":3:") {
		t.Fatalf("expected line in message, got %q", err.Error())
	}
}

func TestValidate_Keybinds(t *testing.T) {
	tests := []struct {
		name string
		kb   []Keybind
		path string
	}{
		{
			name: "missing keys",
			kb:   []Keybind{{Command: "exit"}},
			path: "keybinds[0].keys",
		},
		{
			name: "both command and exec",
			kb:   []Keybind{{Keys: "Mod4-a", Command: "exit", Exec: "xterm"}},
			path: "keybinds[0]",
		},
		{
			name: "neither command nor exec",
			kb:   []Keybind{{Keys: "Mod4-a"}},
			path: "keybinds[0]",
		},
		{
			name: "arg on exec",
			kb:   []Keybind{{Keys: "Mod4-a", Exec: "xterm", Arg: "x"}},
			path: "keybinds[0].arg",
		},
		{
			name: "duplicate keys",
			kb: []Keybind{
				{Keys: "Mod4-a", Command: "exit"},
				{Keys: "Mod4-a", Exec: "xterm"},
			},
			path: "keybinds[1].keys",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Keybinds = tt.kb
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]Color{
		"#00ff00":  0x00ff00,
		"0xFF0000": 0xff0000,
		"255":      255,
		"none":     ColorNone,
		"-1":       ColorNone,
	}
	for in, want := range tests {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseColor("#1000000"); err == nil {
		t.Fatalf("expected out-of-range color to fail")
	}
}

func TestApplyEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "wm.env")
	if err := os.WriteFile(envFile, []byte("EXERT_TEST_FROM_FILE=file\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("EXERT_TEST_FROM_FILE", "")
	os.Unsetenv("EXERT_TEST_FROM_FILE")
	t.Setenv("EXERT_TEST_BASE", "base")

	cfg := DefaultConfig()
	cfg.EnvFile = envFile
	cfg.Exports = map[string]string{"EXERT_TEST_EXPORT": "${EXERT_TEST_BASE}-x"}

	if err := cfg.ApplyEnvironment(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("EXERT_TEST_EXPORT") })

	if got := os.Getenv("EXERT_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("expected env file value, got %q", got)
	}
	if got := os.Getenv("EXERT_TEST_EXPORT"); got != "base-x" {
		t.Fatalf("expected expanded export, got %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Settings.ActiveFloatingBorderColor = 0x123456

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Settings.ActiveFloatingBorderColor != 0x123456 {
		t.Fatalf("color lost in round trip: %v", res.Config.Settings.ActiveFloatingBorderColor)
	}
}
