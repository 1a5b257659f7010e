package tiling

import (
	"errors"
	"fmt"
	"testing"

	"github.com/1broseidon/exert/internal/config"
	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

// fakeBackend records what the engine asks of the display server.
type fakeBackend struct {
	displays []platform.Display
	rects    map[platform.WindowID]platform.Rect
	borders  map[platform.WindowID]platform.Border
	classes  map[platform.WindowID]platform.WindowClass
	cursorX  int
	cursorY  int
	graceful bool
	focused  platform.WindowID
	raised   []platform.WindowID
	closed   []platform.WindowID
	killed   []platform.WindowID
}

func newFakeBackend(displays ...platform.Rect) *fakeBackend {
	fb := &fakeBackend{
		rects:    make(map[platform.WindowID]platform.Rect),
		borders:  make(map[platform.WindowID]platform.Border),
		classes:  make(map[platform.WindowID]platform.WindowClass),
		graceful: true,
	}
	for i, r := range displays {
		fb.displays = append(fb.displays, platform.Display{ID: i, Name: fmt.Sprintf("OUT-%d", i), Bounds: r})
	}
	return fb
}

func (f *fakeBackend) Displays() ([]platform.Display, error) { return f.displays, nil }

func (f *fakeBackend) WindowRect(id platform.WindowID) (platform.Rect, error) {
	r, ok := f.rects[id]
	if !ok {
		return platform.Rect{}, fmt.Errorf("window %d has no geometry", id)
	}
	return r, nil
}

func (f *fakeBackend) Configure(id platform.WindowID, r platform.Rect, b platform.Border) error {
	f.rects[id] = r
	f.borders[id] = b
	return nil
}

func (f *fakeBackend) Focus(id platform.WindowID) error {
	f.focused = id
	return nil
}

func (f *fakeBackend) Raise(id platform.WindowID) error {
	f.raised = append(f.raised, id)
	return nil
}

func (f *fakeBackend) Close(id platform.WindowID) (bool, error) {
	if !f.graceful {
		return false, nil
	}
	f.closed = append(f.closed, id)
	return true, nil
}

func (f *fakeBackend) Kill(id platform.WindowID) error {
	f.killed = append(f.killed, id)
	return nil
}

func (f *fakeBackend) CursorPosition() (int, int, error) { return f.cursorX, f.cursorY, nil }

func (f *fakeBackend) Classify(id platform.WindowID) (platform.WindowClass, error) {
	return f.classes[id], nil
}

func (f *fakeBackend) at(x, y int) {
	f.cursorX, f.cursorY = x, y
}

var fullHD = platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func bare() config.Settings {
	s := config.DefaultSettings()
	s.TiledBorderWidth = 0
	s.FloatingBorderWidth = 0
	return s
}

func newTestEngine(t *testing.T, settings config.Settings, displays ...platform.Rect) (*Engine, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend(displays...)
	e := NewEngine(fb, settings, nil, nil)
	require.NoError(t, e.Start())
	return e, fb
}

func managed(t *testing.T, e *Engine) []platform.WindowID {
	t.Helper()
	ids, err := e.Managed()
	require.NoError(t, err)
	return ids
}

func rect(x, y, w, h int) platform.Rect {
	return platform.Rect{X: x, Y: y, Width: w, Height: h}
}

func TestScenario_TwoWindowsResizeAndUnmap(t *testing.T) {
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD)
	const a, b platform.WindowID = 1, 2

	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(a))
	assert.Equal(t, rect(0, 0, 1914, 1074), fb.rects[a])
	assert.Equal(t, 3, fb.borders[a].Width)

	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(b))
	assert.Equal(t, rect(0, 0, 954, 1074), fb.rects[a])
	assert.Equal(t, rect(960, 0, 954, 1074), fb.rects[b])

	snap, err := e.Snapshot()
	require.NoError(t, err)
	root := snap.Workspaces[0].Root
	require.NotNil(t, root)
	assert.Equal(t, "split", root.Kind)
	assert.Equal(t, "vertical", root.Direction)
	assert.Equal(t, 0.5, root.Ratio)

	require.NoError(t, e.PointerEntered(a))
	assert.Equal(t, a, fb.focused)
	for i := 0; i < 3; i++ {
		require.NoError(t, e.CommandInvoked("resize", "right"))
	}
	snap, err = e.Snapshot()
	require.NoError(t, err)
	assert.InDelta(t, 0.53, snap.Workspaces[0].Root.Ratio, 1e-9)
	assert.Equal(t, rect(0, 0, 1011, 1074), fb.rects[a])
	assert.Equal(t, rect(1017, 0, 897, 1074), fb.rects[b])

	require.NoError(t, e.WindowUnmapped(a))
	assert.Equal(t, rect(0, 0, 1914, 1074), fb.rects[b])
	snap, err = e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "leaf", snap.Workspaces[0].Root.Kind)
	assert.Equal(t, b, snap.Workspaces[0].Root.Window)
	assert.Equal(t, platform.WindowID(0), e.Status().Focused)
}

func TestGeometry_LeavesTileMonitor(t *testing.T) {
	e, fb := newTestEngine(t, bare(), fullHD)
	cursors := [][2]int{{10, 10}, {1800, 500}, {900, 1000}, {300, 600}, {1500, 100}, {960, 540}, {50, 1070}, {1900, 900}}
	for i, c := range cursors {
		fb.at(c[0], c[1])
		require.NoError(t, e.WindowMapped(platform.WindowID(i+1)))
	}

	area := 0
	var got []platform.Rect
	for i := range cursors {
		r := fb.rects[platform.WindowID(i+1)]
		area += r.Width * r.Height
		got = append(got, r)
	}
	assert.Equal(t, 1920*1080, area)
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			assert.False(t, rectFromPlatform(got[i]).Intersects(rectFromPlatform(got[j])), "windows %d and %d overlap", i+1, j+1)
		}
	}
}

func TestGeometry_Padding(t *testing.T) {
	s := bare()
	s.MonitorPadding = 10
	s.WindowPadding = 8
	e, fb := newTestEngine(t, s, fullHD)

	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))
	assert.Equal(t, rect(14, 14, 1892, 1052), fb.rects[1])

	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(2))
	// Interior 1900 wide splits into 950 + 950, then 4px inset each.
	assert.Equal(t, rect(14, 14, 942, 1052), fb.rects[1])
	assert.Equal(t, rect(964, 14, 942, 1052), fb.rects[2])
}

func TestInsertRemove_RestoresRectangle(t *testing.T) {
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD)
	fb.at(100, 100)
	require.NoError(t, e.WindowMapped(1))
	require.NoError(t, e.PointerEntered(1))
	before := fb.rects[1]

	fb.at(960, 1000)
	require.NoError(t, e.WindowMapped(2))
	assert.NotEqual(t, before, fb.rects[1])

	require.NoError(t, e.WindowDestroyed(2))
	assert.Equal(t, before, fb.rects[1])
	assert.Equal(t, []platform.WindowID{1}, managed(t, e))
}

func TestInsert_FocusedLeafBeatsCursor(t *testing.T) {
	e, fb := newTestEngine(t, bare(), fullHD)
	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))
	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(2))
	require.NoError(t, e.PointerEntered(1))

	// The cursor is over window 2, but window 1 holds focus.
	// Inside window 1's rectangle that point falls in the bottom quarter.
	fb.at(1500, 1070)
	require.NoError(t, e.WindowMapped(3))
	assert.Equal(t, rect(0, 0, 960, 540), fb.rects[1])
	assert.Equal(t, rect(0, 540, 960, 540), fb.rects[3])
	assert.Equal(t, rect(960, 0, 960, 1080), fb.rects[2])
}

func TestOffscreenParking(t *testing.T) {
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD)
	fb.at(100, 100)
	require.NoError(t, e.WindowMapped(1))
	shown := fb.rects[1]

	require.NoError(t, e.CommandInvoked("set-workspace", "1"))
	parked := fb.rects[1]
	assert.GreaterOrEqual(t, parked.Y-shown.Y, 3*1080)
	assert.Equal(t, shown.Width, parked.Width)
	assert.False(t, rectFromPlatform(parked).Intersects(rectFromPlatform(fullHD)))

	// Laying out a parked window again leaves it where it is.
	require.NoError(t, e.UpdateSettings(config.DefaultSettings()))
	assert.Equal(t, parked, fb.rects[1])

	require.NoError(t, e.CommandInvoked("set-workspace", "0"))
	assert.Equal(t, shown, fb.rects[1])
}

func TestOffscreenParking_Floating(t *testing.T) {
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD)
	fb.at(100, 100)
	require.NoError(t, e.WindowMapped(1))
	fb.classes[2] = platform.ClassDialog
	require.NoError(t, e.WindowMapped(2))
	shown := fb.rects[2]
	assert.Equal(t, rect(480, 270, 954, 534), shown)

	require.NoError(t, e.CommandInvoked("set-workspace", "1"))
	assert.Equal(t, rect(480, 270+3*1080, 954, 534), fb.rects[2])

	require.NoError(t, e.CommandInvoked("set-workspace", "0"))
	assert.Equal(t, shown, fb.rects[2])
	assert.True(t, e.Manages(2))
}

func TestFullscreen_ToggleTwiceRestores(t *testing.T) {
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD)
	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))
	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(2))
	require.NoError(t, e.PointerEntered(1))
	before := fb.rects[1]

	require.NoError(t, e.Dispatch(ToggleFullscreen{}))
	assert.Equal(t, rect(0, 0, 1914, 1074), fb.rects[1])
	assert.Contains(t, fb.raised, platform.WindowID(1))

	require.NoError(t, e.Dispatch(ToggleFullscreen{}))
	assert.Equal(t, before, fb.rects[1])
}

func TestFullscreen_ClearedWhenWindowCloses(t *testing.T) {
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD)
	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))
	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(2))
	require.NoError(t, e.PointerEntered(2))
	require.NoError(t, e.Dispatch(ToggleFullscreen{}))

	require.NoError(t, e.WindowDestroyed(2))
	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, snap.Workspaces[0].Fullscreen)

	// Focus went with the window, so this is a no-op rather than a
	// dangling reference.
	require.NoError(t, e.Dispatch(ToggleFullscreen{}))
	assert.Equal(t, rect(0, 0, 1914, 1074), fb.rects[1])
}

func TestWorkspaceSwapBetweenMonitors(t *testing.T) {
	side := platform.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD, side)

	mons := e.Monitors()
	require.Len(t, mons, 2)
	assert.Equal(t, 0, mons[0].Workspace)
	assert.Equal(t, 1, mons[1].Workspace)

	fb.at(100, 100)
	require.NoError(t, e.WindowMapped(1))
	fb.at(2000, 100)
	require.NoError(t, e.WindowMapped(2))
	assert.Equal(t, rect(1920, 0, 1274, 1018), fb.rects[2])

	require.NoError(t, e.SetWorkspaceToMonitor(1, 0))
	mons = e.Monitors()
	assert.Equal(t, 1, mons[0].Workspace)
	assert.Equal(t, 0, mons[1].Workspace)
	assert.Equal(t, rect(0, 0, 1914, 1074), fb.rects[2])
	assert.Equal(t, rect(1920, 0, 1274, 1018), fb.rects[1])
}

func TestAssignFreeWorkspace(t *testing.T) {
	e, _ := newTestEngine(t, config.DefaultSettings(), fullHD)
	ws, err := e.AssignFreeWorkspace(0)
	require.NoError(t, err)
	assert.Equal(t, 1, ws)
	assert.Equal(t, 1, e.Monitors()[0].Workspace)

	ws, err = e.AssignFreeWorkspace(0)
	require.NoError(t, err)
	assert.Equal(t, 0, ws)

	_, err = e.AssignFreeWorkspace(3)
	assert.Error(t, err)
}

func TestSetWorkspace_AutoExtends(t *testing.T) {
	e, _ := newTestEngine(t, config.DefaultSettings(), fullHD)
	require.NoError(t, e.CommandInvoked("SetFocusedMonitorToWorkspace", "5"))
	assert.Equal(t, 6, e.Status().Workspaces)
	assert.Equal(t, 5, e.Monitors()[0].Workspace)
}

func TestToggleFloating_RoundTrip(t *testing.T) {
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD)
	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))
	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(2))
	require.NoError(t, e.PointerEntered(2))
	tiled := fb.rects[2]

	require.NoError(t, e.Dispatch(ToggleFloating{}))
	assert.Equal(t, rect(0, 0, 1914, 1074), fb.rects[1])
	assert.Equal(t, rect(480, 270, 954, 534), fb.rects[2])
	assert.Contains(t, fb.raised, platform.WindowID(2))

	require.NoError(t, e.Dispatch(Resize{Side: tree.Right}))
	// 0.55 of 1920 is 1056, less the border on both sides.
	assert.Equal(t, 1050, fb.rects[2].Width)
	for i := 0; i < 20; i++ {
		require.NoError(t, e.Dispatch(Resize{Side: tree.Up}))
	}
	assert.Equal(t, 54-6, fb.rects[2].Height)

	require.NoError(t, e.Dispatch(ToggleFloating{}))
	assert.Equal(t, tiled, fb.rects[2])
	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Workspaces[0].Floating)
}

func TestDialogsFloat(t *testing.T) {
	e, fb := newTestEngine(t, bare(), fullHD)
	fb.at(100, 100)
	require.NoError(t, e.WindowMapped(1))
	fb.classes[2] = platform.ClassDialog
	require.NoError(t, e.WindowMapped(2))

	assert.Equal(t, rect(0, 0, 1920, 1080), fb.rects[1])
	assert.Equal(t, rect(480, 270, 960, 540), fb.rects[2])

	fb.classes[3] = platform.ClassUnmanaged
	require.NoError(t, e.WindowMapped(3))
	assert.False(t, e.Manages(3))
	assert.ElementsMatch(t, []platform.WindowID{1, 2}, managed(t, e))
}

func TestMoveToWorkspace(t *testing.T) {
	e, fb := newTestEngine(t, config.DefaultSettings(), fullHD)
	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))
	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(2))
	require.NoError(t, e.PointerEntered(2))

	require.NoError(t, e.CommandInvoked("move", "1"))
	assert.Equal(t, rect(0, 0, 1914, 1074), fb.rects[1])
	assert.GreaterOrEqual(t, fb.rects[2].Y, 3*1080)
	assert.Zero(t, e.Status().Focused)

	require.NoError(t, e.CommandInvoked("set-workspace", "1"))
	assert.Equal(t, rect(0, 0, 1914, 1074), fb.rects[2])
	assert.GreaterOrEqual(t, fb.rects[1].Y, 3*1080)
}

func TestSplitDirectionAndSwap(t *testing.T) {
	e, fb := newTestEngine(t, bare(), fullHD)
	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))
	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(2))
	require.NoError(t, e.PointerEntered(1))

	require.NoError(t, e.CommandInvoked("change-split-direction", ""))
	assert.Equal(t, rect(0, 0, 1920, 540), fb.rects[1])
	assert.Equal(t, rect(0, 540, 1920, 540), fb.rects[2])

	require.NoError(t, e.CommandInvoked("SwapActiveWindowSides", ""))
	assert.Equal(t, rect(0, 0, 1920, 540), fb.rects[2])
	assert.Equal(t, rect(0, 540, 1920, 540), fb.rects[1])

	// No vertical split above window 1 any more.
	require.NoError(t, e.CommandInvoked("resize", "left"))
	assert.Equal(t, rect(0, 540, 1920, 540), fb.rects[1])
}

func TestKillActive_FallsBackToKill(t *testing.T) {
	e, fb := newTestEngine(t, bare(), fullHD)
	require.NoError(t, e.WindowMapped(1))
	require.NoError(t, e.PointerEntered(1))

	require.NoError(t, e.Dispatch(KillActive{}))
	assert.Equal(t, []platform.WindowID{1}, fb.closed)
	assert.Empty(t, fb.killed)

	fb.graceful = false
	require.NoError(t, e.Dispatch(KillActive{}))
	assert.Equal(t, []platform.WindowID{1}, fb.killed)
}

func TestExpectedMissesAreNoops(t *testing.T) {
	e, fb := newTestEngine(t, bare(), fullHD)
	assert.NoError(t, e.WindowUnmapped(42))
	assert.NoError(t, e.WindowDestroyed(42))
	assert.NoError(t, e.PointerEntered(42))
	for _, cmd := range []Command{KillActive{}, ToggleFullscreen{}, ToggleFloating{}, Resize{Side: tree.Up}, SwapSides{}, ToggleSplitDirection{}, MoveToWorkspace{Index: 2}} {
		assert.NoError(t, e.Dispatch(cmd), cmd.Name())
	}
	assert.Empty(t, fb.rects)
}

func TestExit(t *testing.T) {
	e, _ := newTestEngine(t, bare(), fullHD)
	assert.ErrorIs(t, e.CommandInvoked("ExitWM", ""), ErrExit)
}

func TestBorderColorsFollowFocus(t *testing.T) {
	s := bare()
	s.ActiveTiledBorderColor = 0xff0000
	s.InactiveTiledBorderColor = 0x333333
	e, fb := newTestEngine(t, s, fullHD)
	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))
	fb.at(1500, 540)
	require.NoError(t, e.WindowMapped(2))

	require.NoError(t, e.PointerEntered(1))
	assert.Equal(t, int64(0xff0000), fb.borders[1].Color)
	assert.Equal(t, int64(0x333333), fb.borders[2].Color)

	require.NoError(t, e.PointerEntered(2))
	assert.Equal(t, int64(0x333333), fb.borders[1].Color)
	assert.Equal(t, int64(0xff0000), fb.borders[2].Color)
}

func TestInvariantErrorIsCountedAndRecoverable(t *testing.T) {
	stats := tally.NewTestScope("", nil)
	fb := newFakeBackend(fullHD)
	e := NewEngine(fb, bare(), nil, stats)
	require.NoError(t, e.Start())
	require.NoError(t, e.WindowMapped(1))
	require.NoError(t, e.PointerEntered(1))

	// Corrupt the focus pointer the way a missed cleanup would.
	e.focus = 999
	err := e.Dispatch(ToggleFullscreen{})
	require.Error(t, err)
	assert.True(t, IsInvariant(err))

	count := int64(0)
	for _, c := range stats.Snapshot().Counters() {
		if c.Name() == "invariant_errors" {
			count += c.Value()
		}
	}
	assert.Equal(t, int64(1), count)

	e.Reset(fb.displays)
	assert.Empty(t, managed(t, e))
	require.NoError(t, e.WindowMapped(1))
	assert.True(t, e.Manages(1))
}

func TestBrokenTreeIsNotAMiss(t *testing.T) {
	e, fb := newTestEngine(t, bare(), fullHD)
	fb.at(100, 540)
	require.NoError(t, e.WindowMapped(1))

	// A workspace root that no longer exists in the arena.
	e.workspaces[0].Root = 999

	_, err := e.Managed()
	assert.True(t, IsInvariant(err), "got %v", err)
	assert.False(t, e.Manages(1))

	err = e.WindowUnmapped(1)
	assert.True(t, IsInvariant(err), "got %v", err)
	err = e.PointerEntered(1)
	assert.True(t, IsInvariant(err), "got %v", err)
	err = e.WindowMapped(2)
	assert.True(t, IsInvariant(err), "got %v", err)
}

func TestCommandMetrics(t *testing.T) {
	stats := tally.NewTestScope("", nil)
	e := NewEngine(newFakeBackend(fullHD), bare(), nil, stats)
	require.NoError(t, e.Start())
	require.NoError(t, e.CommandInvoked("swap-sides", ""))
	require.Error(t, e.CommandInvoked("no-such-command", ""))

	names := map[string]int64{}
	for _, c := range stats.Snapshot().Counters() {
		names[c.Name()] += c.Value()
	}
	assert.Equal(t, int64(1), names["commands.swap-sides"])
	assert.Equal(t, int64(1), names["command_errors"])
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name, arg string
		want      Command
		err       error
	}{
		{"kill-active", "", KillActive{}, nil},
		{"KillActive", "", KillActive{}, nil},
		{"toggle-fullscreen", "", ToggleFullscreen{}, nil},
		{"resize", "Down", Resize{Side: tree.Down}, nil},
		{"ResizeActiveWindow", "left", Resize{Side: tree.Left}, nil},
		{"resize", "sideways", nil, ErrBadArgument},
		{"move", "3", MoveToWorkspace{Index: 3}, nil},
		{"MoveActiveWindow", "x", nil, ErrBadArgument},
		{"set-workspace", "0", SetWorkspace{Index: 0}, nil},
		{"set-workspace", "-1", nil, ErrBadArgument},
		{"set-workspace", "32", nil, ErrBadArgument},
		{"exit", "now", nil, ErrBadArgument},
		{"frobnicate", "", nil, ErrUnknownCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.arg, func(t *testing.T) {
			got, err := ParseCommand(tt.name, tt.arg)
			if tt.err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.err)
				var ce *CommandError
				assert.True(t, errors.As(err, &ce))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandNamesRoundTrip(t *testing.T) {
	args := map[string]string{"resize": "up", "move": "1", "set-workspace": "2"}
	for _, name := range CommandNames() {
		cmd, err := ParseCommand(name, args[name])
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.Equal(t, args[name], cmd.Arg())
	}
}
