package tiling

import (
	"errors"
	"testing"

	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/platform/platformmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStart_DisplayFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := platformmock.NewMockBackend(ctrl)
	b.EXPECT().Displays().Return(nil, errors.New("randr unavailable"))

	err := NewEngine(b, bare(), nil, nil).Start()
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "displays", be.Op)
}

func TestBackendFailuresArePropagated(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := platformmock.NewMockBackend(ctrl)
	b.EXPECT().Displays().Return([]platform.Display{{Name: "eDP-1", Bounds: fullHD}}, nil)
	e := NewEngine(b, bare(), nil, nil)
	require.NoError(t, e.Start())

	b.EXPECT().Classify(platform.WindowID(7)).Return(platform.ClassNormal, errors.New("bad window"))
	err := e.WindowMapped(7)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "classify", be.Op)
	assert.Equal(t, platform.WindowID(7), be.Window)
	assert.False(t, IsInvariant(err))
	assert.False(t, e.Manages(7))

	// A failed configure is reported, but the window stays managed.
	b.EXPECT().Classify(platform.WindowID(8)).Return(platform.ClassNormal, nil)
	b.EXPECT().CursorPosition().Return(10, 10, nil)
	b.EXPECT().
		Configure(platform.WindowID(8), platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, platform.Border{Width: 0, Color: -1}).
		Return(errors.New("BadWindow"))
	err = e.WindowMapped(8)
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "configure", be.Op)
	assert.True(t, e.Manages(8))
}

func TestPointerEntered_FocusFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := platformmock.NewMockBackend(ctrl)
	b.EXPECT().Displays().Return([]platform.Display{{Name: "eDP-1", Bounds: fullHD}}, nil)
	e := NewEngine(b, bare(), nil, nil)
	require.NoError(t, e.Start())

	b.EXPECT().Classify(gomock.Any()).Return(platform.ClassNormal, nil)
	b.EXPECT().CursorPosition().Return(0, 0, nil)
	b.EXPECT().Configure(platform.WindowID(3), gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, e.WindowMapped(3))

	b.EXPECT().Focus(platform.WindowID(3)).Return(errors.New("not viewable"))
	err := e.PointerEntered(3)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "focus", be.Op)
}
