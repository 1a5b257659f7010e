package tiling

import (
	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tree"
)

// Rect represents a window position and size
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects reports whether r and o share any area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Inset shrinks r by n on every side. Extents never go negative.
func (r Rect) Inset(n int) Rect {
	out := Rect{
		X:      r.X + n,
		Y:      r.Y + n,
		Width:  r.Width - 2*n,
		Height: r.Height - 2*n,
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Divide partitions r along the axis of d. The first part receives
// floor(extent*ratio) pixels and the second the remainder, so the two always
// tile r exactly.
func (r Rect) Divide(d tree.Direction, ratio float64) (first, second Rect) {
	if d == tree.Horizontal {
		h := int(float64(r.Height) * ratio)
		first = Rect{X: r.X, Y: r.Y, Width: r.Width, Height: h}
		second = Rect{X: r.X, Y: r.Y + h, Width: r.Width, Height: r.Height - h}
		return first, second
	}
	w := int(float64(r.Width) * ratio)
	first = Rect{X: r.X, Y: r.Y, Width: w, Height: r.Height}
	second = Rect{X: r.X + w, Y: r.Y, Width: r.Width - w, Height: r.Height}
	return first, second
}

// Fraction maps a monitor-relative position and size onto r.
func (r Rect) Fraction(pos, size tree.Fraction) Rect {
	return Rect{
		X:      r.X + int(pos.X*float64(r.Width)),
		Y:      r.Y + int(pos.Y*float64(r.Height)),
		Width:  int(size.X * float64(r.Width)),
		Height: int(size.Y * float64(r.Height)),
	}
}

// sideFor picks the insertion side for a cursor inside r: the top and bottom
// quarters split horizontally, otherwise the half the cursor is in decides.
func sideFor(r Rect, x, y int) tree.Side {
	quarter := r.Height / 4
	switch {
	case y < r.Y+quarter:
		return tree.Up
	case y >= r.Y+r.Height-quarter:
		return tree.Down
	case x < r.X+r.Width/2:
		return tree.Left
	default:
		return tree.Right
	}
}

func rectFromPlatform(r platform.Rect) Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func (r Rect) platform() platform.Rect {
	return platform.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
