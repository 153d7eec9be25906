package geometry

import "fmt"

// Point is a position in virtual-desktop coordinates. Coordinates can be
// negative when a display sits left of or above the primary one.
type Point struct {
	X int
	Y int
}

// Size is the pixel extent of the indicator.
type Size struct {
	Width  int
	Height int
}

// Rect is a rectangle in virtual-desktop coordinates. Values built through
// NewRect or Normalize always satisfy Left <= Right and Top <= Bottom.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// NewRect builds a normalized rectangle from two corner coordinates given in any order.
func NewRect(left, top, right, bottom int) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}.Normalize()
}

// RectFromPoints spans the rectangle between two drag endpoints.
func RectFromPoints(a, b Point) Rect {
	return NewRect(a.X, a.Y, b.X, b.Y)
}

// Normalize swaps inverted endpoints.
func (r Rect) Normalize() Rect {
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Translate shifts r by the given offset.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

func (r Rect) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}", r.Left, r.Top, r.Right, r.Bottom)
}
