package cursor

import (
	"github.com/go-vgo/robotgo"

	"laser-pointer/src/geometry"
)

// Source reports the current cursor position in virtual-desktop coordinates.
type Source interface {
	Position() geometry.Point
}

// System reads the OS cursor.
type System struct{}

func (System) Position() geometry.Point {
	x, y := robotgo.Location()
	return geometry.Point{X: x, Y: y}
}

// Func adapts a plain function to Source.
type Func func() geometry.Point

func (f Func) Position() geometry.Point { return f() }
