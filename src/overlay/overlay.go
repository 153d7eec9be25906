package overlay

import (
	"math"

	"laser-pointer/src/geometry"
)

// BaseIndicatorSize is the indicator diameter in pixels at scale 1.
const BaseIndicatorSize = 46

// Indicator is the click-through, always-on-top marker drawn on the target
// display. Implementations must be safe for use from several goroutines.
type Indicator interface {
	Show()
	Hide()
	Move(x, y int)
	Resize(scale float64)
	Visible() bool
	Size() geometry.Size
}

// Selection is the full-screen drag overlay used to calibrate the source
// rectangle. Pointer positions are reported relative to the overlay's
// top-left corner through the PointerSink it was built with.
type Selection interface {
	ShowOn(bounds geometry.Rect) error
	Hide()
	Redraw(anchor, current geometry.Point)
}

type PointerKind int

const (
	PointerPress PointerKind = iota
	PointerMove
	PointerRelease
	// PointerCancel is sent when the overlay itself sees Escape.
	PointerCancel
)

func (k PointerKind) String() string {
	switch k {
	case PointerPress:
		return "press"
	case PointerMove:
		return "move"
	case PointerRelease:
		return "release"
	case PointerCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// PointerEvent is one mouse or key event seen by the selection overlay.
type PointerEvent struct {
	Kind PointerKind
	Pos  geometry.Point
}

// PointerSink receives overlay events. It is called from the UI thread and
// must not block.
type PointerSink func(PointerEvent)

// IndicatorSize returns the indicator extent at the given scale.
func IndicatorSize(scale float64) geometry.Size {
	d := int(math.Round(BaseIndicatorSize * scale))
	if d < 1 {
		d = 1
	}
	return geometry.Size{Width: d, Height: d}
}
