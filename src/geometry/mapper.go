package geometry

const (
	fallbackWidth  = 1920
	fallbackHeight = 1080
)

// FallbackSource is substituted, per dimension, for a calibrated source
// rectangle that has zero width or height.
var FallbackSource = Rect{Left: 0, Top: 0, Right: fallbackWidth, Bottom: fallbackHeight}

// Position is an unrounded indicator position on the target display.
type Position struct {
	X float64
	Y float64
}

// Project maps cursor from source space onto target space and centers an
// indicator of the given size on the result. Cursors outside source
// extrapolate linearly; nothing is clipped here.
func Project(cursor Point, source, target Rect, indicator Size) Position {
	left, width := source.Left, source.Width()
	if width == 0 {
		left, width = FallbackSource.Left, FallbackSource.Width()
	}
	top, height := source.Top, source.Height()
	if height == 0 {
		top, height = FallbackSource.Top, FallbackSource.Height()
	}

	fx := float64(cursor.X-left) / float64(width)
	fy := float64(cursor.Y-top) / float64(height)

	return Position{
		X: float64(target.Left) + fx*float64(target.Width()) - float64(indicator.Width)/2,
		Y: float64(target.Top) + fy*float64(target.Height()) - float64(indicator.Height)/2,
	}
}

// Clamp keeps the indicator's whole bounding box inside target.
func Clamp(p Position, target Rect, indicator Size) Position {
	p.X = clampAxis(p.X, float64(target.Left), float64(target.Left+target.Width()-indicator.Width))
	p.Y = clampAxis(p.Y, float64(target.Top), float64(target.Top+target.Height()-indicator.Height))
	return p
}

// clampAxis pins v to [lo, hi]. When the indicator is larger than the target
// (hi < lo) the low edge wins.
func clampAxis(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Map is Project followed by Clamp, truncated to whole pixels.
func Map(cursor Point, source, target Rect, indicator Size) Point {
	p := Clamp(Project(cursor, source, target, indicator), target, indicator)
	return Point{X: int(p.X), Y: int(p.Y)}
}
