package gui

import (
	"laser-pointer/src/geometry"
)

const (
	// indicatorColor is the laser dot colour as a win32 COLORREF (0x00BBGGRR).
	indicatorColor = 0x00231CE5
	// selectionColor is the drag rectangle pen colour.
	selectionColor = 0x000000FF
	hintColor      = 0x0000FFFF

	selectionHint = "Drag over the preview area. ESC cancels"
)

// pointFromLParam unpacks the signed client coordinates carried by mouse messages.
func pointFromLParam(lParam uintptr) geometry.Point {
	return geometry.Point{
		X: int(int16(uint16(lParam))),
		Y: int(int16(uint16(lParam >> 16))),
	}
}

// dragRect is the rectangle to paint for a drag from anchor to current.
func dragRect(anchor, current geometry.Point) geometry.Rect {
	return geometry.RectFromPoints(anchor, current)
}
