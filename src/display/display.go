package display

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/kbinani/screenshot"

	"laser-pointer/src/geometry"
)

// ErrUnknownDisplay is returned when a display id is not part of the snapshot.
var ErrUnknownDisplay = errors.New("unknown display")

// Surface is one display and its bounds in virtual-desktop coordinates.
type Surface struct {
	ID     string
	Bounds geometry.Rect
}

// Registry is an immutable snapshot of the display layout. Lookups never
// touch the OS, so it is safe to call from the movement ticker.
type Registry struct {
	surfaces []Surface
}

// Enumerate queries the active displays once. An empty registry is returned
// (not an error) on headless machines.
func Enumerate() *Registry {
	n := screenshot.NumActiveDisplays()
	bounds := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		bounds = append(bounds, screenshot.GetDisplayBounds(i))
	}
	r := FromBounds(bounds)
	for _, s := range r.surfaces {
		log.Printf("display: %s bounds=%v", s.ID, s.Bounds)
	}
	if len(r.surfaces) == 0 {
		log.Printf("display: no active displays found")
	}
	return r
}

// FromBounds builds a registry from display rectangles in enumeration order.
func FromBounds(bounds []image.Rectangle) *Registry {
	surfaces := make([]Surface, 0, len(bounds))
	for i, b := range bounds {
		surfaces = append(surfaces, Surface{
			ID:     SurfaceID(i),
			Bounds: geometry.NewRect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y),
		})
	}
	return &Registry{surfaces: surfaces}
}

// New builds a registry from explicit surfaces.
func New(surfaces ...Surface) *Registry {
	return &Registry{surfaces: append([]Surface(nil), surfaces...)}
}

// SurfaceID names the display at enumeration index i.
func SurfaceID(i int) string { return fmt.Sprintf("display-%d", i+1) }

// List returns a copy of the enumerated displays.
func (r *Registry) List() []Surface {
	return append([]Surface(nil), r.surfaces...)
}

// Len returns the number of displays.
func (r *Registry) Len() int { return len(r.surfaces) }

// Geometry returns the bounds of the display with the given id.
func (r *Registry) Geometry(id string) (geometry.Rect, bool) {
	for _, s := range r.surfaces {
		if s.ID == id {
			return s.Bounds, true
		}
	}
	return geometry.Rect{}, false
}

// Lookup is Geometry with an error for callers that report failures.
func (r *Registry) Lookup(id string) (Surface, error) {
	for _, s := range r.surfaces {
		if s.ID == id {
			return s, nil
		}
	}
	return Surface{}, fmt.Errorf("%w: %q", ErrUnknownDisplay, id)
}

// At returns the display containing p.
func (r *Registry) At(p geometry.Point) (Surface, bool) {
	for _, s := range r.surfaces {
		if s.Bounds.Contains(p) {
			return s, true
		}
	}
	return Surface{}, false
}

// Union returns the bounds enclosing every display, or geometry.FallbackSource
// when none were found.
func (r *Registry) Union() geometry.Rect {
	if len(r.surfaces) == 0 {
		return geometry.FallbackSource
	}
	u := r.surfaces[0].Bounds
	for _, s := range r.surfaces[1:] {
		u.Left = min(u.Left, s.Bounds.Left)
		u.Top = min(u.Top, s.Bounds.Top)
		u.Right = max(u.Right, s.Bounds.Right)
		u.Bottom = max(u.Bottom, s.Bounds.Bottom)
	}
	return u
}
