package selector

import (
	"fmt"
	"log"

	"laser-pointer/src/geometry"
	"laser-pointer/src/overlay"
)

// Outcome is what a pointer event did to the selection.
type Outcome int

const (
	// Pending means the selection is still in progress (or the event was ignored).
	Pending Outcome = iota
	Completed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Selector turns a press/drag/release sequence on the overlay into a source
// rectangle. It is not safe for concurrent use; the event loop owns it.
type Selector struct {
	overlay  overlay.Selection
	active   bool
	dragging bool
	origin   geometry.Rect
	anchor   geometry.Point
	current  geometry.Point
}

func New(o overlay.Selection) *Selector {
	return &Selector{overlay: o}
}

// Begin shows the overlay over screen and waits for a drag.
func (s *Selector) Begin(screen geometry.Rect) error {
	if err := s.overlay.ShowOn(screen); err != nil {
		return fmt.Errorf("failed to show selection overlay: %w", err)
	}
	s.active = true
	s.dragging = false
	s.origin = screen
	log.Printf("selector: overlay shown on %v", screen)
	return nil
}

func (s *Selector) Active() bool   { return s.active }
func (s *Selector) Dragging() bool { return s.dragging }

// Press records the drag anchor.
func (s *Selector) Press(p geometry.Point) {
	if !s.active {
		return
	}
	s.anchor = p
	s.current = p
	s.dragging = true
	s.overlay.Redraw(s.anchor, s.current)
}

// Move tracks the drag end while the button is held.
func (s *Selector) Move(p geometry.Point) {
	if !s.active || !s.dragging {
		return
	}
	s.current = p
	s.overlay.Redraw(s.anchor, s.current)
}

// Release finishes the drag and returns the normalized rectangle in
// virtual-desktop coordinates. ok is false when no drag was in progress.
func (s *Selector) Release(p geometry.Point) (rect geometry.Rect, ok bool) {
	if !s.active || !s.dragging {
		return geometry.Rect{}, false
	}
	s.current = p
	rect = geometry.RectFromPoints(s.anchor, s.current).Translate(s.origin.Left, s.origin.Top)
	log.Printf("selector: drag (%d,%d)->(%d,%d) on %v gives %v",
		s.anchor.X, s.anchor.Y, s.current.X, s.current.Y, s.origin, rect)
	s.finish()
	return rect, true
}

// Cancel hides the overlay and drops any drag in progress.
func (s *Selector) Cancel() {
	if !s.active {
		return
	}
	log.Printf("selector: cancelled")
	s.finish()
}

// Handle applies one overlay event.
func (s *Selector) Handle(ev overlay.PointerEvent) (Outcome, geometry.Rect) {
	switch ev.Kind {
	case overlay.PointerPress:
		s.Press(ev.Pos)
	case overlay.PointerMove:
		s.Move(ev.Pos)
	case overlay.PointerRelease:
		if rect, ok := s.Release(ev.Pos); ok {
			return Completed, rect
		}
	case overlay.PointerCancel:
		if s.active {
			s.Cancel()
			return Cancelled, geometry.Rect{}
		}
	}
	return Pending, geometry.Rect{}
}

func (s *Selector) finish() {
	s.dragging = false
	s.active = false
	s.overlay.Hide()
}
