//go:build !windows

package gui

import (
	"log"

	"laser-pointer/src/geometry"
	"laser-pointer/src/overlay"
)

// Host has no native windows on this platform; it hands out in-memory
// surfaces so the resident still runs (and can be driven through laserctl).
type Host struct{}

func Start() (*Host, error) {
	log.Printf("gui: no native overlay on this platform, using in-memory surfaces")
	return &Host{}, nil
}

func (h *Host) Indicator(scale float64) (overlay.Indicator, error) {
	return overlay.NewMemoryIndicator(scale), nil
}

func (h *Host) Selection(sink overlay.PointerSink) overlay.Selection {
	return &memorySelection{MemorySelection: overlay.NewMemorySelection(), sink: sink}
}

func (h *Host) Close() {}

// memorySelection cancels right away: there is no window to drag on.
type memorySelection struct {
	*overlay.MemorySelection
	sink overlay.PointerSink
}

func (m *memorySelection) ShowOn(bounds geometry.Rect) error {
	if err := m.MemorySelection.ShowOn(bounds); err != nil {
		return err
	}
	log.Printf("gui: selection overlay not available, cancelling")
	m.sink(overlay.PointerEvent{Kind: overlay.PointerCancel})
	return nil
}
