package overlay

import (
	"sync"

	"laser-pointer/src/geometry"
)

// MemoryIndicator keeps indicator state without drawing anything. It backs
// headless builds and tests.
type MemoryIndicator struct {
	mu      sync.Mutex
	visible bool
	pos     geometry.Point
	size    geometry.Size
	moves   int
}

func NewMemoryIndicator(scale float64) *MemoryIndicator {
	return &MemoryIndicator{size: IndicatorSize(scale)}
}

func (m *MemoryIndicator) Show() {
	m.mu.Lock()
	m.visible = true
	m.mu.Unlock()
}

func (m *MemoryIndicator) Hide() {
	m.mu.Lock()
	m.visible = false
	m.mu.Unlock()
}

func (m *MemoryIndicator) Move(x, y int) {
	m.mu.Lock()
	m.pos = geometry.Point{X: x, Y: y}
	m.moves++
	m.mu.Unlock()
}

func (m *MemoryIndicator) Resize(scale float64) {
	m.mu.Lock()
	m.size = IndicatorSize(scale)
	m.mu.Unlock()
}

func (m *MemoryIndicator) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

func (m *MemoryIndicator) Size() geometry.Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Position returns the last position passed to Move.
func (m *MemoryIndicator) Position() geometry.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Moves counts Move calls.
func (m *MemoryIndicator) Moves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moves
}

// MemorySelection records overlay calls without drawing anything.
type MemorySelection struct {
	mu      sync.Mutex
	shown   bool
	bounds  geometry.Rect
	redraws int
}

func NewMemorySelection() *MemorySelection { return &MemorySelection{} }

func (m *MemorySelection) ShowOn(bounds geometry.Rect) error {
	m.mu.Lock()
	m.shown = true
	m.bounds = bounds
	m.mu.Unlock()
	return nil
}

func (m *MemorySelection) Hide() {
	m.mu.Lock()
	m.shown = false
	m.mu.Unlock()
}

func (m *MemorySelection) Redraw(anchor, current geometry.Point) {
	m.mu.Lock()
	m.redraws++
	m.mu.Unlock()
}

func (m *MemorySelection) Shown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shown
}

func (m *MemorySelection) Bounds() geometry.Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds
}

func (m *MemorySelection) Redraws() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.redraws
}
