package eventloop

// State is the user-visible mode of the resident.
type State int

const (
	Idle State = iota
	Tracking
	SelectionActive
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Tracking:
		return "Tracking"
	case SelectionActive:
		return "SelectionActive"
	default:
		return "Unknown"
	}
}

// Machine is the hotkey state machine. The tracking flag survives a
// selection, so leaving SelectionActive returns to the prior state.
type Machine struct {
	tracking  bool
	selecting bool
}

func (m *Machine) State() State {
	switch {
	case m.selecting:
		return SelectionActive
	case m.tracking:
		return Tracking
	default:
		return Idle
	}
}

func (m *Machine) TrackingEnabled() bool { return m.tracking }
func (m *Machine) SelectionActive() bool { return m.selecting }

// Toggle flips tracking. It is ignored while a selection is active.
func (m *Machine) Toggle() bool {
	if m.selecting {
		return false
	}
	m.tracking = !m.tracking
	return true
}

// BeginSelection enters SelectionActive unless already there.
func (m *Machine) BeginSelection() bool {
	if m.selecting {
		return false
	}
	m.selecting = true
	return true
}

// EndSelection leaves SelectionActive and returns the restored state.
func (m *Machine) EndSelection() State {
	m.selecting = false
	return m.State()
}
