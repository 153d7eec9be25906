package messages

import (
	"laser-pointer/src/overlay"
)

// Command is a request for the event loop. Tray clicks, delegated CLI
// requests and selection overlay events are all turned into Commands.
type Command interface {
	Type() string
}

// Command type constants for logging and dispatch
const (
	TypeToggleTracking  = "ToggleTracking"
	TypeStartSelection  = "StartSelection"
	TypeCancelSelection = "CancelSelection"
	TypeSetTarget       = "SetTarget"
	TypeSetScale        = "SetScale"
	TypeStepScale       = "StepScale"
	TypePointer         = "Pointer"
	TypeCopyCalibration = "CopyCalibration"
	TypeQuit            = "Quit"
)

// ToggleTracking flips tracking on or off, as the toggle hotkey does.
type ToggleTracking struct{}

func (m ToggleTracking) Type() string { return TypeToggleTracking }

// StartSelection opens the selection overlay.
type StartSelection struct{}

func (m StartSelection) Type() string { return TypeStartSelection }

// CancelSelection closes the selection overlay without changing the calibration.
type CancelSelection struct{}

func (m CancelSelection) Type() string { return TypeCancelSelection }

// SetTarget selects the display the indicator is drawn on.
type SetTarget struct {
	DisplayID string
}

func (m SetTarget) Type() string { return TypeSetTarget }

// SetScale changes the indicator scale.
type SetScale struct {
	Scale float64
}

func (m SetScale) Type() string { return TypeSetScale }

// StepScale changes the indicator scale by Steps increments (negative shrinks).
type StepScale struct {
	Steps int
}

func (m StepScale) Type() string { return TypeStepScale }

// Pointer carries one event from the selection overlay.
type Pointer struct {
	Event overlay.PointerEvent
}

func (m Pointer) Type() string { return TypePointer }

// CopyCalibration writes the current calibration to the clipboard.
type CopyCalibration struct{}

func (m CopyCalibration) Type() string { return TypeCopyCalibration }

// Quit stops the event loop.
type Quit struct{}

func (m Quit) Type() string { return TypeQuit }
