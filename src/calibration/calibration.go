package calibration

import (
	"errors"
	"fmt"
	"math"

	"laser-pointer/src/display"
	"laser-pointer/src/geometry"
)

const (
	DefaultScale = 1.7
	MinScale     = 0.5
	MaxScale     = 5.0
	ScaleStep    = 0.1
)

var (
	// ErrMalformed marks a settings file that exists but cannot be used.
	ErrMalformed = errors.New("malformed settings file")
	// ErrPersist marks a failed settings write.
	ErrPersist = errors.New("failed to persist settings")
	// ErrInvalidScale is returned for an indicator scale outside [MinScale, MaxScale].
	ErrInvalidScale = errors.New("indicator scale out of range")
)

// DefaultSource is the preview rectangle used until the user calibrates one.
var DefaultSource = geometry.Rect{Left: 60, Top: 149, Right: 1258, Bottom: 823}

// Config is the persisted mapping configuration.
type Config struct {
	Source          geometry.Rect
	TargetDisplayID string
	IndicatorScale  float64
}

// Defaults targets the second display when there is one, else the first.
func Defaults(reg *display.Registry) Config {
	cfg := Config{
		Source:         DefaultSource,
		IndicatorScale: DefaultScale,
	}
	if reg != nil {
		list := reg.List()
		switch {
		case len(list) > 1:
			cfg.TargetDisplayID = list[1].ID
		case len(list) == 1:
			cfg.TargetDisplayID = list[0].ID
		}
	}
	return cfg
}

// ValidateScale rejects scales the indicator cannot be drawn at.
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || scale < MinScale || scale > MaxScale {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrInvalidScale, scale, MinScale, MaxScale)
	}
	return nil
}

// StepScale moves scale by n steps of ScaleStep, rounded to one decimal and
// kept inside the valid range.
func StepScale(scale float64, n int) float64 {
	next := math.Round((scale+float64(n)*ScaleStep)*10) / 10
	return math.Max(MinScale, math.Min(MaxScale, next))
}
