package tracking

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"laser-pointer/src/calibration"
	"laser-pointer/src/cursor"
	"laser-pointer/src/display"
	"laser-pointer/src/geometry"
	"laser-pointer/src/overlay"
)

func newTestLoop(pos *geometry.Point) (*Loop, *overlay.MemoryIndicator) {
	reg := display.FromBounds([]image.Rectangle{
		image.Rect(0, 0, 1920, 1080),
		image.Rect(1920, 0, 2920, 500),
	})
	ind := overlay.NewMemoryIndicator(10.0 / overlay.BaseIndicatorSize)
	l := New(reg, cursor.Func(func() geometry.Point { return *pos }), ind, time.Millisecond)
	l.Publish(calibration.Config{
		Source:          geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100},
		TargetDisplayID: "display-2",
		IndicatorScale:  1,
	})
	return l, ind
}

func TestTickMovesIndicator(t *testing.T) {
	pos := geometry.Point{X: 50, Y: 50}
	l, ind := newTestLoop(&pos)
	l.SetEnabled(true)
	ind.Show()

	if !l.Tick() {
		t.Fatal("expected tick to move the indicator")
	}
	if got := ind.Position(); got != (geometry.Point{X: 1920 + 495, Y: 245}) {
		t.Fatalf("indicator at %+v, expected {2415 245}", got)
	}

	pos = geometry.Point{X: 5000, Y: -5000}
	l.Tick()
	if got := ind.Position(); got != (geometry.Point{X: 2910, Y: 0}) {
		t.Fatalf("indicator at %+v, expected clamped {2910 0}", got)
	}
}

func TestTickRequiresTrackingAndVisibility(t *testing.T) {
	pos := geometry.Point{X: 50, Y: 50}
	l, ind := newTestLoop(&pos)

	if l.Tick() {
		t.Fatal("tick must not move while tracking is disabled")
	}
	l.SetEnabled(true)
	if l.Tick() {
		t.Fatal("tick must not move while the indicator is hidden")
	}
	if ind.Moves() != 0 {
		t.Fatalf("expected no moves, got %d", ind.Moves())
	}
}

func TestTickUnknownTargetLeavesIndicatorInPlace(t *testing.T) {
	pos := geometry.Point{X: 50, Y: 50}
	l, ind := newTestLoop(&pos)
	l.SetEnabled(true)
	ind.Show()
	l.Tick()
	before := ind.Position()
	moves := ind.Moves()

	l.Publish(calibration.Config{
		Source:          geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100},
		TargetDisplayID: "display-7",
		IndicatorScale:  1,
	})
	for i := 0; i < 10; i++ {
		pos = geometry.Point{X: i * 10, Y: i * 5}
		if l.Tick() {
			t.Fatalf("tick %d moved the indicator for an unknown display", i)
		}
	}
	if ind.Position() != before || ind.Moves() != moves {
		t.Fatalf("indicator changed: %+v (%d moves), expected %+v (%d moves)", ind.Position(), ind.Moves(), before, moves)
	}
}

func TestTickWithoutCalibrationIsNoop(t *testing.T) {
	reg := display.New()
	ind := overlay.NewMemoryIndicator(1)
	ind.Show()
	l := New(reg, cursor.Func(func() geometry.Point { return geometry.Point{} }), ind, 0)
	l.SetEnabled(true)

	if l.Tick() {
		t.Fatal("expected no movement without a published calibration")
	}
	if l.Interval() != DefaultInterval {
		t.Fatalf("expected default interval, got %v", l.Interval())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	pos := geometry.Point{X: 10, Y: 10}
	l, ind := newTestLoop(&pos)
	l.SetEnabled(true)
	ind.Show()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for ind.Moves() == 0 {
		select {
		case <-deadline:
			t.Fatal("movement loop never ticked")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
