package tray

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/getlantern/systray"

	"laser-pointer/src/display"
	"laser-pointer/src/eventloop"
	"laser-pointer/src/messages"
)

const appTitle = "Laser Pointer"

// Tray is the system tray menu. Clicks are posted to the event loop; the
// loop reports back through Update.
type Tray struct {
	post     func(messages.Command) bool
	surfaces []display.Surface
	onExit   func()

	mu      sync.Mutex
	ready   bool
	status  eventloop.Status
	toggle  *systray.MenuItem
	size    *systray.MenuItem
	targets map[string]*systray.MenuItem
}

func New(post func(messages.Command) bool, surfaces []display.Surface, onExit func()) *Tray {
	return &Tray{
		post:     post,
		surfaces: surfaces,
		onExit:   onExit,
		targets:  make(map[string]*systray.MenuItem),
	}
}

// Run shows the tray icon and blocks until Quit. It must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.exit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() { systray.Quit() }

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle(appTitle)
	systray.SetTooltip(appTitle)

	t.mu.Lock()
	t.toggle = systray.AddMenuItemCheckbox("Toggle laser", "Show or hide the laser pointer", false)
	mSelect := systray.AddMenuItem("Select region", "Drag the preview rectangle to calibrate")
	mTarget := systray.AddMenuItem("Target display", "Display the laser is drawn on")
	for _, s := range t.surfaces {
		item := mTarget.AddSubMenuItemCheckbox(surfaceLabel(s), s.ID, false)
		t.targets[s.ID] = item
		go t.forward(item.ClickedCh, messages.SetTarget{DisplayID: s.ID})
	}
	if len(t.surfaces) == 0 {
		mTarget.Disable()
	}
	t.size = systray.AddMenuItem("Laser size", "Current laser size")
	t.size.Disable()
	mBigger := systray.AddMenuItem("Laser size +", "Make the laser bigger")
	mSmaller := systray.AddMenuItem("Laser size -", "Make the laser smaller")
	systray.AddSeparator()
	mCopy := systray.AddMenuItem("Copy calibration", "Copy the current calibration to the clipboard")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Exit", "Quit the application")
	t.ready = true
	st := t.status
	t.mu.Unlock()

	t.apply(st)

	go t.forward(t.toggle.ClickedCh, messages.ToggleTracking{})
	go t.forward(mSelect.ClickedCh, messages.StartSelection{})
	go t.forward(mBigger.ClickedCh, messages.StepScale{Steps: 1})
	go t.forward(mSmaller.ClickedCh, messages.StepScale{Steps: -1})
	go t.forward(mCopy.ClickedCh, messages.CopyCalibration{})
	go func() {
		<-mQuit.ClickedCh
		log.Printf("tray: exit clicked")
		t.post(messages.Quit{})
		systray.Quit()
	}()
}

func (t *Tray) forward(ch <-chan struct{}, cmd messages.Command) {
	for range ch {
		log.Printf("tray: %s clicked", cmd.Type())
		t.post(cmd)
	}
}

func (t *Tray) exit() {
	log.Printf("tray: exiting")
	if t.onExit != nil {
		t.onExit()
	}
}

// Update refreshes check marks and tooltip. Safe to call from any goroutine,
// including before the tray is ready.
func (t *Tray) Update(st eventloop.Status) {
	t.mu.Lock()
	t.status = st
	ready := t.ready
	t.mu.Unlock()
	if ready {
		t.apply(st)
	}
}

func (t *Tray) apply(st eventloop.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	systray.SetTooltip(Tooltip(st))
	switch st.State {
	case eventloop.Tracking:
		t.toggle.Check()
	case eventloop.Idle:
		t.toggle.Uncheck()
	}
	for id, item := range t.targets {
		if id == st.Config.TargetDisplayID {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	t.size.SetTitle("Laser size: " + strconv.FormatFloat(st.Config.IndicatorScale, 'f', 1, 64))
}

// Tooltip describes st for the tray icon.
func Tooltip(st eventloop.Status) string {
	target := st.Config.TargetDisplayID
	if target == "" {
		target = "no display"
	}
	var mode string
	switch st.State {
	case eventloop.Tracking:
		mode = "on"
	case eventloop.SelectionActive:
		mode = "selecting region"
	default:
		mode = "off"
	}
	return fmt.Sprintf("%s: %s (%s, size %s)", appTitle, mode, target,
		strconv.FormatFloat(st.Config.IndicatorScale, 'f', 1, 64))
}

func surfaceLabel(s display.Surface) string {
	return fmt.Sprintf("%s (%dx%d at %d,%d)", s.ID, s.Bounds.Width(), s.Bounds.Height(), s.Bounds.Left, s.Bounds.Top)
}
