package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"laser-pointer/src/calibration"
	"laser-pointer/src/cursor"
	"laser-pointer/src/display"
	"laser-pointer/src/geometry"
	"laser-pointer/src/hotkey"
	"laser-pointer/src/messages"
	"laser-pointer/src/overlay"
	"laser-pointer/src/selector"
	"laser-pointer/src/singleinstance"
	"laser-pointer/src/tracking"
)

// DefaultPollInterval is the key polling and visibility cadence.
const DefaultPollInterval = 30 * time.Millisecond

// ErrSelectionActive is returned for requests that need the selection to finish first.
var ErrSelectionActive = errors.New("a region selection is in progress")

// KeySource exposes press edges of the logical hotkeys.
type KeySource interface {
	Presses(key hotkey.Key) int
}

// Persister stores the calibration.
type Persister interface {
	Save(cfg calibration.Config) error
}

// Options wires the loop to its collaborators. Registry, Indicator,
// Selection, Cursor and Tracker are required.
type Options struct {
	Registry  *display.Registry
	Store     Persister
	Config    calibration.Config
	Keys      KeySource
	Indicator overlay.Indicator
	Selection overlay.Selection
	Cursor    cursor.Source
	Tracker   *tracking.Loop
	Server    singleinstance.Server

	PollInterval time.Duration

	// Notify shows a desktop notification. Optional.
	Notify func(title, message string)
	// Confirm gives audible feedback when a selection completes. Optional.
	Confirm func()
	// CopyText writes to the clipboard. Optional.
	CopyText func(text string) error
	// OnChange is called on the loop goroutine after every state or calibration change. Optional.
	OnChange func(Status)
}

// Status is a snapshot of the loop for the tray and delegated STATUS requests.
type Status struct {
	State  State
	Config calibration.Config
}

func (s Status) String() string {
	return fmt.Sprintf("state=%s target=%s source=%v scale=%s",
		s.State, s.Config.TargetDisplayID, s.Config.Source,
		strconv.FormatFloat(s.Config.IndicatorScale, 'f', -1, 64))
}

// Loop is the single-threaded owner of the calibration and the hotkey state
// machine. Every mutation happens on the goroutine running Run.
type Loop struct {
	registry  *display.Registry
	store     Persister
	keys      KeySource
	indicator overlay.Indicator
	selector  *selector.Selector
	cursor    cursor.Source
	tracker   *tracking.Loop
	srv       singleinstance.Server
	poll      time.Duration

	notify   func(title, message string)
	confirm  func()
	copyText func(text string) error
	onChange func(Status)

	machine  Machine
	cfg      calibration.Config
	commands chan messages.Command
}

func New(opts Options) *Loop {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	l := &Loop{
		registry:  opts.Registry,
		store:     opts.Store,
		keys:      opts.Keys,
		indicator: opts.Indicator,
		selector:  selector.New(opts.Selection),
		cursor:    opts.Cursor,
		tracker:   opts.Tracker,
		srv:       opts.Server,
		poll:      poll,
		notify:    opts.Notify,
		confirm:   opts.Confirm,
		copyText:  opts.CopyText,
		onChange:  opts.OnChange,
		cfg:       opts.Config,
		commands:  make(chan messages.Command, 64),
	}
	l.tracker.Publish(l.cfg)
	l.tracker.SetEnabled(false)
	return l
}

// Post queues cmd for the loop without blocking. It reports false when the
// queue is full and the command was dropped.
func (l *Loop) Post(cmd messages.Command) bool {
	select {
	case l.commands <- cmd:
		return true
	default:
		log.Printf("eventloop: command queue full, dropping %s", cmd.Type())
		return false
	}
}

// PointerSink returns a sink that forwards selection overlay events into the loop.
func (l *Loop) PointerSink() overlay.PointerSink {
	return func(ev overlay.PointerEvent) {
		l.Post(messages.Pointer{Event: ev})
	}
}

// Status returns the current snapshot. Only call it from the loop goroutine
// or before Run starts.
func (l *Loop) Status() Status {
	return Status{State: l.machine.State(), Config: l.cfg}
}

// Run polls keys and processes commands and delegated requests until ctx is
// cancelled or a Quit command arrives.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	defer l.shutdown()

	var reqCh chan singleinstance.Conn
	if l.srv != nil {
		reqCh = make(chan singleinstance.Conn, 4)
		go func() {
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				select {
				case reqCh <- conn:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}
		}()
	}

	log.Printf("eventloop: started (poll %v)", l.poll)
	l.changed()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Poll()
		case cmd := <-l.commands:
			if _, ok := cmd.(messages.Quit); ok {
				log.Printf("eventloop: quit requested")
				return nil
			}
			if err := l.Handle(cmd); err != nil {
				log.Printf("eventloop: %s failed: %v", cmd.Type(), err)
			}
		case conn := <-reqCh:
			l.handleConn(conn)
		}
	}
}

// Poll drains key press edges one at a time and syncs indicator visibility
// to the tracking flag.
func (l *Loop) Poll() {
	before := l.machine.State()
	if l.keys != nil {
		for n := l.keys.Presses(hotkey.ToggleTracking); n > 0; n-- {
			l.toggle()
		}
		for n := l.keys.Presses(hotkey.StartSelection); n > 0; n-- {
			if err := l.startSelection(); err != nil && !errors.Is(err, ErrSelectionActive) {
				log.Printf("eventloop: cannot start selection: %v", err)
			}
		}
		for n := l.keys.Presses(hotkey.Cancel); n > 0; n-- {
			l.cancelSelection()
		}
	}
	l.syncVisibility()
	if l.machine.State() != before {
		l.changed()
	}
}

// Handle applies one command.
func (l *Loop) Handle(cmd messages.Command) error {
	before := l.Status()
	var err error
	switch c := cmd.(type) {
	case messages.ToggleTracking:
		l.toggle()
	case messages.StartSelection:
		err = l.startSelection()
	case messages.CancelSelection:
		l.cancelSelection()
	case messages.Pointer:
		l.handlePointer(c.Event)
	case messages.SetTarget:
		err = l.setTarget(c.DisplayID)
	case messages.SetScale:
		err = l.setScale(c.Scale)
	case messages.StepScale:
		err = l.setScale(calibration.StepScale(l.cfg.IndicatorScale, c.Steps))
	case messages.CopyCalibration:
		err = l.copyCalibration()
	default:
		err = fmt.Errorf("unsupported command %s", cmd.Type())
	}
	l.syncVisibility()
	if l.Status() != before {
		l.changed()
	}
	return err
}

func (l *Loop) toggle() {
	if !l.machine.Toggle() {
		log.Printf("eventloop: toggle ignored while selecting")
		return
	}
	log.Printf("eventloop: tracking %v", l.machine.TrackingEnabled())
}

func (l *Loop) startSelection() error {
	if l.machine.SelectionActive() {
		return ErrSelectionActive
	}
	screen := l.selectionScreen()
	if err := l.selector.Begin(screen); err != nil {
		l.report("Region selection failed", err)
		return err
	}
	l.machine.BeginSelection()
	log.Printf("eventloop: selection active on %v", screen)
	return nil
}

// selectionScreen is the display under the cursor, else the first display,
// else the fallback virtual rectangle.
func (l *Loop) selectionScreen() geometry.Rect {
	if s, ok := l.registry.At(l.cursor.Position()); ok {
		return s.Bounds
	}
	if surfaces := l.registry.List(); len(surfaces) > 0 {
		return surfaces[0].Bounds
	}
	return l.registry.Union()
}

func (l *Loop) cancelSelection() {
	if !l.machine.SelectionActive() {
		return
	}
	l.selector.Cancel()
	log.Printf("eventloop: selection cancelled, back to %s", l.machine.EndSelection())
}

func (l *Loop) handlePointer(ev overlay.PointerEvent) {
	if !l.machine.SelectionActive() {
		return
	}
	outcome, rect := l.selector.Handle(ev)
	switch outcome {
	case selector.Completed:
		state := l.machine.EndSelection()
		l.cfg.Source = rect
		log.Printf("eventloop: source rectangle set to %v, back to %s", rect, state)
		l.commit()
		if l.confirm != nil {
			l.confirm()
		}
	case selector.Cancelled:
		log.Printf("eventloop: selection cancelled from overlay, back to %s", l.machine.EndSelection())
	}
}

func (l *Loop) setTarget(id string) error {
	if _, err := l.registry.Lookup(id); err != nil {
		return err
	}
	if id == l.cfg.TargetDisplayID {
		return nil
	}
	l.cfg.TargetDisplayID = id
	log.Printf("eventloop: target display set to %s", id)
	l.commit()
	return nil
}

func (l *Loop) setScale(scale float64) error {
	if err := calibration.ValidateScale(scale); err != nil {
		return err
	}
	if scale == l.cfg.IndicatorScale {
		return nil
	}
	visible := l.indicator.Visible()
	if visible {
		l.indicator.Hide()
	}
	l.indicator.Resize(scale)
	if visible {
		l.indicator.Show()
	}
	l.cfg.IndicatorScale = scale
	log.Printf("eventloop: indicator scale set to %v", scale)
	l.commit()
	return nil
}

func (l *Loop) copyCalibration() error {
	if l.copyText == nil {
		return errors.New("clipboard not available")
	}
	if err := l.copyText(calibration.Encode(l.cfg)); err != nil {
		l.report("Copy failed", err)
		return err
	}
	return nil
}

// commit publishes the calibration to the movement loop and persists it.
// A failed write keeps the in-memory calibration.
func (l *Loop) commit() {
	l.tracker.Publish(l.cfg)
	if l.store == nil {
		return
	}
	if err := l.store.Save(l.cfg); err != nil {
		l.report("Calibration not saved", err)
	}
}

func (l *Loop) syncVisibility() {
	want := l.machine.TrackingEnabled()
	l.tracker.SetEnabled(want)
	if visible := l.indicator.Visible(); want && !visible {
		l.indicator.Show()
	} else if !want && visible {
		l.indicator.Hide()
	}
}

func (l *Loop) report(title string, err error) {
	log.Printf("ERROR: %s: %v", title, err)
	if l.notify != nil {
		l.notify(title, err.Error())
	}
}

func (l *Loop) changed() {
	if l.onChange != nil {
		l.onChange(l.Status())
	}
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	defer conn.Close()
	req := conn.Request()

	var cmd messages.Command
	switch req.Command {
	case singleinstance.CmdStatus:
		_ = conn.RespondSuccess(l.Status().String())
		return
	case singleinstance.CmdToggle:
		cmd = messages.ToggleTracking{}
	case singleinstance.CmdSelect:
		cmd = messages.StartSelection{}
	case singleinstance.CmdCancel:
		cmd = messages.CancelSelection{}
	case singleinstance.CmdTarget:
		cmd = messages.SetTarget{DisplayID: req.Arg}
	case singleinstance.CmdScale:
		scale, err := strconv.ParseFloat(req.Arg, 64)
		if err != nil {
			_ = conn.RespondError(err.Error())
			return
		}
		cmd = messages.SetScale{Scale: scale}
	default:
		_ = conn.RespondError("unsupported command " + req.Command)
		return
	}

	if err := l.Handle(cmd); err != nil {
		log.Printf("eventloop: delegated %s failed: %v", req, err)
		_ = conn.RespondError(err.Error())
		return
	}
	_ = conn.RespondSuccess(l.Status().String())
}

func (l *Loop) shutdown() {
	if l.machine.SelectionActive() {
		l.selector.Cancel()
		l.machine.EndSelection()
	}
	l.tracker.SetEnabled(false)
	if l.indicator.Visible() {
		l.indicator.Hide()
	}
	log.Printf("eventloop: stopped")
}
