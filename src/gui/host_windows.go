//go:build windows

package gui

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"laser-pointer/src/overlay"
)

const (
	wmCall            = 0x8000 + 1 // WM_APP + 1
	swpAsyncWindowPos = 0x4000
	lwaAlpha          = 0x2
)

var hwndMessage = win.HWND(^uintptr(2)) // HWND_MESSAGE

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	gdi32                          = windows.NewLazySystemDLL("gdi32.dll")
	procAllowSetForegroundWindow   = user32.NewProc("AllowSetForegroundWindow")
	procGetAsyncKeyState           = user32.NewProc("GetAsyncKeyState")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procSetWindowRgn               = user32.NewProc("SetWindowRgn")
	procFillRect                   = user32.NewProc("FillRect")
	procCreatePen                  = gdi32.NewProc("CreatePen")
	procCreateSolidBrush           = gdi32.NewProc("CreateSolidBrush")
	procCreateEllipticRgn          = gdi32.NewProc("CreateEllipticRgn")
	procRectangle                  = gdi32.NewProc("Rectangle")
)

// Host owns the UI thread. Every window is created and destroyed on it;
// other goroutines hand work over with do/call.
type Host struct {
	hwnd  win.HWND
	mu    sync.Mutex
	calls []func()
	done  chan struct{}

	indicator *Indicator
	selection *Selection
}

// current is the running host; window procedures are package functions.
var current *Host

// Start launches the UI thread and waits until it can accept work.
func Start() (*Host, error) {
	if current != nil {
		return nil, errors.New("gui host already started")
	}
	h := &Host{done: make(chan struct{})}
	current = h
	ready := make(chan error, 1)
	go h.run(ready)
	if err := <-ready; err != nil {
		current = nil
		return nil, err
	}
	return h, nil
}

func (h *Host) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(h.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in gui thread: %v", r)
		}
	}()

	className := syscall.StringToUTF16Ptr("LaserPointerHost")
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(hostWndProc),
		HInstance:     win.GetModuleHandle(nil),
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wc) == 0 {
		ready <- errors.New("failed to register host window class")
		return
	}
	h.hwnd = win.CreateWindowEx(0, className, nil, 0, 0, 0, 0, 0, hwndMessage, 0, win.GetModuleHandle(nil), nil)
	if h.hwnd == 0 {
		ready <- errors.New("failed to create host window")
		return
	}
	log.Printf("gui: UI thread ready, host hwnd %v", h.hwnd)
	ready <- nil

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 {
			log.Printf("gui: WM_QUIT received")
			return
		}
		if ret == -1 {
			log.Printf("gui: GetMessage error")
			return
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

// do queues f for the UI thread and returns immediately.
func (h *Host) do(f func()) {
	h.mu.Lock()
	h.calls = append(h.calls, f)
	h.mu.Unlock()
	win.PostMessage(h.hwnd, wmCall, 0, 0)
}

// call runs f on the UI thread and waits for its result.
func (h *Host) call(f func() error) error {
	errCh := make(chan error, 1)
	h.do(func() { errCh <- f() })
	select {
	case err := <-errCh:
		return err
	case <-h.done:
		return errors.New("gui host stopped")
	}
}

func (h *Host) drain() {
	h.mu.Lock()
	calls := h.calls
	h.calls = nil
	h.mu.Unlock()
	for _, f := range calls {
		f()
	}
}

// Close destroys every window and stops the UI thread.
func (h *Host) Close() {
	h.do(func() {
		if h.selection != nil {
			h.selection.destroy()
		}
		if h.indicator != nil && h.indicator.hwnd != 0 {
			win.DestroyWindow(h.indicator.hwnd)
		}
		win.DestroyWindow(h.hwnd)
		win.PostQuitMessage(0)
	})
	<-h.done
	current = nil
}

// Indicator creates the laser dot window at the given scale, hidden.
func (h *Host) Indicator(scale float64) (overlay.Indicator, error) {
	ind := &Indicator{host: h}
	ind.size.Store(int32(overlay.IndicatorSize(scale).Width))
	if err := h.call(ind.create); err != nil {
		return nil, fmt.Errorf("failed to create indicator: %w", err)
	}
	h.indicator = ind
	return ind, nil
}

// Selection returns the drag overlay. Pointer events go to sink from the UI thread.
func (h *Host) Selection(sink overlay.PointerSink) overlay.Selection {
	s := &Selection{host: h, sink: sink}
	h.selection = s
	return s
}

func hostWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	if msg == wmCall && current != nil {
		current.drain()
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func getAsyncKeyState(vk int32) (bool, bool) {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	s := uint16(state)
	return s&0x8000 != 0, s&0x0001 != 0
}
