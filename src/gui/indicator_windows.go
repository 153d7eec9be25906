//go:build windows

package gui

import (
	"errors"
	"log"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"laser-pointer/src/geometry"
	"laser-pointer/src/overlay"
)

// Indicator is a round, click-through, topmost window. Its state is kept in
// atomics so the movement ticker can read it without touching the UI thread.
type Indicator struct {
	host    *Host
	hwnd    win.HWND
	visible atomic.Bool
	size    atomic.Int32
	x, y    atomic.Int32
}

var indicatorClass = syscall.StringToUTF16Ptr("LaserPointerIndicator")

func (ind *Indicator) create() error {
	brush, _, _ := procCreateSolidBrush.Call(indicatorColor)
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(indicatorWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HbrBackground: win.HBRUSH(brush),
		LpszClassName: indicatorClass,
	}
	if win.RegisterClassEx(&wc) == 0 {
		return errors.New("failed to register indicator window class")
	}

	d := ind.size.Load()
	ind.hwnd = win.CreateWindowEx(
		win.WS_EX_LAYERED|win.WS_EX_TRANSPARENT|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_NOACTIVATE,
		indicatorClass,
		syscall.StringToUTF16Ptr("Laser"),
		win.WS_POPUP,
		0, 0, d, d,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if ind.hwnd == 0 {
		return errors.New("failed to create indicator window")
	}
	procSetLayeredWindowAttributes.Call(uintptr(ind.hwnd), 0, 255, lwaAlpha)
	ind.applyShape(d)
	log.Printf("gui: indicator window %v created, %dpx", ind.hwnd, d)
	return nil
}

// applyShape clips the window to a circle of diameter d. UI thread only.
func (ind *Indicator) applyShape(d int32) {
	rgn, _, _ := procCreateEllipticRgn.Call(0, 0, uintptr(d+1), uintptr(d+1))
	// the window owns the region after SetWindowRgn
	procSetWindowRgn.Call(uintptr(ind.hwnd), rgn, 1)
}

func (ind *Indicator) Show() {
	if ind.visible.Swap(true) {
		return
	}
	ind.host.do(func() {
		win.SetWindowPos(ind.hwnd, win.HWND_TOPMOST, ind.x.Load(), ind.y.Load(), 0, 0,
			win.SWP_NOSIZE|win.SWP_NOACTIVATE)
		win.ShowWindow(ind.hwnd, win.SW_SHOWNOACTIVATE)
	})
}

func (ind *Indicator) Hide() {
	if !ind.visible.Swap(false) {
		return
	}
	ind.host.do(func() {
		win.ShowWindow(ind.hwnd, win.SW_HIDE)
	})
}

// Move repositions the window. SWP_ASYNCWINDOWPOS keeps the caller from
// waiting on the UI thread.
func (ind *Indicator) Move(x, y int) {
	ind.x.Store(int32(x))
	ind.y.Store(int32(y))
	win.SetWindowPos(ind.hwnd, win.HWND_TOPMOST, int32(x), int32(y), 0, 0,
		win.SWP_NOSIZE|win.SWP_NOACTIVATE|swpAsyncWindowPos)
}

func (ind *Indicator) Resize(scale float64) {
	d := int32(overlay.IndicatorSize(scale).Width)
	ind.size.Store(d)
	ind.host.do(func() {
		win.SetWindowPos(ind.hwnd, 0, 0, 0, d, d, win.SWP_NOMOVE|win.SWP_NOZORDER|win.SWP_NOACTIVATE)
		ind.applyShape(d)
		win.InvalidateRect(ind.hwnd, nil, true)
	})
}

func (ind *Indicator) Visible() bool { return ind.visible.Load() }

func (ind *Indicator) Size() geometry.Size {
	d := int(ind.size.Load())
	return geometry.Size{Width: d, Height: d}
}

func indicatorWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_NCHITTEST:
		return ^uintptr(0) // HTTRANSPARENT
	case win.WM_MOUSEACTIVATE:
		return 3 // MA_NOACTIVATE
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
