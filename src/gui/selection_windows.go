//go:build windows

package gui

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"syscall"
	"unsafe"

	"github.com/kbinani/screenshot"
	"github.com/lxn/win"

	"laser-pointer/src/geometry"
	"laser-pointer/src/overlay"
)

const (
	overlayKeyPollTimerID    = 1
	overlayKeyPollIntervalMs = 25
)

// Selection is the full-display drag overlay. It shows a frozen capture of
// the display so the preview area stays visible while dragging. All fields
// below host are owned by the UI thread.
type Selection struct {
	host *Host
	sink overlay.PointerSink

	hwnd          win.HWND
	background    *image.RGBA
	dragging      bool
	anchor, end   geometry.Point
	escapeWasDown bool
	crossCursor   win.HCURSOR
}

var (
	selectionClass      = syscall.StringToUTF16Ptr("LaserPointerSelection")
	selectionRegistered bool
)

// ShowOn opens the overlay over bounds, in virtual-desktop coordinates.
func (s *Selection) ShowOn(bounds geometry.Rect) error {
	if bounds.Width() <= 0 || bounds.Height() <= 0 {
		return fmt.Errorf("cannot select on empty bounds %v", bounds)
	}
	bg, err := screenshot.CaptureRect(image.Rect(bounds.Left, bounds.Top, bounds.Right, bounds.Bottom))
	if err != nil {
		// the overlay still works on a blank background
		log.Printf("OVERLAY: screen capture failed: %v", err)
		bg = nil
	}
	return s.host.call(func() error { return s.create(bounds, bg) })
}

func (s *Selection) create(bounds geometry.Rect, bg *image.RGBA) error {
	s.destroy()
	if s.crossCursor == 0 {
		s.crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
	}
	if !selectionRegistered {
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			Style:         win.CS_HREDRAW | win.CS_VREDRAW,
			LpfnWndProc:   syscall.NewCallback(selectionWndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       s.crossCursor,
			LpszClassName: selectionClass,
		}
		if win.RegisterClassEx(&wc) == 0 {
			return errors.New("failed to register selection window class")
		}
		selectionRegistered = true
	}

	s.background = bg
	s.dragging = false
	s.escapeWasDown = false
	s.hwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
		selectionClass,
		syscall.StringToUTF16Ptr("Select preview region"),
		win.WS_POPUP|win.WS_VISIBLE,
		int32(bounds.Left), int32(bounds.Top), int32(bounds.Width()), int32(bounds.Height()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if s.hwnd == 0 {
		return errors.New("failed to create selection window")
	}
	log.Printf("OVERLAY: selection window %v on %v", s.hwnd, bounds)

	win.ShowWindow(s.hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(s.hwnd)
	win.BringWindowToTop(s.hwnd)
	win.SetFocus(s.hwnd)
	win.UpdateWindow(s.hwnd)

	if timerID := win.SetTimer(s.hwnd, overlayKeyPollTimerID, overlayKeyPollIntervalMs, 0); timerID == 0 {
		log.Printf("OVERLAY: Failed to start keyboard poll timer")
	}
	return nil
}

// Hide closes the overlay.
func (s *Selection) Hide() {
	s.host.do(s.destroy)
}

// Redraw paints the drag rectangle between anchor and current.
func (s *Selection) Redraw(anchor, current geometry.Point) {
	s.host.do(func() {
		s.anchor, s.end = anchor, current
		s.dragging = true
		if s.hwnd != 0 {
			win.InvalidateRect(s.hwnd, nil, false)
		}
	})
}

func (s *Selection) destroy() {
	if s.hwnd == 0 {
		return
	}
	win.KillTimer(s.hwnd, overlayKeyPollTimerID)
	if s.dragging {
		win.ReleaseCapture()
	}
	win.DestroyWindow(s.hwnd)
	s.hwnd = 0
	s.background = nil
	s.dragging = false
}

func (s *Selection) emit(kind overlay.PointerKind, p geometry.Point) {
	if s.sink != nil {
		s.sink(overlay.PointerEvent{Kind: kind, Pos: p})
	}
}

func selectionWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	var s *Selection
	if current != nil {
		s = current.selection
	}
	if s == nil || s.hwnd != hwnd {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_LBUTTONDOWN:
		p := pointFromLParam(lParam)
		win.SetCapture(hwnd)
		s.anchor, s.end = p, p
		s.dragging = true
		s.emit(overlay.PointerPress, p)
		win.InvalidateRect(hwnd, nil, false)
		return 0

	case win.WM_MOUSEMOVE:
		if s.dragging {
			p := pointFromLParam(lParam)
			s.end = p
			s.emit(overlay.PointerMove, p)
			win.InvalidateRect(hwnd, nil, false)
		}
		return 0

	case win.WM_LBUTTONUP:
		if s.dragging {
			win.ReleaseCapture()
			p := pointFromLParam(lParam)
			s.end = p
			s.dragging = false
			log.Printf("OVERLAY: mouse up at (%d, %d)", p.X, p.Y)
			s.emit(overlay.PointerRelease, p)
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		s.paint(hdc)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_SETCURSOR:
		if s.crossCursor != 0 {
			win.SetCursor(s.crossCursor)
			return 1
		}

	case win.WM_TIMER:
		if wParam == overlayKeyPollTimerID {
			s.pollEscape()
		}
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE {
			s.escapeWasDown = true
			log.Printf("OVERLAY: Escape pressed, cancelling selection")
			s.emit(overlay.PointerCancel, geometry.Point{})
		}
		return 0

	case win.WM_KEYUP:
		if wParam == win.VK_ESCAPE {
			s.escapeWasDown = false
		}
		return 0

	case win.WM_NCHITTEST:
		return uintptr(win.HTCLIENT)
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// pollEscape catches Escape when the overlay could not take keyboard focus.
func (s *Selection) pollEscape() {
	down, pressed := getAsyncKeyState(win.VK_ESCAPE)
	if !s.escapeWasDown && (down || pressed) {
		log.Printf("OVERLAY: Escape detected via async polling")
		s.emit(overlay.PointerCancel, geometry.Point{})
	}
	s.escapeWasDown = down
}

func (s *Selection) paint(hdc win.HDC) {
	var rc win.RECT
	win.GetClientRect(s.hwnd, &rc)
	if s.background != nil {
		drawBackground(hdc, s.background)
	} else {
		brush := win.GetStockObject(win.DKGRAY_BRUSH)
		procFillRect.Call(uintptr(hdc), uintptr(unsafe.Pointer(&rc)), uintptr(brush))
	}

	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, win.COLORREF(hintColor))
	win.TextOut(hdc, 16, 16, syscall.StringToUTF16Ptr(selectionHint), int32(len(selectionHint)))

	if s.dragging {
		drawDragRect(hdc, dragRect(s.anchor, s.end))
	}
}

func drawDragRect(hdc win.HDC, r geometry.Rect) {
	pen, _, _ := procCreatePen.Call(0, 3, selectionColor)
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))

	procRectangle.Call(uintptr(hdc), uintptr(r.Left), uintptr(r.Top), uintptr(r.Right), uintptr(r.Bottom))

	win.SelectObject(hdc, oldPen)
	win.SelectObject(hdc, oldBrush)
	win.DeleteObject(win.HGDIOBJ(pen))
}

// drawBackground blits img (RGBA) to hdc through a top-down BGRA DIB section.
func drawBackground(hdc win.HDC, img *image.RGBA) {
	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height),
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}

	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	// 32bpp rows are already DWORD aligned
	dst := unsafe.Slice((*byte)(pBits), width*height*4)
	for y := 0; y < height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+width*4]
		row := dst[y*width*4 : (y+1)*width*4]
		for x := 0; x < width*4; x += 4 {
			row[x] = src[x+2]
			row[x+1] = src[x+1]
			row[x+2] = src[x]
			row[x+3] = src[x+3]
		}
	}

	win.BitBlt(hdc, 0, 0, int32(width), int32(height), memDC, 0, 0, win.SRCCOPY)
}
