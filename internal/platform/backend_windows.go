//go:build windows

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	pickerClassName  = "wtm.picker"
	previewClassName = "wtm.preview"
)

// WindowsBackend owns one locked OS thread that runs the message loop. The
// picker and preview windows, hotkeys and the foreground hook all live on
// that thread; other goroutines reach it through invoke.
type WindowsBackend struct {
	logger *slog.Logger

	threadID uint32
	calls    chan func()
	done     chan struct{}

	hinstance    uintptr
	wndProc      uintptr
	winEventProc uintptr

	mu         sync.Mutex
	pickers    map[uintptr]PickerInput
	owned      map[uintptr]struct{}
	hotkeys    map[uintptr]func()
	nextHotkey uintptr
	// Foreground callbacks keyed by their event hook.
	watchers map[uintptr]func(WindowID)

	closeOnce sync.Once
}

var _ Backend = (*WindowsBackend)(nil)

// NewBackend starts the Win32 message loop thread.
func NewBackend(logger *slog.Logger) (Backend, error) {
	return NewWindowsBackend(logger)
}

// NewWindowsBackend starts the message loop and registers the window classes.
func NewWindowsBackend(logger *slog.Logger) (*WindowsBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &WindowsBackend{
		logger:   logger.With("component", "win32"),
		calls:    make(chan func(), 64),
		done:     make(chan struct{}),
		pickers:  make(map[uintptr]PickerInput),
		owned:    make(map[uintptr]struct{}),
		hotkeys:  make(map[uintptr]func()),
		watchers: make(map[uintptr]func(WindowID)),
	}
	b.wndProc = windows.NewCallback(b.windowProc)
	b.winEventProc = windows.NewCallback(b.foregroundProc)

	ready := make(chan error, 1)
	go b.loop(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return b, nil
}

func (b *WindowsBackend) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(b.done)

	b.threadID = windows.GetCurrentThreadId()

	// Force the thread message queue into existence before anyone posts.
	var msg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, 0)

	if err := b.registerClasses(); err != nil {
		ready <- err
		return
	}
	ready <- nil

	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if int32(ret) <= 0 {
			return
		}
		if msg.Hwnd == 0 {
			switch msg.Message {
			case wmApp:
				b.drainCalls()
				continue
			case wmHotkey:
				b.mu.Lock()
				fn := b.hotkeys[msg.WParam]
				b.mu.Unlock()
				if fn != nil {
					fn()
				}
				continue
			}
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func (b *WindowsBackend) drainCalls() {
	for {
		select {
		case fn := <-b.calls:
			fn()
		default:
			return
		}
	}
}

// post queues fn on the message loop thread.
func (b *WindowsBackend) post(fn func()) error {
	select {
	case <-b.done:
		return fmt.Errorf("message loop stopped")
	case b.calls <- fn:
	}
	ret, _, err := procPostThreadMessageW.Call(uintptr(b.threadID), wmApp, 0, 0)
	if ret == 0 {
		return fmt.Errorf("PostThreadMessageW: %w", err)
	}
	return nil
}

// invoke runs fn on the message loop thread and waits for it.
func (b *WindowsBackend) invoke(fn func() error) error {
	result := make(chan error, 1)
	if err := b.post(func() { result <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-b.done:
		return fmt.Errorf("message loop stopped")
	}
}

func (b *WindowsBackend) registerClasses() error {
	h, _, _ := procGetModuleHandleW.Call(0)
	b.hinstance = h
	cursor, _, _ := procLoadCursorW.Call(0, idcArrow)

	previewBrush, _, _ := procCreateSolidBrush.Call(uintptr(PreviewColor.COLORREF()))

	for _, c := range []struct {
		name       string
		background uintptr
	}{
		{pickerClassName, 0},
		{previewClassName, previewBrush},
	} {
		name, err := windows.UTF16PtrFromString(c.name)
		if err != nil {
			return err
		}
		wc := wndClassEx{
			LpfnWndProc:   b.wndProc,
			HInstance:     b.hinstance,
			HCursor:       cursor,
			HbrBackground: c.background,
			LpszClassName: name,
		}
		wc.CbSize = uint32(unsafe.Sizeof(wc))
		if ret, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); ret == 0 {
			return fmt.Errorf("RegisterClassExW %s: %w", c.name, err)
		}
	}
	return nil
}

// Run blocks until ctx is cancelled, then stops the message loop.
func (b *WindowsBackend) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		b.Close()
		return ctx.Err()
	case <-b.done:
		return fmt.Errorf("message loop exited")
	}
}

func (b *WindowsBackend) Close() {
	b.closeOnce.Do(func() {
		_ = b.invoke(func() error {
			b.mu.Lock()
			var hotkeys, hwnds []uintptr
			for id := range b.hotkeys {
				hotkeys = append(hotkeys, id)
			}
			for hwnd := range b.owned {
				hwnds = append(hwnds, hwnd)
			}
			b.mu.Unlock()

			for _, id := range hotkeys {
				procUnregisterHotKey.Call(0, id)
			}
			// DestroyWindow re-enters windowProc, so b.mu must be free here.
			for _, hwnd := range hwnds {
				procDestroyWindow.Call(hwnd)
			}
			return nil
		})
		procPostThreadMessageW.Call(uintptr(b.threadID), wmQuit, 0, 0)
	})
}

// ActiveDisplay returns the monitor nearest the mouse cursor.
func (b *WindowsBackend) ActiveDisplay() (Display, error) {
	var pt winPoint
	if ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); ret == 0 {
		return Display{}, fmt.Errorf("%w: GetCursorPos: %v", ErrNoDisplay, err)
	}
	packed := uintptr(uint32(pt.X)) | uintptr(uint32(pt.Y))<<32
	hmon, _, _ := procMonitorFromPoint.Call(packed, monitorDefaultToNearest)
	if hmon == 0 {
		return Display{}, ErrNoDisplay
	}

	var mi monitorInfoEx
	mi.CbSize = uint32(unsafe.Sizeof(mi))
	if ret, _, err := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&mi))); ret == 0 {
		return Display{}, fmt.Errorf("%w: GetMonitorInfoW: %v", ErrNoDisplay, err)
	}
	name := windows.UTF16ToString(mi.SzDevice[:])
	return Display{
		ID:       name,
		Name:     name,
		Bounds:   mi.RcMonitor.rect(),
		WorkArea: mi.RcWork.rect(),
	}, nil
}

func (b *WindowsBackend) ForegroundWindow() (WindowID, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return WindowID(hwnd), nil
}

func (b *WindowsBackend) WindowRect(id WindowID) (Rect, error) {
	var r winRect
	if ret, _, err := procGetWindowRect.Call(uintptr(id), uintptr(unsafe.Pointer(&r))); ret == 0 {
		return Rect{}, fmt.Errorf("GetWindowRect: %w", err)
	}
	return r.rect(), nil
}

func (b *WindowsBackend) MoveResize(id WindowID, bounds Rect, insertAfter WindowID) error {
	flags := uintptr(swpNoActivate)
	if insertAfter == 0 {
		flags |= swpNoZOrder
	}
	if b.isOwned(id) {
		return b.post(func() {
			if bounds.Width <= 0 || bounds.Height <= 0 {
				procShowWindow.Call(uintptr(id), swHide)
				return
			}
			procSetWindowPos.Call(uintptr(id), uintptr(insertAfter),
				uintptr(bounds.X), uintptr(bounds.Y), uintptr(bounds.Width), uintptr(bounds.Height),
				flags|swpShowWindow)
		})
	}
	ret, _, err := procSetWindowPos.Call(uintptr(id), uintptr(insertAfter),
		uintptr(bounds.X), uintptr(bounds.Y), uintptr(bounds.Width), uintptr(bounds.Height), flags)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos: %w", err)
	}
	return nil
}

func (b *WindowsBackend) Restore(id WindowID) error {
	procShowWindow.Call(uintptr(id), swRestore)
	return nil
}

func (b *WindowsBackend) Minimize(id WindowID) error {
	procShowWindow.Call(uintptr(id), swMinimize)
	return nil
}

// TransparentBorder compares the window rect with the DWM visible frame.
func (b *WindowsBackend) TransparentBorder(id WindowID) (int, int, error) {
	var outer, frame winRect
	if ret, _, err := procGetWindowRect.Call(uintptr(id), uintptr(unsafe.Pointer(&outer))); ret == 0 {
		return 0, 0, fmt.Errorf("GetWindowRect: %w", err)
	}
	hr, _, _ := procDwmGetWindowAttribute.Call(uintptr(id), dwmwaExtendedFrameBounds,
		uintptr(unsafe.Pointer(&frame)), unsafe.Sizeof(frame))
	if hr != 0 {
		return 0, 0, fmt.Errorf("DwmGetWindowAttribute: HRESULT 0x%08x", uint32(hr))
	}
	return int(frame.Left - outer.Left), int(outer.Bottom - frame.Bottom), nil
}

func (b *WindowsBackend) ShowAndFocus(id WindowID) error {
	if !b.isOwned(id) {
		procSetForegroundWindow.Call(uintptr(id))
		return nil
	}
	return b.post(func() {
		procShowWindow.Call(uintptr(id), swShow)
		procSetForegroundWindow.Call(uintptr(id))
	})
}

func (b *WindowsBackend) Invalidate(id WindowID) error {
	ret, _, err := procInvalidateRect.Call(uintptr(id), 0, 1)
	if ret == 0 {
		return fmt.Errorf("InvalidateRect: %w", err)
	}
	return nil
}

func (b *WindowsBackend) TrackMouseLeave(id WindowID) error {
	return b.post(func() {
		tme := trackMouseEvent{DwFlags: tmeLeave, HwndTrack: uintptr(id)}
		tme.CbSize = uint32(unsafe.Sizeof(tme))
		procTrackMouseEvent.Call(uintptr(unsafe.Pointer(&tme)))
	})
}

func (b *WindowsBackend) SpawnPickerWindow(ctx context.Context, bounds Rect, in PickerInput) error {
	var hwnd uintptr
	err := b.invoke(func() error {
		var err error
		hwnd, err = b.createWindow(pickerClassName, wsExTopmost|wsExToolWindow, bounds)
		if err != nil {
			return err
		}
		b.mu.Lock()
		b.pickers[hwnd] = in
		b.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	b.destroyOnDone(ctx, hwnd)
	in.WindowCreated(WindowID(hwnd))
	return nil
}

func (b *WindowsBackend) SpawnPreviewWindow(ctx context.Context, created func(WindowID)) error {
	var hwnd uintptr
	err := b.invoke(func() error {
		var err error
		hwnd, err = b.createWindow(previewClassName,
			wsExTopmost|wsExToolWindow|wsExLayered|wsExTransparent|wsExNoActivate, Rect{})
		if err != nil {
			return err
		}
		procSetLayeredWindowAttributes.Call(hwnd, 0, PreviewAlpha, lwaAlpha)
		return nil
	})
	if err != nil {
		return err
	}
	b.destroyOnDone(ctx, hwnd)
	created(WindowID(hwnd))
	return nil
}

func (b *WindowsBackend) createWindow(class string, exStyle uintptr, bounds Rect) (uintptr, error) {
	name, err := windows.UTF16PtrFromString(class)
	if err != nil {
		return 0, err
	}
	hwnd, _, err := procCreateWindowExW.Call(exStyle, uintptr(unsafe.Pointer(name)), 0, wsPopup,
		uintptr(bounds.X), uintptr(bounds.Y), uintptr(bounds.Width), uintptr(bounds.Height),
		0, 0, b.hinstance, 0)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW %s: %w", class, err)
	}
	b.mu.Lock()
	b.owned[hwnd] = struct{}{}
	b.mu.Unlock()
	return hwnd, nil
}

func (b *WindowsBackend) destroyOnDone(ctx context.Context, hwnd uintptr) {
	context.AfterFunc(ctx, func() {
		_ = b.post(func() {
			b.mu.Lock()
			delete(b.pickers, hwnd)
			delete(b.owned, hwnd)
			b.mu.Unlock()
			procDestroyWindow.Call(hwnd)
		})
	})
}

func (b *WindowsBackend) isOwned(id WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.owned[uintptr(id)]
	return ok
}

// WatchForeground installs an EVENT_SYSTEM_FOREGROUND hook for the lifetime
// of ctx.
func (b *WindowsBackend) WatchForeground(ctx context.Context, fn func(WindowID)) error {
	return b.invoke(func() error {
		hook, _, err := procSetWinEventHook.Call(eventSystemForeground, eventSystemForeground,
			0, b.winEventProc, 0, 0, winEventOutOfContext)
		if hook == 0 {
			return fmt.Errorf("SetWinEventHook: %w", err)
		}
		b.mu.Lock()
		b.watchers[hook] = fn
		b.mu.Unlock()

		context.AfterFunc(ctx, func() {
			_ = b.post(func() {
				b.mu.Lock()
				delete(b.watchers, hook)
				b.mu.Unlock()
				procUnhookWinEvent.Call(hook)
			})
		})
		return nil
	})
}

func (b *WindowsBackend) foregroundProc(hook, event, hwnd, idObject, idChild, thread, eventTime uintptr) uintptr {
	if uint32(event) != eventSystemForeground || int32(idObject) != objIDWindow || hwnd == 0 {
		return 0
	}
	b.mu.Lock()
	fn := b.watchers[hook]
	b.mu.Unlock()
	if fn != nil {
		fn(WindowID(hwnd))
	}
	return 0
}

func (b *WindowsBackend) RegisterHotkey(hk Hotkey, fn func()) error {
	return b.invoke(func() error {
		vk := uintptr(hk.Key)
		if !(hk.Key >= 'A' && hk.Key <= 'Z' || hk.Key >= '0' && hk.Key <= '9') {
			scan, _, _ := procVkKeyScanW.Call(uintptr(hk.Key))
			if int16(scan) == -1 {
				return fmt.Errorf("hotkey %s: no virtual key for %q", hk, hk.Key)
			}
			vk = scan & 0xFF
		}

		b.mu.Lock()
		b.nextHotkey++
		id := b.nextHotkey
		b.mu.Unlock()

		if ret, _, err := procRegisterHotKey.Call(0, id, hotkeyModifiers(hk.Modifiers), vk); ret == 0 {
			return fmt.Errorf("RegisterHotKey %s: %w", hk, err)
		}
		b.mu.Lock()
		b.hotkeys[id] = fn
		b.mu.Unlock()
		return nil
	})
}

func (b *WindowsBackend) windowProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	b.mu.Lock()
	in := b.pickers[hwnd]
	b.mu.Unlock()

	if in != nil {
		switch msg {
		case wmKeyDown, wmSysKeyDown:
			if k := keyFromVK(wParam); k != KeyUnknown {
				in.KeyDown(k)
				return 0
			}
		case wmKeyUp, wmSysKeyUp:
			if k := keyFromVK(wParam); k != KeyUnknown {
				in.KeyUp(k)
				return 0
			}
		case wmMouseMove:
			in.MouseMove(pointLParam(lParam))
			return 0
		case wmLButtonDown:
			in.MouseDown(pointLParam(lParam))
			return 0
		case wmLButtonUp:
			in.MouseUp(pointLParam(lParam))
			return 0
		case wmMouseLeave:
			in.MouseLeave()
			return 0
		case wmEraseBkgnd:
			return 1
		case wmPaint:
			var ps paintStruct
			hdc, _, _ := procBeginPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
			c := &gdiCanvas{hdc: hdc}
			c.FillRect(ps.RcPaint.rect(), PickerBackground)
			in.Paint(c)
			procEndPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
			return 0
		}
	}
	if msg == wmDestroy {
		return 0
	}
	ret, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
	return ret
}

// gdiCanvas paints with short-lived solid brushes.
type gdiCanvas struct {
	hdc uintptr
}

func (c *gdiCanvas) FillRect(r Rect, col Color) {
	c.withBrush(col, func(brush uintptr) {
		wr := toWinRect(r)
		procFillRect.Call(c.hdc, uintptr(unsafe.Pointer(&wr)), brush)
	})
}

func (c *gdiCanvas) FrameRect(r Rect, col Color) {
	c.withBrush(col, func(brush uintptr) {
		wr := toWinRect(r)
		procFrameRect.Call(c.hdc, uintptr(unsafe.Pointer(&wr)), brush)
	})
}

func (c *gdiCanvas) withBrush(col Color, fn func(brush uintptr)) {
	brush, _, _ := procCreateSolidBrush.Call(uintptr(col.COLORREF()))
	if brush == 0 {
		return
	}
	defer procDeleteObject.Call(brush)
	fn(brush)
}
