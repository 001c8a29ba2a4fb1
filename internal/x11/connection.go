package x11

import (
	"context"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	activeMu       sync.Mutex
	activeWatchers map[int]func(xproto.Window)
	nextWatcher    int
}

// NewConnection establishes a connection to the X11 server and initializes
// the keybind module and root window property tracking.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)
	configureIgnoreMods(xu)

	c := &Connection{
		XUtil:          xu,
		Root:           xu.RootWin(),
		activeWatchers: make(map[int]func(xproto.Window)),
	}

	if err := xwindow.New(xu, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to listen on root window: %w", err)
	}
	xevent.PropertyNotifyFun(c.onRootProperty).Connect(xu, c.Root)

	return c, nil
}

// Run services X events until ctx is cancelled.
func (c *Connection) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() {
		xevent.Quit(c.XUtil)
		// The loop only checks for quit after an event; touch a root
		// property to deliver one.
		_ = xprop.ChangeProp32(c.XUtil, c.Root, "_WTM_WAKE", "CARDINAL", 1)
	})
	defer stop()
	xevent.Main(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// GrabHotkey binds a global key sequence in keybind notation
// ("Control-Mod1-s") on the root window.
func (c *Connection) GrabHotkey(keySequence string, fn func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		fn()
	}).Connect(c.XUtil, c.Root, keySequence, true)
}

// WatchActiveWindow calls fn with the new _NET_ACTIVE_WINDOW on every change
// until ctx ends. Callbacks run on the event loop goroutine.
func (c *Connection) WatchActiveWindow(ctx context.Context, fn func(xproto.Window)) {
	c.activeMu.Lock()
	id := c.nextWatcher
	c.nextWatcher++
	c.activeWatchers[id] = fn
	c.activeMu.Unlock()

	context.AfterFunc(ctx, func() {
		c.activeMu.Lock()
		delete(c.activeWatchers, id)
		c.activeMu.Unlock()
	})
}

func (c *Connection) onRootProperty(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	name, err := xprop.AtomName(xu, ev.Atom)
	if err != nil || name != "_NET_ACTIVE_WINDOW" {
		return
	}
	win, err := c.GetActiveWindow()
	if err != nil {
		return
	}

	c.activeMu.Lock()
	watchers := make([]func(xproto.Window), 0, len(c.activeWatchers))
	for _, fn := range c.activeWatchers {
		watchers = append(watchers, fn)
	}
	c.activeMu.Unlock()

	for _, fn := range watchers {
		fn(win)
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the lock masks, including none.
func ignoreMasks(base []uint16) []uint16 {
	unique := make(map[uint16]struct{})
	unique[0] = struct{}{}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
