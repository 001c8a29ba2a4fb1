// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/1broseidon/wtm/internal/platform"
)

// Move records a single MoveResize call.
type Move struct {
	ID          platform.WindowID
	Bounds      platform.Rect
	InsertAfter platform.WindowID
}

// Picker is a picker window created through SpawnPickerWindow.
type Picker struct {
	ID     platform.WindowID
	Bounds platform.Rect
	Input  platform.PickerInput
	Ctx    context.Context
}

// Backend is a scripted, thread-safe window system.
type Backend struct {
	mu sync.Mutex

	display    platform.Display
	displayErr error
	foreground platform.WindowID
	rects      map[platform.WindowID]platform.Rect
	borders    map[platform.WindowID][2]int
	nextID     platform.WindowID

	Moves       []Move
	Restored    []platform.WindowID
	Minimized   []platform.WindowID
	Focused     []platform.WindowID
	Invalidated []platform.WindowID
	Tracked     []platform.WindowID
	Pickers     []*Picker
	Previews    []platform.WindowID
	previewCtx  []context.Context
	watchers    []watcher
	hotkeys     map[platform.Hotkey]func()
}

type watcher struct {
	ctx context.Context
	fn  func(platform.WindowID)
}

var _ platform.Backend = (*Backend)(nil)

// New returns a backend with a single 1000x800 display at the origin.
func New() *Backend {
	area := platform.Rect{X: 0, Y: 0, Width: 1000, Height: 800}
	return &Backend{
		display: platform.Display{
			ID:       "DISPLAY1",
			Name:     "DISPLAY1",
			Bounds:   area,
			WorkArea: area,
		},
		rects:   make(map[platform.WindowID]platform.Rect),
		borders: make(map[platform.WindowID][2]int),
		hotkeys: make(map[platform.Hotkey]func()),
		nextID:  1000,
	}
}

// SetDisplay replaces the active display.
func (b *Backend) SetDisplay(d platform.Display) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.display = d
}

// SetDisplayError makes ActiveDisplay fail with err until cleared with nil.
func (b *Backend) SetDisplayError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.displayErr = err
}

// AddWindow registers a window with its outer rect and transparent border.
func (b *Backend) AddWindow(id platform.WindowID, r platform.Rect, dx, dy int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rects[id] = r
	b.borders[id] = [2]int{dx, dy}
}

// SetForeground changes the foreground window and notifies live watchers.
func (b *Backend) SetForeground(id platform.WindowID) {
	b.mu.Lock()
	b.foreground = id
	watchers := append([]watcher(nil), b.watchers...)
	b.mu.Unlock()

	for _, w := range watchers {
		if w.ctx.Err() == nil {
			w.fn(id)
		}
	}
}

// PressHotkey fires the callback registered for hk.
func (b *Backend) PressHotkey(hk platform.Hotkey) bool {
	b.mu.Lock()
	fn, ok := b.hotkeys[hk]
	b.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

// Hotkeys returns the registered combinations.
func (b *Backend) Hotkeys() []platform.Hotkey {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Hotkey, 0, len(b.hotkeys))
	for hk := range b.hotkeys {
		out = append(out, hk)
	}
	return out
}

// LastPicker returns the most recently spawned picker window.
func (b *Backend) LastPicker() *Picker {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Pickers) == 0 {
		return nil
	}
	return b.Pickers[len(b.Pickers)-1]
}

// LastMove returns the most recent MoveResize call for id.
func (b *Backend) LastMove(id platform.WindowID) (Move, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.Moves) - 1; i >= 0; i-- {
		if b.Moves[i].ID == id {
			return b.Moves[i], true
		}
	}
	return Move{}, false
}

// LiveWatchers counts foreground watchers whose context is still open.
func (b *Backend) LiveWatchers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, w := range b.watchers {
		if w.ctx.Err() == nil {
			n++
		}
	}
	return n
}

func (b *Backend) ActiveDisplay() (platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.displayErr != nil {
		return platform.Display{}, b.displayErr
	}
	return b.display, nil
}

func (b *Backend) ForegroundWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.foreground, nil
}

func (b *Backend) WindowRect(id platform.WindowID) (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.rects[id]
	if !ok {
		return platform.Rect{}, fmt.Errorf("window %d not found", id)
	}
	return r, nil
}

func (b *Backend) MoveResize(id platform.WindowID, bounds platform.Rect, insertAfter platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Moves = append(b.Moves, Move{ID: id, Bounds: bounds, InsertAfter: insertAfter})
	b.rects[id] = bounds
	return nil
}

func (b *Backend) Restore(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Restored = append(b.Restored, id)
	return nil
}

func (b *Backend) Minimize(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Minimized = append(b.Minimized, id)
	return nil
}

func (b *Backend) TransparentBorder(id platform.WindowID) (int, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	border := b.borders[id]
	return border[0], border[1], nil
}

func (b *Backend) ShowAndFocus(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Focused = append(b.Focused, id)
	return nil
}

func (b *Backend) Invalidate(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Invalidated = append(b.Invalidated, id)
	return nil
}

func (b *Backend) TrackMouseLeave(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Tracked = append(b.Tracked, id)
	return nil
}

func (b *Backend) SpawnPickerWindow(ctx context.Context, bounds platform.Rect, in platform.PickerInput) error {
	b.mu.Lock()
	b.nextID++
	p := &Picker{ID: b.nextID, Bounds: bounds, Input: in, Ctx: ctx}
	b.Pickers = append(b.Pickers, p)
	b.rects[p.ID] = bounds
	b.mu.Unlock()

	in.WindowCreated(p.ID)
	return nil
}

func (b *Backend) SpawnPreviewWindow(ctx context.Context, created func(platform.WindowID)) error {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.Previews = append(b.Previews, id)
	b.previewCtx = append(b.previewCtx, ctx)
	b.mu.Unlock()

	created(id)
	return nil
}

func (b *Backend) WatchForeground(ctx context.Context, fn func(platform.WindowID)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watchers = append(b.watchers, watcher{ctx: ctx, fn: fn})
	return nil
}

func (b *Backend) RegisterHotkey(hk platform.Hotkey, fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.hotkeys[hk]; exists {
		return fmt.Errorf("hotkey %s already registered", hk)
	}
	b.hotkeys[hk] = fn
	return nil
}

func (b *Backend) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (b *Backend) Close() {}

// Recorder is a Canvas that records draw calls.
type Recorder struct {
	Fills  []Draw
	Frames []Draw
}

// Draw is a single recorded draw call.
type Draw struct {
	Rect  platform.Rect
	Color platform.Color
}

func (r *Recorder) FillRect(rect platform.Rect, c platform.Color) {
	r.Fills = append(r.Fills, Draw{Rect: rect, Color: c})
}

func (r *Recorder) FrameRect(rect platform.Rect, c platform.Color) {
	r.Frames = append(r.Frames, Draw{Rect: rect, Color: c})
}
