package ipc

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/manager"
	"github.com/1broseidon/wtm/internal/platform"
)

type fakeStatus struct {
	status manager.Status
}

func (f *fakeStatus) Status() manager.Status { return f.status }

type fakeReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeReloader) ReloadNow() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeReloader) set(err error) (calls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f.calls
}

func shortSocket(t *testing.T) string {
	t.Helper()
	// Unix socket paths are limited to ~100 bytes; t.TempDir can exceed that.
	dir, err := os.MkdirTemp("", "wtm-ipc")
	if err != nil {
		t.Fatalf("MkdirTemp() error: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "wtm.sock")
}

func startServer(t *testing.T, reloader ConfigReloader) (*Server, *Client, *event.Channel) {
	t.Helper()
	ch := event.NewChannel()
	status := &fakeStatus{status: manager.Status{
		Profile:  "Default",
		Profiles: []string{"Default", "Profile2", "Profile3", "Profile4", "Profile5", "Profile6"},
		Display:  "DISPLAY1",
		WorkArea: platform.Rect{Width: 1000, Height: 800},
		Rows:     2,
		Columns:  3,
	}}
	srv, err := NewServer(ServerOptions{
		SocketPath: shortSocket(t),
		Status:     status,
		Events:     ch,
		Reloader:   reloader,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, NewClientWithSocket(srv.SocketPath(), time.Second), ch
}

func TestGetStatus(t *testing.T) {
	_, client, _ := startServer(t, nil)

	st, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if !st.DaemonRunning {
		t.Fatalf("DaemonRunning = false")
	}
	if st.Profile != "Default" || st.Display != "DISPLAY1" || st.Columns != 3 {
		t.Fatalf("status = %+v", st.Status)
	}
	if st.WorkArea.Width != 1000 {
		t.Fatalf("work area = %v", st.WorkArea)
	}
	if err := client.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestHotkeyQueuesEvent(t *testing.T) {
	_, client, ch := startServer(t, nil)

	if err := client.Hotkey("Quick_Resize"); err != nil {
		t.Fatalf("Hotkey() error: %v", err)
	}
	ev, ok := ch.TryRecv()
	if !ok {
		t.Fatalf("no event queued")
	}
	if got, ok := ev.(event.HotkeyPressed); !ok || got.Kind != event.QuickResize {
		t.Fatalf("event = %#v, want quick resize hotkey", ev)
	}

	err := client.Hotkey("explode")
	if err == nil || !strings.Contains(err.Error(), "unknown hotkey command") {
		t.Fatalf("Hotkey(explode) error = %v", err)
	}
	if _, ok := ch.TryRecv(); ok {
		t.Fatalf("invalid hotkey queued an event")
	}
}

func TestSwitchProfile(t *testing.T) {
	_, client, ch := startServer(t, nil)

	if err := client.SwitchProfile("Profile3"); err != nil {
		t.Fatalf("SwitchProfile() error: %v", err)
	}
	ev, _ := ch.TryRecv()
	if got, ok := ev.(event.ProfileChange); !ok || got.Name != "Profile3" {
		t.Fatalf("event = %#v, want ProfileChange{Profile3}", ev)
	}

	if err := client.SwitchProfile("Nope"); err == nil || !strings.Contains(err.Error(), "Unknown profile") {
		t.Fatalf("SwitchProfile(Nope) error = %v", err)
	}
	if err := client.SwitchProfile(""); err == nil {
		t.Fatalf("SwitchProfile(\"\") succeeded")
	}
}

func TestReload(t *testing.T) {
	r := &fakeReloader{}
	_, client, _ := startServer(t, r)

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if calls := r.set(errors.New("margin: must be between 0 and 255")); calls != 1 {
		t.Fatalf("ReloadNow calls = %d, want 1", calls)
	}

	err := client.Reload()
	if err == nil || !strings.Contains(err.Error(), "margin") {
		t.Fatalf("Reload() error = %v, want validation message", err)
	}
}

func TestReload_Unavailable(t *testing.T) {
	_, client, _ := startServer(t, nil)
	if err := client.Reload(); err == nil {
		t.Fatalf("Reload() without reloader succeeded")
	}
}

func TestStopQueuesExit(t *testing.T) {
	_, client, ch := startServer(t, nil)

	if err := client.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	ev, _ := ch.TryRecv()
	if _, ok := ev.(event.Exit); !ok {
		t.Fatalf("event = %#v, want Exit", ev)
	}

	ch.Close()
	if err := client.Stop(); err == nil || !strings.Contains(err.Error(), "shutting down") {
		t.Fatalf("Stop() after close error = %v", err)
	}
}

func TestUnknownAndMalformedRequests(t *testing.T) {
	srv, _, _ := startServer(t, nil)

	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "unknown command", line: `{"command":"DANCE"}`, want: "Unknown command: DANCE"},
		{name: "not json", line: `hello`, want: "Invalid request"},
		{name: "missing command", line: `{}`, want: "missing command"},
		{name: "bad payload", line: `{"command":"HOTKEY","payload":"x"}`, want: "Invalid hotkey payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := net.Dial("unix", srv.SocketPath())
			if err != nil {
				t.Fatalf("Dial() error: %v", err)
			}
			defer conn.Close()
			if _, err := conn.Write([]byte(tt.line + "\n")); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			data, err := io.ReadAll(conn)
			if err != nil {
				t.Fatalf("ReadAll() error: %v", err)
			}
			if !strings.Contains(string(data), `"status":"ERROR"`) || !strings.Contains(string(data), tt.want) {
				t.Fatalf("response = %s, want error containing %q", data, tt.want)
			}
		})
	}
}

func TestStart_RefusesLiveSocketAndReplacesStaleOne(t *testing.T) {
	srv, _, ch := startServer(t, nil)

	second, err := NewServer(ServerOptions{
		SocketPath: srv.SocketPath(),
		Status:     &fakeStatus{},
		Events:     ch,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	if err := second.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("Start() error = %v, want ErrAlreadyRunning", err)
	}

	stale := shortSocket(t)
	if err := os.WriteFile(stale, nil, 0600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	third, _ := NewServer(ServerOptions{SocketPath: stale, Status: &fakeStatus{}, Events: ch})
	if err := third.Start(); err != nil {
		t.Fatalf("Start() over stale socket error: %v", err)
	}
	third.Stop()
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("socket not removed on Stop: %v", err)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientWithSocket(shortSocket(t), 100*time.Millisecond)
	err := client.Ping()
	if err == nil || !strings.Contains(err.Error(), "is the daemon running?") {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestNewServer_RequiresCollaborators(t *testing.T) {
	if _, err := NewServer(ServerOptions{SocketPath: shortSocket(t)}); err == nil {
		t.Fatalf("NewServer() without status and sink succeeded")
	}
}
