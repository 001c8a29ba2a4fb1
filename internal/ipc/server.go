package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/manager"
	"github.com/1broseidon/wtm/internal/runtimepath"
)

// ErrAlreadyRunning is returned by Start when another daemon answers on the
// socket.
var ErrAlreadyRunning = errors.New("wtm daemon is already running")

// StatusSource provides the snapshot served by GET_STATUS.
type StatusSource interface {
	Status() manager.Status
}

// Sink receives the events produced by IPC commands.
type Sink interface {
	Send(ev event.Event) bool
}

// ConfigReloader re-reads the configuration and queues it for the dispatch
// loop.
type ConfigReloader interface {
	ReloadNow() error
}

// ServerOptions configure a Server.
type ServerOptions struct {
	// SocketPath defaults to runtimepath.SocketPath.
	SocketPath string
	Status     StatusSource
	Events     Sink
	Reloader   ConfigReloader
	Logger     *slog.Logger
}

// Server handles IPC requests from clients. It never touches grid state;
// every command that changes something becomes an event on the dispatch
// channel.
type Server struct {
	socketPath   string
	listener     net.Listener
	status       StatusSource
	events       Sink
	reloader     ConfigReloader
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Status == nil || opts.Events == nil {
		return nil, errors.New("ipc: server requires a status source and an event sink")
	}
	socketPath := opts.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		socketPath: socketPath,
		status:     opts.Status,
		events:     opts.Events,
		reloader:   opts.Reloader,
		logger:     logger.With("component", "ipc"),
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections. A stale socket left by a
// crashed daemon is removed; a live one makes Start fail.
func (s *Server) Start() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("%w (socket %s)", ErrAlreadyRunning, s.socketPath)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	reader := bufio.NewReader(conn)

	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandHotkey:
		return s.handleHotkey(req.Payload)
	case CommandProfile:
		return s.handleProfile(req.Payload)
	case CommandReload:
		return s.handleReload()
	case CommandStop:
		return s.handleStop()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		Status:        s.status.Status(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, err := NewOKResponse(status)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleHotkey(payload json.RawMessage) *Response {
	var req HotkeyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid hotkey payload: %v", err))
	}
	kind, err := event.ParseHotkeyKind(req.Kind)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.send(event.HotkeyPressed{Kind: kind})
}

func (s *Server) handleProfile(payload json.RawMessage) *Response {
	var req ProfilePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid profile payload: %v", err))
	}
	if req.Name == "" {
		return NewErrorResponse("name is required")
	}
	if profiles := s.status.Status().Profiles; !slices.Contains(profiles, req.Name) {
		return NewErrorResponse(fmt.Sprintf("Unknown profile: %s", req.Name))
	}
	return s.send(event.ProfileChange{Name: req.Name})
}

func (s *Server) handleReload() *Response {
	if s.reloader == nil {
		return NewErrorResponse("reload is not available")
	}
	if err := s.reloader.ReloadNow(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleStop() *Response {
	s.logger.Info("stop requested over IPC")
	return s.send(event.Exit{})
}

func (s *Server) send(ev event.Event) *Response {
	if !s.events.Send(ev) {
		return NewErrorResponse("daemon is shutting down")
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener, waits for in-flight connections and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
