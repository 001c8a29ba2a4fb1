// Package mcp exposes the running daemon to MCP clients over stdio. Every
// tool is a thin wrapper over the IPC client.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wtm/internal/ipc"
)

const (
	ServerName    = "wtm"
	ServerVersion = "0.1.0"
)

// Controller is the daemon surface the tools drive. *ipc.Client satisfies it.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	Hotkey(kind string) error
	SwitchProfile(name string) error
}

// Server is the MCP server for wtm.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to ctl.
func NewServer(ctl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ctl:    ctl,
		logger: logger.With("component", "mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the daemon state: active profile and display, grid rows and columns, whether the picker is open, the window that receives placements and the rect remembered for maximize toggling.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_picker",
		Description: "Open the zone picker over the foreground window. Does nothing when the picker is already open.",
	}, s.handleOpenPicker)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "quick_resize",
		Description: "Open the zone picker in quick mode: it closes by itself after the first placement.",
	}, s.handleQuickResize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Toggle the foreground window between the full grid area and its previous rect.",
	}, s.handleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize the foreground window.",
	}, s.handleMinimize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_profile",
		Description: "Switch the active grid profile. Each profile remembers its own grid size per monitor.",
	}, s.handleSwitchProfile)
}
