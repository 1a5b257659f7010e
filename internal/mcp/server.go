package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/exert/internal/ipc"
	"github.com/1broseidon/exert/internal/tiling"
)

const (
	ServerName    = "exert"
	ServerVersion = "0.1.0"
)

// Daemon is the running window manager as reached over its socket.
type Daemon interface {
	Command(name, arg string) error
	GetStatus() (*ipc.StatusData, error)
	GetTree() (*tiling.Snapshot, error)
	GetMonitors() (*ipc.MonitorsData, error)
}

// Server exposes the window manager to MCP clients.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
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
		Description: "Report the window manager session: monitor count, workspace count, managed window count and the focused window.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_layout",
		Description: "Return the container tree of each workspace. Split nodes carry a direction and ratio; window nodes carry the window ID and, for workspaces on screen, their rectangle.",
	}, s.handleGetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the monitors with their geometry and the workspace each one displays.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_commands",
		Description: "List the command names accepted by run_command.",
	}, s.handleListCommands)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_command",
		Description: "Run a window manager command against the focused window or monitor, for example set-workspace 2 or resize left.",
	}, s.handleRunCommand)
}
