package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/exert/internal/tiling"
)

//go:generate mockgen -source=server.go -destination=ipcmock/controller.go -package=ipcmock Controller

// Controller is the window manager as seen from the socket.
type Controller interface {
	Dispatch(cmd tiling.Command) error
	Status() tiling.Status
	Snapshot() (tiling.Snapshot, error)
	Monitors() []tiling.Monitor
	Reload() error
}

// readTimeout bounds how long a client may take to send its request.
const readTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	ctrl       Controller
	logger     *slog.Logger
	startTime  time.Time

	wg sync.WaitGroup
}

// NewServer creates a server for socketPath. Call Serve to listen.
func NewServer(socketPath string, ctrl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		logger:     logger,
		startTime:  time.Now(),
	}
}

func (s *Server) String() string {
	return "ipc-server"
}

// Serve listens until ctx is cancelled, then waits for open connections and
// removes the socket.
func (s *Server) Serve(ctx context.Context) error {
	// Remove existing socket if present
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	defer os.Remove(s.socketPath)

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		listener.Close()
	}()

	err = s.acceptLoop(ctx, listener)
	s.wg.Wait()
	return err
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
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

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(readTimeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		resp = s.handleCommand(req)
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("Failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandRun:
		return s.handleRun(req.Payload)
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetTree:
		return s.handleGetTree()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleRun(payload json.RawMessage) *Response {
	var p CommandPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid command payload: %v", err))
	}
	cmd, err := tiling.ParseCommand(p.Name, p.Arg)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	s.logger.Debug("IPC command", "name", cmd.Name(), "arg", cmd.Arg())
	if err := s.ctrl.Dispatch(cmd); err != nil {
		return NewErrorResponse(fmt.Sprintf("Command failed: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD")
	if err := s.ctrl.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		Status:        s.ctrl.Status(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetTree() *Response {
	snap, err := s.ctrl.Snapshot()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to read layout: %v", err))
	}
	resp, err := NewOKResponse(snap)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleGetMonitors returns information about all monitors
func (s *Server) handleGetMonitors() *Response {
	monitors := s.ctrl.Monitors()
	infos := make([]MonitorInfo, len(monitors))
	for i, m := range monitors {
		infos[i] = MonitorInfo{
			ID:        i,
			Name:      m.Name,
			X:         m.Rect.X,
			Y:         m.Rect.Y,
			Width:     m.Rect.Width,
			Height:    m.Rect.Height,
			Workspace: m.Workspace,
		}
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: infos})
	return resp
}
