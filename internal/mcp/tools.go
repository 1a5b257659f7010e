package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/exert/internal/tiling"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		Session:       status.Session,
		Monitors:      status.Monitors,
		Workspaces:    status.Workspaces,
		Windows:       status.Windows,
		Focused:       uint32(status.Focused),
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

// handleGetLayout returns JSON text: the tree is recursive, so it has no
// output schema.
func (s *Server) handleGetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args GetLayoutInput) (*mcpsdk.CallToolResult, any, error) {
	snap, err := s.daemon.GetTree()
	if err != nil {
		return nil, nil, err
	}
	if args.Workspace != nil {
		workspaces, err := pickWorkspace(snap.Workspaces, *args.Workspace)
		if err != nil {
			return nil, nil, err
		}
		snap.Workspaces = workspaces
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil, nil
}

func pickWorkspace(all []tiling.WorkspaceSnapshot, index int) ([]tiling.WorkspaceSnapshot, error) {
	for _, ws := range all {
		if ws.Index == index {
			return []tiling.WorkspaceSnapshot{ws}, nil
		}
	}
	return nil, fmt.Errorf("workspace %d does not exist", index)
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	return nil, ListMonitorsOutput{Monitors: data.Monitors}, nil
}

func (s *Server) handleListCommands(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListCommandsInput) (*mcpsdk.CallToolResult, ListCommandsOutput, error) {
	return nil, ListCommandsOutput{Commands: tiling.CommandNames()}, nil
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args RunCommandInput) (*mcpsdk.CallToolResult, RunCommandOutput, error) {
	// Decode locally so a typo is reported without a round trip.
	cmd, err := tiling.ParseCommand(args.Command, args.Arg)
	if err != nil {
		return nil, RunCommandOutput{}, err
	}
	if err := s.daemon.Command(cmd.Name(), cmd.Arg()); err != nil {
		return nil, RunCommandOutput{}, err
	}
	s.logger.Debug("mcp command", "name", cmd.Name(), "arg", cmd.Arg())
	return nil, RunCommandOutput{Command: cmd.Name(), Arg: cmd.Arg(), OK: true}, nil
}
