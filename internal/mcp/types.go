package mcp

import "github.com/1broseidon/exert/internal/ipc"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Session       string `json:"session"`
	Monitors      int    `json:"monitors"`
	Workspaces    int    `json:"workspaces"`
	Windows       int    `json:"windows"`
	Focused       uint32 `json:"focused,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// GetLayoutInput is the input for the get_layout tool.
type GetLayoutInput struct {
	Workspace *int `json:"workspace,omitempty" jsonschema:"Only return this workspace index. Omit for every workspace."`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []ipc.MonitorInfo `json:"monitors"`
}

// RunCommandInput is the input for the run_command tool.
type RunCommandInput struct {
	Command string `json:"command" jsonschema:"required,Command name, e.g. set-workspace, move, resize, toggle-floating"`
	Arg     string `json:"arg,omitempty" jsonschema:"Command argument: a workspace index for set-workspace and move, a side (left, right, up, down) for resize"`
}

// RunCommandOutput is the output for the run_command tool.
type RunCommandOutput struct {
	Command string `json:"command"`
	Arg     string `json:"arg,omitempty"`
	OK      bool   `json:"ok"`
}

// ListCommandsInput is the input for the list_commands tool.
type ListCommandsInput struct{}

// ListCommandsOutput is the output for the list_commands tool.
type ListCommandsOutput struct {
	Commands []string `json:"commands"`
}
