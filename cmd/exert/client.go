package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/exert/internal/tiling"
)

var msgCmd = &cobra.Command{
	Use:   "msg <command> [arg]",
	Short: "Send a command to the running window manager",
	Long: "Send a command to the running window manager.\n\nCommands: " +
		strings.Join(tiling.CommandNames(), ", "),
	Args: cobra.RangeArgs(1, 2),
	RunE: runMsg,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List monitors and the workspace each displays",
	Args:  cobra.NoArgs,
	RunE:  runMonitors,
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the configuration file",
	Args:  cobra.NoArgs,
	RunE:  runReload,
}

func init() {
	rootCmd.AddCommand(msgCmd, statusCmd, monitorsCmd, reloadCmd)
}

func runMsg(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 2 {
		arg = args[1]
	}
	// Reject typos before dialing the daemon.
	parsed, err := tiling.ParseCommand(args[0], arg)
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	return client.Command(parsed.Name(), parsed.Arg())
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	status, err := client.GetStatus()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(out, "session:        %s\n", status.Session)
	fmt.Fprintf(out, "monitors:       %d\n", status.Monitors)
	fmt.Fprintf(out, "workspaces:     %d\n", status.Workspaces)
	fmt.Fprintf(out, "windows:        %d\n", status.Windows)
	if status.Focused != 0 {
		fmt.Fprintf(out, "focused:        0x%x\n", uint32(status.Focused))
	}
	fmt.Fprintf(out, "uptime_seconds: %d\n", status.UptimeSeconds)
	return nil
}

func runMonitors(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	data, err := client.GetMonitors()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, m := range data.Monitors {
		ws := "-"
		if m.Workspace != tiling.NoWorkspace {
			ws = fmt.Sprint(m.Workspace)
		}
		fmt.Fprintf(out, "%d  %-10s %dx%d+%d+%d  workspace %s\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y, ws)
	}
	return nil
}

func runReload(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	if err := client.Reload(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
	return nil
}
