package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/exert/internal/ipc"
	"github.com/1broseidon/exert/internal/runtimepath"
)

var rootCmd = &cobra.Command{
	Use:          "exert",
	Short:        "Tiling window manager for X11",
	Long:         "exert lays windows out in a binary tree per workspace and binds one workspace to each monitor.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/exert.sock)")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.config/exert/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// socketPath returns the --socket flag or the runtime default.
func socketPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("socket"); p != "" {
		return p, nil
	}
	return runtimepath.SocketPath()
}

func newClient(cmd *cobra.Command) (*ipc.Client, error) {
	sock, err := socketPath(cmd)
	if err != nil {
		return nil, err
	}
	return ipc.NewClientWithSocket(sock), nil
}
