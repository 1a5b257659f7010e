// Package launcher starts external programs on behalf of the window manager.
package launcher

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Launcher runs command lines through a shell without waiting for them.
type Launcher struct {
	shell  string
	logger *slog.Logger
}

// New returns a launcher that runs commands with shell -c.
func New(shell string, logger *slog.Logger) *Launcher {
	if shell == "" {
		shell = "/bin/sh"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{shell: shell, logger: logger}
}

// Command builds the process for a command line. Children get their own
// process group so a signal to the manager does not reach them.
func (l *Launcher) Command(line string) *exec.Cmd {
	cmd := exec.Command(l.shell, "-c", line)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}

// Spawn starts line and returns once the process exists. The exit status is
// collected in the background.
func (l *Launcher) Spawn(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return fmt.Errorf("empty command")
	}
	cmd := l.Command(line)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn %q: %w", line, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("spawned command exited", "exec", line, "error", err)
		}
	}()
	return nil
}

// RunStartup spawns each startup command in order. Failures are logged and
// do not stop the rest.
func (l *Launcher) RunStartup(lines []string) {
	for _, line := range lines {
		if err := l.Spawn(line); err != nil {
			l.logger.Warn("startup command failed", "exec", line, "error", err)
			continue
		}
		l.logger.Info("startup command spawned", "exec", line)
	}
}
