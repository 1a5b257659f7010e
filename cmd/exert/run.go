package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uber-go/tally"

	"github.com/1broseidon/exert/internal/config"
	"github.com/1broseidon/exert/internal/daemon"
	"github.com/1broseidon/exert/internal/hotkeys"
	"github.com/1broseidon/exert/internal/ipc"
	"github.com/1broseidon/exert/internal/launcher"
	"github.com/1broseidon/exert/internal/logging"
	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/runtimepath"
	"github.com/1broseidon/exert/internal/tiling"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the window manager (foreground)",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("debug", false, "Log at debug level regardless of log_level")
}

// session holds what a config reload replaces.
type session struct {
	mu       sync.Mutex
	path     string
	debug    bool
	level    *slog.LevelVar
	logger   *slog.Logger
	wm       *daemon.WM
	handler  *hotkeys.Handler
	launcher *launcher.Launcher
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	lockPath, err := runtimepath.LockPath()
	if err != nil {
		return err
	}
	lock, err := daemon.AcquireLock(lockPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	cfg := res.Config

	debug, _ := cmd.Flags().GetBool("debug")
	s := &session{path: path, debug: debug, level: new(slog.LevelVar)}
	if err := s.applyLevel(cfg.LogLevel); err != nil {
		return err
	}
	s.logger = logging.Init(s.level)
	if res.File != "" {
		s.logger.Info("configuration loaded", "path", res.File)
	} else {
		s.logger.Info("no config file, using defaults", "path", path)
	}
	if err := cfg.ApplyEnvironment(); err != nil {
		return err
	}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return err
	}
	defer backend.Disconnect()
	if err := backend.Announce("exert"); err != nil {
		return fmt.Errorf("another window manager is running: %w", err)
	}

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix: "exert",
		Tags:   map[string]string{"service": "exert"},
	}, time.Second)
	defer closer.Close()

	engine := tiling.NewEngine(backend, cfg.Settings, s.logger, scope)
	if err := engine.Start(); err != nil {
		return err
	}
	s.wm = daemon.NewWM(engine, daemon.WMConfig{
		Backend: backend,
		Windows: backend.Windows,
		Reload:  s.reload,
		Quit:    backend.Quit,
		Logger:  s.logger,
	})
	s.launcher = launcher.New(cfg.Shell, s.logger)
	s.handler = hotkeys.NewHandler(backend, s.logger)
	if err := s.bind(cfg); err != nil {
		return err
	}

	if err := backend.Manage(s.wm, s.logger); err != nil {
		return fmt.Errorf("failed to take over the display: %w", err)
	}

	sock, err := socketPath(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	super := daemon.NewSupervisor("exert", s.logger)
	daemon.Add(super, ipc.NewServer(sock, s.wm, s.logger))
	daemon.Add(super, daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.ReconcileInterval,
		Logger:   s.logger,
	}, s.wm, backend.Windows))
	daemon.Add(super, daemon.NewConfigWatcher(path, 0, s.reload, s.logger))
	superDone := super.ServeBackground(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					s.logger.Info("received SIGHUP, reloading config")
					if err := s.reload(); err != nil {
						s.logger.Error("config reload failed", "error", err)
					}
					continue
				}
				s.logger.Info("shutting down", "signal", sig.String())
				backend.Quit()
				return
			}
		}
	}()

	s.launcher.RunStartup(cfg.Startup)

	s.logger.Info("entering event loop", "session", engine.Status().Session)
	backend.EventLoop()

	cancel()
	s.handler.Unbind()
	if err := <-superDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *session) applyLevel(name string) error {
	level, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}
	if s.debug {
		level = slog.LevelDebug
	}
	s.level.Set(level)
	return nil
}

func (s *session) bind(cfg *config.Config) error {
	bindings, err := hotkeys.Bindings(cfg.Keybinds, s.wm, s.launcher, s.logger)
	if err != nil {
		return err
	}
	return s.handler.Bind(bindings)
}

// reload re-reads the config file and applies settings, keybinds, exports
// and the log level. The running layout is kept.
func (s *session) reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := config.LoadFromPath(s.path)
	if err != nil {
		return err
	}
	cfg := res.Config
	if err := s.applyLevel(cfg.LogLevel); err != nil {
		return err
	}
	if err := cfg.ApplyEnvironment(); err != nil {
		return err
	}
	s.launcher = launcher.New(cfg.Shell, s.logger)
	if err := s.bind(cfg); err != nil {
		return err
	}
	if err := s.wm.UpdateSettings(cfg.Settings); err != nil {
		return err
	}
	s.logger.Info("config reloaded", "keybinds", len(cfg.Keybinds))
	return nil
}
