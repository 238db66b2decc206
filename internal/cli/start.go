package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/winsuspend/winsuspend/internal/config"
	"github.com/winsuspend/winsuspend/internal/daemon"
	"github.com/winsuspend/winsuspend/internal/database"
	"github.com/winsuspend/winsuspend/internal/engine"
	"github.com/winsuspend/winsuspend/internal/logging"
	"github.com/winsuspend/winsuspend/internal/tracker"
	"github.com/winsuspend/winsuspend/internal/web"
	"github.com/winsuspend/winsuspend/pkg/integrations/clip"
	"github.com/winsuspend/winsuspend/pkg/integrations/proc"
	"github.com/winsuspend/winsuspend/pkg/inventory"
	"github.com/winsuspend/winsuspend/pkg/winsys"
)

const daemonChildEnv = "WINSUSPEND_DAEMON_CHILD"

func newStartCmd() *cobra.Command {
	var (
		foreground bool
		serve      bool
		port       int
	)

	cmd := &cobra.Command{
		Use:   "start [process-name...]",
		Short: "Start the suspend daemon",
		Long: `Start the daemon. With process names given, only applications whose
root process has one of those names are managed; without arguments every
windowed application is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Tracker.Targets = args
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}
			if running {
				return fmt.Errorf("daemon is already running (PID: %d)", pid)
			}

			if !foreground && os.Getenv(daemonChildEnv) != "1" {
				return daemonize(cfg, serve)
			}
			return runDaemon(cfg, dm, serve, port)
		},
	}

	cmd.Flags().BoolVar(&foreground, "foreground", false, "run in the foreground instead of detaching")
	cmd.Flags().BoolVar(&serve, "serve", false, "also serve the status web API")
	cmd.Flags().IntVar(&port, "port", 0, "web API port (overrides config)")
	return cmd
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon, serve bool, port int) error {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	inv, err := inventory.New()
	if err != nil {
		return err
	}
	defer inv.Close()
	log.Infow("window inventory initialized", "backend", inv.Name())

	var clipboard winsys.Clipboard
	if cfg.Tracker.CheckClipboard {
		reader, err := clip.New(cfg.Tracker.ClipboardTimeout)
		if err != nil {
			log.Warnw("clipboard guard disabled", "error", err)
		} else {
			clipboard = reader
		}
	}

	eng := engine.New(engine.Options{
		Inventory:      inv,
		Tree:           proc.NewTree(),
		Actuator:       proc.NewActuator(),
		Clipboard:      clipboard,
		DebounceCycles: cfg.Tracker.DebounceCycles,
		Targets:        cfg.Tracker.Targets,
		Logger:         log,
	})

	if err := dm.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer dm.RemovePID()

	repo := database.NewRepository(db)
	svc := tracker.NewService(cfg, repo, eng, inv.Name(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Infow("received shutdown signal")
		cancel()
		svc.Stop()
	}()

	var webServer *web.Server
	if serve {
		webServer = web.NewServer(cfg, repo, svc, log, port)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Errorw("web server error", "error", err)
			}
		}()
	}

	log.Infow("daemon starting", "pid", os.Getpid())
	log.Infof("configuration:\n%s", cfg.String())

	err = svc.Start(ctx)

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if serr := webServer.Shutdown(shutdownCtx); serr != nil {
			log.Warnw("error shutting down web server", "error", serr)
		}
	}

	if err != nil && err != context.Canceled {
		return err
	}
	log.Infow("daemon stopped")
	return nil
}

// daemonize re-executes the current binary detached from the terminal.
// The child recognizes itself through the environment marker and runs
// the daemon proper.
func daemonize(cfg *config.Config, serve bool) error {
	env := append(os.Environ(), daemonChildEnv+"=1")

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil},
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	process, err := os.StartProcess(exe, os.Args, procAttr)
	if err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	fmt.Printf("Daemon started (PID: %d)\n", process.Pid)
	if serve {
		fmt.Printf("Web API: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	if cfg.Log.File != "" {
		fmt.Printf("Logs: %s\n", cfg.Log.File)
	}
	return nil
}
