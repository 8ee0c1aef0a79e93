package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/logging"
	"github.com/blackwell-systems/brewcat/internal/output"
	"github.com/blackwell-systems/brewcat/internal/scanner"
	"github.com/blackwell-systems/brewcat/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Rescan automatically when the Cellar or Caskroom changes",
		Long: `Watch the Homebrew Cellar and Caskroom and rebuild the catalog whenever
packages are installed, upgraded or removed.

Filesystem events are coalesced: a rescan starts once the store has been
quiet for the debounce period (watch.debounce, default 2s), and rescans
never overlap. A failed rescan is logged and recorded in the scan history;
the previous catalog stays in place.

Watch modes:
  • Foreground (default): run in the current terminal, Ctrl+C to stop
  • Daemon: run as a background process tracked by a PID file
  • Stop: stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  brewcat watch

  # Run as background daemon
  brewcat watch --daemon

  # Stop running daemon
  brewcat watch --stop`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: $XDG_STATE_HOME/brewcat/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: $XDG_STATE_HOME/brewcat/brewcat.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")
	watchCmd.MarkFlagsMutuallyExclusive("daemon", "stop")

	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	if watchPIDFile == "" {
		watchPIDFile = c.Watch.PIDFile
	}
	if watchLogFile == "" {
		watchLogFile = c.Log.Path
	}

	if watchStop {
		return stopWatchDaemon(cmd)
	}
	if watchDaemon {
		return startWatchDaemon(cmd)
	}

	if watchDaemonChild {
		if err := logging.Init(logging.Config{Level: c.Log.Level, Path: watchLogFile}); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	prefix, err := resolvePrefix(ctx)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	sc := scanner.New(db, scanOptions())
	log := logging.Get("watch")

	// Bring the catalog up to date before waiting for changes.
	if report, err := sc.ScanPackages(ctx, prefix); err != nil {
		log.Error("initial scan failed", "error", err)
	} else {
		log.Info("initial scan complete", "packages", report.Catalog.Len())
	}

	cellar, caskroom := brew.StoreRoots(prefix)
	w, err := watcher.New(watcher.Config{
		Roots:    []string{cellar, caskroom},
		Debounce: c.Watch.Debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			report, err := sc.ScanPackages(ctx, prefix)
			if err != nil {
				return err
			}
			log.Info("catalog refreshed",
				"packages", report.Catalog.Len(),
				"added", len(report.Changes.Added),
				"removed", len(report.Changes.Removed),
				"updated", len(report.Changes.Updated))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchDaemonChild {
		return watcher.RunDaemon(ctx, w, watchPIDFile)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (press Ctrl+C to stop)...\n", prefix)
	if err := w.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nWatcher stopped")
	return nil
}

// daemonArgs forwards the persistent flags the user set to the child.
func daemonArgs(cmd *cobra.Command) []string {
	args := []string{"watch", "--pid-file", watchPIDFile, "--log-file", watchLogFile}
	flags := cmd.Flags()
	if flags.Changed("db") {
		args = append(args, "--db", dbPath)
	}
	if flags.Changed("prefix") {
		args = append(args, "--prefix", prefixFlag)
	}
	if flags.Changed("strict") {
		args = append(args, fmt.Sprintf("--strict=%t", strictFlag))
	}
	if verbose {
		args = append(args, "--verbose")
	}
	return args
}

func startWatchDaemon(cmd *cobra.Command) error {
	// Fail before forking if the prefix is unusable.
	if _, err := resolvePrefix(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	spinner := output.NewSpinner("Starting daemon...")
	spinner.SetWriter(out)
	spinner.Start()

	pid, err := watcher.StartDaemon(watchPIDFile, watchLogFile, daemonArgs(cmd)...)
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage(fmt.Sprintf("✓ Daemon started (PID %d)", pid))

	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: brewcat watch --stop\n")
	return nil
}

func stopWatchDaemon(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	fmt.Fprintln(out, "✓ Daemon stopped")
	return nil
}
