package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/logging"
	"github.com/blackwell-systems/brewcat/internal/output"
	"github.com/blackwell-systems/brewcat/internal/store"
	"github.com/blackwell-systems/brewcat/internal/watcher"
)

var (
	statusRuns int

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show catalog, watcher and scan history status",
		Long: `Display the state of the catalog database, the watch daemon and the
most recent scans.

Shows:
  • Watch daemon state and PID
  • Database location and size
  • Formula and cask counts from the last successful scan
  • Package folders added or removed since that scan
  • Recent scan runs, including failed ones`,
		Example: `  brewcat status
  brewcat status --runs 10`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
)

func init() {
	statusCmd.Flags().IntVar(&statusRuns, "runs", 5, "number of recent scans to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	const label = "%-14s"

	pidFile := currentConfig().Watch.PIDFile
	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		pid, _ := watcher.ReadPID(pidFile)
		fmt.Fprintf(out, label+"running (PID %d)\n", "Watcher:", pid)
	} else {
		fmt.Fprintf(out, label+"stopped (run 'brewcat watch --daemon')\n", "Watcher:")
	}

	path, err := getDBPath()
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(out, label+"%s (not created yet)\n", "Database:", path)
		fmt.Fprintln(out, "\nRun 'brewcat scan' to build the catalog.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat database: %w", err)
	}
	fmt.Fprintf(out, label+"%s (%s)\n", "Database:", path, humanize.IBytes(uint64(info.Size())))

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.CountPackages()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, label+"%d formulae · %d casks\n", "Catalog:", counts[brew.KindFormula], counts[brew.KindCask])

	last, err := db.LastSuccessfulRun()
	switch {
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintf(out, label+"never\n", "Last scan:")
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, label+"%s · %s · %d packages\n", "Last scan:", humanize.Time(last.StartedAt), last.Prefix, last.PackageCount)
		if err := printDrift(out, db, last.Prefix); err != nil {
			logging.Get("app").Debug("drift check failed", "prefix", last.Prefix, "error", err)
		}
	}

	if statusRuns > 0 {
		runs, err := db.ListScanRuns(statusRuns)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, output.RenderScanRuns(runs))
	}
	return nil
}

// printDrift warns when package folders under prefix no longer match the
// stored catalog.
func printDrift(out io.Writer, db *store.Store, prefix string) error {
	catalog, err := db.LoadCatalog()
	if err != nil {
		return err
	}
	drift, err := brew.CheckStaleness(prefix, catalog)
	if err != nil {
		return err
	}
	if drift.Stale() {
		fmt.Fprintf(out, "%-14s%d new, %d removed since last scan (run 'brewcat scan')\n", "", drift.New, drift.Missing)
	}
	return nil
}
