package app

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewcat/internal/output"
	"github.com/blackwell-systems/brewcat/internal/scanner"
)

var (
	scanQuiet bool
	scanTable bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Scan the Cellar and Caskroom and rebuild the catalog",
		Long: `Scan every package folder under the Homebrew Cellar and Caskroom and
store the result as the new catalog.

Each package folder is loaded concurrently. The scan is all-or-nothing:
the first failure cancels the remaining work and the previous catalog is
kept. Every attempt, successful or not, is recorded in the scan history
shown by 'brewcat status'.

Formulae without INSTALL_RECEIPT.json are counted as dependency installs
unless --strict is set, in which case the scan fails.

The scan command should be run:
  • After installing brewcat for the first time
  • After installing or removing packages with brew (or run 'brewcat watch')`,
		Example: `  # Scan and show what changed
  brewcat scan

  # Scan and print the whole catalog
  brewcat scan --table

  # Strict scan of a specific prefix
  brewcat scan --strict --prefix /opt/homebrew`,
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "suppress output")
	scanCmd.Flags().BoolVar(&scanTable, "table", false, "print the full catalog after scanning")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	prefix, err := resolvePrefix(ctx)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var spinner *output.Spinner
	if !scanQuiet && isatty.IsTerminal(os.Stdout.Fd()) {
		spinner = output.NewSpinner(fmt.Sprintf("Scanning %s", prefix)).ShowElapsed()
		spinner.Start()
	}

	report, err := scanner.New(db, scanOptions()).ScanPackages(ctx, prefix)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanQuiet {
		return nil
	}

	pkgs := report.Catalog.Packages()
	fmt.Fprintf(out, "✓ Scanned %d packages in %s\n", len(pkgs), report.Elapsed.Round(time.Millisecond))
	fmt.Fprint(out, output.RenderPackageSummary(pkgs))
	fmt.Fprintln(out)

	if scanTable {
		fmt.Fprint(out, output.RenderPackageTable(pkgs))
		return nil
	}
	fmt.Fprint(out, output.RenderChanges(report.Changes))
	return nil
}
