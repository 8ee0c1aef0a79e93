package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/logging"
	"github.com/blackwell-systems/brewcat/internal/output"
)

var (
	showCask   bool
	showFormat string

	showCmd = &cobra.Command{
		Use:   "show <name>",
		Short: "Show one package",
		Long: `Show the catalog record of a package.

If the package is not in the catalog (not installed, or installed after
the last scan), brew is asked for its metadata instead. Such records have
no versions.`,
		Example: `  # A formula
  brewcat show wget

  # A cask that shares its name with a formula
  brewcat show docker --cask`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
)

func init() {
	showCmd.Flags().BoolVar(&showCask, "cask", false, "only consider casks")
	showCmd.Flags().StringVarP(&showFormat, "format", "o", "table", "output format: table, json or yaml")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	format, err := output.ParseFormat(showFormat)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	found, err := db.FindPackages(name)
	if err != nil {
		return err
	}

	var (
		pkgs     []brew.Package
		receipts []*brew.Receipt
	)
	for _, pkg := range found {
		if showCask && pkg.Kind != brew.KindCask {
			continue
		}
		receipt := readReceipt(ctx, pkg)
		if receipt != nil && receipt.Tap() != "" {
			pkg.Tap = receipt.Tap()
		}
		pkgs = append(pkgs, pkg)
		receipts = append(receipts, receipt)
	}

	fromBrew := false
	if len(pkgs) == 0 {
		kind := brew.KindFormula
		if showCask {
			kind = brew.KindCask
		}
		detail, err := brew.GetPackageInfo(ctx, name, kind)
		if err != nil {
			return fmt.Errorf("%s is not in the catalog and brew could not describe it: %w", name, err)
		}
		pkgs = append(pkgs, *detail)
		receipts = append(receipts, nil)
		fromBrew = true
	}

	return writeShow(cmd.OutOrStdout(), format, pkgs, receipts, fromBrew)
}

func writeShow(out io.Writer, format output.Format, pkgs []brew.Package, receipts []*brew.Receipt, fromBrew bool) error {
	if format != output.FormatTable {
		return output.WritePackages(out, format, pkgs)
	}
	for i, pkg := range pkgs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, output.RenderPackageDetail(pkg, receipts[i]))
	}
	if fromBrew {
		fmt.Fprintln(out, "\n(not in catalog; details from brew info)")
	}
	return nil
}

// readReceipt reads the install receipt of a formula's first version.
// Casks and unreadable receipts yield nil.
func readReceipt(ctx context.Context, pkg brew.Package) *brew.Receipt {
	if pkg.Kind != brew.KindFormula || len(pkg.Versions) == 0 {
		return nil
	}
	prefix, err := resolvePrefix(ctx)
	if err != nil {
		return nil
	}
	cellar, _ := brew.StoreRoots(prefix)
	receipt, err := brew.ReadReceipt(brew.VersionPath(filepath.Join(cellar, pkg.Name), pkg.FirstVersion()))
	if err != nil {
		logging.Get("app").Debug("no install receipt", "package", pkg.Identity, "error", err)
		return nil
	}
	return receipt
}
