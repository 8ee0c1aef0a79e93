package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/output"
	"github.com/blackwell-systems/brewcat/internal/scanner"
)

var (
	listKind         string
	listIntentional  bool
	listDependencies bool
	listFormat       string

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List packages in the stored catalog",
		Long: `List the packages recorded by the last successful scan.

The catalog is read from the database; the filesystem is not touched.
Run 'brewcat scan' first.`,
		Example: `  # Everything
  brewcat list

  # Formulae installed on request
  brewcat list --kind formula --intentional

  # Dependency installs as YAML
  brewcat list --dependencies --format yaml`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "", "only show formula or cask packages")
	listCmd.Flags().BoolVar(&listIntentional, "intentional", false, "only show packages installed on request")
	listCmd.Flags().BoolVar(&listDependencies, "dependencies", false, "only show packages installed as dependencies")
	listCmd.Flags().StringVarP(&listFormat, "format", "o", "table", "output format: table, json or yaml")
	listCmd.MarkFlagsMutuallyExclusive("intentional", "dependencies")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listFormat)
	if err != nil {
		return err
	}

	var kind *brew.Kind
	if listKind != "" {
		k, err := brew.ParseKind(listKind)
		if err != nil {
			return err
		}
		kind = &k
	}

	origin := ""
	switch {
	case listIntentional:
		origin = "intentional"
	case listDependencies:
		origin = "dependencies"
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := scanner.New(db, scanOptions()).GetInventory()
	if err != nil {
		return err
	}

	pkgs := filterPackages(catalog.Packages(), kind, origin)
	out := cmd.OutOrStdout()

	if err := output.WritePackages(out, format, pkgs); err != nil {
		return err
	}
	if format == output.FormatTable && len(pkgs) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, output.RenderPackageSummary(pkgs))
	}
	return nil
}
