package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewcat/internal/brew"
)

var (
	searchCask bool

	searchCmd = &cobra.Command{
		Use:   "search <query>",
		Short: "Search brew for packages and mark the installed ones",
		Long: `Run 'brew search' for formulae (or casks with --cask) and print the
matching names. Names present in the catalog are marked with ✓.`,
		Example: `  brewcat search python
  brewcat search --cask firefox`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}
)

func init() {
	searchCmd.Flags().BoolVar(&searchCask, "cask", false, "search casks instead of formulae")
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind := brew.KindFormula
	if searchCask {
		kind = brew.KindCask
	}

	names, err := brew.Search(cmd.Context(), args[0], kind)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintf(out, "No %s matching %q.\n", kind, args[0])
		return nil
	}

	installed := installedNames(kind)
	for _, name := range names {
		mark := " "
		if installed[name] {
			mark = "✓"
		}
		fmt.Fprintf(out, "%s %s\n", mark, name)
	}
	return nil
}

// installedNames returns catalog names of one kind. A missing or empty
// catalog just means nothing is marked.
func installedNames(kind brew.Kind) map[string]bool {
	names := make(map[string]bool)
	db, err := openStore()
	if err != nil {
		return names
	}
	defer db.Close()

	catalog, err := db.LoadCatalog()
	if err != nil {
		return names
	}
	for _, pkg := range catalog.Packages() {
		if pkg.Kind == kind {
			names[pkg.Name] = true
		}
	}
	return names
}
