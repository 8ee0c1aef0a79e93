package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/store"
)

// hintFor returns a remediation hint for a scan failure, or "".
func hintFor(err error) string {
	if errors.Is(err, store.ErrNotInitialized) {
		return "Run 'brewcat scan' to build the catalog."
	}

	var loadErr *brew.LoadError
	name := "<name>"
	if errors.As(err, &loadErr) && loadErr.Package != "" {
		name = loadErr.Package
	}

	kind, ok := brew.KindOf(err)
	if !ok {
		return ""
	}
	switch kind {
	case brew.AccessError:
		return "Check the permissions of the Homebrew prefix."
	case brew.FilteringError:
		return "The store root could not be listed. Check --prefix."
	case brew.NoVersionsInstalled:
		return fmt.Sprintf("The package folder holds no versions. Try 'brew reinstall %s' or remove the empty folder.", name)
	case brew.NotAFolder:
		return "Remove the stray file from the Cellar or Caskroom."
	case brew.ManifestDecodeError:
		return fmt.Sprintf("The install receipt is corrupt. Try 'brew reinstall %s'.", name)
	case brew.MissingManifestError:
		return fmt.Sprintf("The formula has no install receipt. Rerun without --strict or run 'brew reinstall %s'.", name)
	case brew.UnexpectedFolderError:
		return "Only Cellar and Caskroom can be scanned. Check --prefix."
	case brew.MalformedStructure:
		return "A package path points at a store root. The Homebrew prefix layout is damaged."
	}
	return ""
}

// FormatError renders err for the terminal, with a hint when one applies.
func FormatError(err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %v\n", err)
	if hint := hintFor(err); hint != "" {
		fmt.Fprintf(&sb, "Hint: %s\n", hint)
	}
	return sb.String()
}

// filterPackages applies the list filters. kind nil keeps both kinds;
// origin is "", "intentional" or "dependencies".
func filterPackages(pkgs []brew.Package, kind *brew.Kind, origin string) []brew.Package {
	out := make([]brew.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if kind != nil && pkg.Kind != *kind {
			continue
		}
		switch origin {
		case "intentional":
			if !pkg.InstalledIntentionally {
				continue
			}
		case "dependencies":
			if pkg.InstalledIntentionally {
				continue
			}
		}
		out = append(out, pkg)
	}
	return out
}
