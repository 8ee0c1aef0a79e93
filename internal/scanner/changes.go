package scanner

import (
	"slices"

	"github.com/blackwell-systems/brewcat/internal/brew"
)

// Changes describes how a freshly scanned catalog differs from the stored one.
type Changes struct {
	Added   []brew.Package
	Removed []brew.Package
	Updated []brew.Package // new record for packages whose versions or provenance changed
}

// Empty reports whether the two catalogs were equivalent.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Updated) == 0
}

// Total returns the number of changed packages.
func (c Changes) Total() int {
	return len(c.Added) + len(c.Removed) + len(c.Updated)
}

// Diff compares two catalogs. Creation time and size are ignored: they drift
// on every scan without the package itself changing.
func Diff(oldCat, newCat *brew.Catalog) Changes {
	var changes Changes

	for _, pkg := range newCat.Packages() {
		prev, exists := oldCat.Get(pkg.Identity)
		if !exists {
			changes.Added = append(changes.Added, pkg)
			continue
		}
		if !slices.Equal(prev.Versions, pkg.Versions) || prev.InstalledIntentionally != pkg.InstalledIntentionally {
			changes.Updated = append(changes.Updated, pkg)
		}
	}

	for _, pkg := range oldCat.Packages() {
		if _, exists := newCat.Get(pkg.Identity); !exists {
			changes.Removed = append(changes.Removed, pkg)
		}
	}

	return changes
}
