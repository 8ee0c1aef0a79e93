package brew

import (
	"errors"
	"os"
	"path/filepath"
)

// Staleness counts how far a stored catalog has drifted from the store
// roots on disk. It only looks at package folder names, so upgrades in
// place are not detected.
type Staleness struct {
	New     int // folders on disk with no catalog entry
	Missing int // catalog entries whose folder is gone
}

// Stale reports whether any drift was found.
func (s Staleness) Stale() bool {
	return s.New > 0 || s.Missing > 0
}

// CheckStaleness compares catalog against the package folders under prefix.
// A missing Caskroom counts as empty; any other listing failure is returned.
func CheckStaleness(prefix string, catalog *Catalog) (Staleness, error) {
	var s Staleness
	onDisk := make(map[Identity]struct{})

	cellar, caskroom := StoreRoots(prefix)
	for _, root := range []struct {
		path string
		kind Kind
	}{{cellar, KindFormula}, {caskroom, KindCask}} {
		names, err := ListEntries(root.path)
		if err != nil {
			if root.kind == KindCask && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Staleness{}, err
		}
		for _, name := range names {
			if !IsDirectory(filepath.Join(root.path, name)) {
				continue
			}
			id := Identity{Name: name, Kind: root.kind}
			onDisk[id] = struct{}{}
			if _, ok := catalog.Get(id); !ok {
				s.New++
			}
		}
	}

	for _, pkg := range catalog.Packages() {
		if _, ok := onDisk[pkg.Identity]; !ok {
			s.Missing++
		}
	}
	return s, nil
}
