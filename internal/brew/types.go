package brew

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

// Kind distinguishes formulae from casks.
type Kind int

const (
	KindFormula Kind = iota
	KindCask
)

// String returns the lowercase name used by brew itself.
func (k Kind) String() string {
	switch k {
	case KindFormula:
		return "formula"
	case KindCask:
		return "cask"
	default:
		return "unknown"
	}
}

// ParseKind converts "formula" or "cask" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "formula", "formulae":
		return KindFormula, nil
	case "cask", "casks":
		return KindCask, nil
	default:
		return 0, fmt.Errorf("unknown package kind %q (want formula or cask)", s)
	}
}

// RootKind identifies which store root a directory belongs to.
type RootKind int

const (
	RootUnknown RootKind = iota
	RootCellar
	RootCaskroom
)

// Store root directory names under the Homebrew prefix.
const (
	CellarDir   = "Cellar"
	CaskroomDir = "Caskroom"
)

// RootKindOf classifies a store root by its last path segment.
func RootKindOf(root string) RootKind {
	switch filepath.Base(filepath.Clean(root)) {
	case CellarDir:
		return RootCellar
	case CaskroomDir:
		return RootCaskroom
	default:
		return RootUnknown
	}
}

// DirName returns the container directory name for the root kind.
func (r RootKind) DirName() string {
	switch r {
	case RootCellar:
		return CellarDir
	case RootCaskroom:
		return CaskroomDir
	default:
		return ""
	}
}

// PackageKind maps a store root to the kind of package it holds.
func (r RootKind) PackageKind() (Kind, bool) {
	switch r {
	case RootCellar:
		return KindFormula, true
	case RootCaskroom:
		return KindCask, true
	default:
		return 0, false
	}
}

// Identity names a package uniquely within a catalog.
type Identity struct {
	Name string
	Kind Kind
}

func (id Identity) String() string {
	return id.Kind.String() + "/" + id.Name
}

// Package represents an installed Homebrew package (formula or cask) as found
// on disk.
type Package struct {
	Identity

	// InstalledOn is the creation time of the package directory. Zero when it
	// could not be read.
	InstalledOn time.Time

	// Versions lists the version directories in filesystem enumeration order.
	Versions []string

	// InstalledIntentionally is false for formulae pulled in as dependencies.
	InstalledIntentionally bool

	// SizeBytes is nil when the directory size could not be computed.
	SizeBytes *int64

	// Tap is informational and only filled for detail lookups.
	Tap string
}

// NewDetailPackage builds a record for on-demand lookups (search results,
// brew info). Such records have no versions and are never part of a scanned
// catalog.
func NewDetailPackage(name string, kind Kind) Package {
	return Package{
		Identity: Identity{Name: name, Kind: kind},
		Versions: []string{},
	}
}

// FirstVersion returns the first enumerated version, the one provenance is
// read from, or "" if there is none.
func (p Package) FirstVersion() string {
	if len(p.Versions) == 0 {
		return ""
	}
	return p.Versions[0]
}

// Size returns the size in bytes, or 0 if unknown.
func (p Package) Size() int64 {
	if p.SizeBytes == nil {
		return 0
	}
	return *p.SizeBytes
}

// Catalog is a set of packages keyed by identity.
type Catalog struct {
	packages map[Identity]Package
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{packages: make(map[Identity]Package)}
}

// Add inserts pkg. It returns false and keeps the existing record when the
// identity is already present.
func (c *Catalog) Add(pkg Package) bool {
	if _, exists := c.packages[pkg.Identity]; exists {
		return false
	}
	c.packages[pkg.Identity] = pkg
	return true
}

// Get looks up a package by identity.
func (c *Catalog) Get(id Identity) (Package, bool) {
	pkg, ok := c.packages[id]
	return pkg, ok
}

// Len returns the number of packages in the catalog.
func (c *Catalog) Len() int {
	return len(c.packages)
}

// Packages returns the catalog contents sorted by kind, then name.
func (c *Catalog) Packages() []Package {
	out := make([]Package, 0, len(c.packages))
	for _, pkg := range c.packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Merge adds every package of other to c. Catalogs from different store
// roots never share identities, so a collision is reported as an error.
func (c *Catalog) Merge(other *Catalog) error {
	for id, pkg := range other.packages {
		if _, exists := c.packages[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentity, id)
		}
		c.packages[id] = pkg
	}
	return nil
}

// CatalogFrom builds a catalog from a slice, dropping duplicate identities.
func CatalogFrom(pkgs []Package) *Catalog {
	c := NewCatalog()
	for _, pkg := range pkgs {
		c.Add(pkg)
	}
	return c
}
