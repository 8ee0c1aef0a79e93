package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/logging"
	"github.com/blackwell-systems/brewcat/internal/store"
)

// Options controls how a store root is scanned.
type Options struct {
	// Strict makes a formula without INSTALL_RECEIPT.json fail the scan
	// instead of being counted as a dependency install.
	Strict bool

	// Workers caps the number of packages loaded at once. Zero or less
	// starts one goroutine per package.
	Workers int
}

// Scanner builds package catalogs from the Homebrew store and keeps the
// last successful catalog in the database.
type Scanner struct {
	store *store.Store
	opts  Options
}

// New creates a new Scanner. st may be nil when only ScanRoot/ScanPrefix are used.
func New(st *store.Store, opts Options) *Scanner {
	return &Scanner{store: st, opts: opts}
}

// ScanRoot loads every package directory under a Cellar or Caskroom.
//
// Each entry is loaded in its own goroutine. The first failure cancels the
// remaining loads and is returned; no partial catalog is ever returned.
func (s *Scanner) ScanRoot(ctx context.Context, root string) (*brew.Catalog, error) {
	log := logging.Get("scanner")
	rootKind := brew.RootKindOf(root)

	names, err := brew.ListEntries(root)
	if err != nil {
		log.Error("cannot list store root", "root", root, "error", err)
		return nil, &brew.LoadError{Kind: brew.FilteringError, Path: root, Err: err}
	}
	log.Debug("scanning store root", "root", root, "entries", len(names))

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Workers > 0 {
		g.SetLimit(s.opts.Workers)
	}

	results := make(chan brew.Package)
	catalog := brew.NewCatalog()
	collected := make(chan struct{})

	// Single writer: only this goroutine touches catalog until collected closes.
	go func() {
		defer close(collected)
		for pkg := range results {
			if !catalog.Add(pkg) {
				log.Warn("duplicate package identity ignored", "package", pkg.Identity)
			}
		}
	}()

	for _, name := range names {
		g.Go(func() error {
			pkg, err := s.loadPackage(gctx, rootKind, root, name)
			if err != nil {
				return err
			}
			select {
			case results <- pkg:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	err = g.Wait()
	close(results)
	<-collected

	if err != nil {
		// A cancelled root is the echo of a failure reported elsewhere.
		if errors.Is(err, context.Canceled) {
			log.Debug("package loading cancelled", "root", root)
		} else {
			log.Error("package loading failed", "root", root, "error", err)
		}
		return nil, err
	}

	log.Debug("store root scanned", "root", root, "packages", catalog.Len())
	return catalog, nil
}

// loadPackage turns one store root entry into a package record.
func (s *Scanner) loadPackage(ctx context.Context, rootKind brew.RootKind, root, name string) (brew.Package, error) {
	if err := ctx.Err(); err != nil {
		return brew.Package{}, err
	}

	packageDir := filepath.Join(root, name)

	versions, ok := brew.EnumerateVersions(packageDir)
	if !ok {
		if brew.IsDirectory(packageDir) {
			return brew.Package{}, &brew.LoadError{Kind: brew.NoVersionsInstalled, Package: name, Path: packageDir}
		}
		return brew.Package{}, &brew.LoadError{Kind: brew.NotAFolder, Package: name, Path: packageDir}
	}
	if len(versions) == 0 {
		return brew.Package{}, &brew.LoadError{Kind: brew.NoVersionsInstalled, Package: name, Path: packageDir}
	}

	intentional, err := brew.ResolveProvenance(rootKind, name, brew.VersionPath(packageDir, versions[0]), s.opts.Strict)
	if err != nil {
		return brew.Package{}, err
	}

	return brew.BuildPackage(ctx, name, rootKind, packageDir, versions, intentional), nil
}

// ScanPrefix scans the Cellar and Caskroom under a Homebrew prefix
// concurrently and merges the results. A prefix without a Caskroom (the
// usual case on Linux) yields no casks; every other failure is fatal.
func (s *Scanner) ScanPrefix(ctx context.Context, prefix string) (*brew.Catalog, error) {
	cellar, caskroom := brew.StoreRoots(prefix)

	var formulae, casks *brew.Catalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		formulae, err = s.ScanRoot(gctx, cellar)
		return err
	})
	g.Go(func() error {
		if _, err := os.Stat(caskroom); errors.Is(err, fs.ErrNotExist) {
			logging.Get("scanner").Debug("no Caskroom under prefix", "prefix", prefix)
			casks = brew.NewCatalog()
			return nil
		}
		var err error
		casks, err = s.ScanRoot(gctx, caskroom)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := formulae.Merge(casks); err != nil {
		return nil, fmt.Errorf("failed to merge catalogs: %w", err)
	}
	return formulae, nil
}
