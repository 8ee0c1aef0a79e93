package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/logging"
)

// ScanReport summarizes a successful ScanPackages call.
type ScanReport struct {
	RunID   string
	Prefix  string
	Catalog *brew.Catalog
	Changes Changes
	Elapsed time.Duration
}

// ScanPackages scans the Homebrew prefix and replaces the stored catalog.
//
// Every attempt is recorded as a scan run. When the scan fails the run is
// marked failed and the previously stored catalog is left untouched.
func (s *Scanner) ScanPackages(ctx context.Context, prefix string) (*ScanReport, error) {
	if s.store == nil {
		return nil, errors.New("scanner has no store")
	}
	log := logging.Get("scanner")
	start := time.Now()

	runID, err := s.store.BeginScanRun(prefix, s.opts.Strict)
	if err != nil {
		return nil, err
	}

	previous, err := s.store.LoadCatalog()
	if err != nil {
		s.finishRun(runID, 0, err)
		return nil, fmt.Errorf("failed to load stored catalog: %w", err)
	}

	catalog, err := s.ScanPrefix(ctx, prefix)
	if err != nil {
		s.finishRun(runID, 0, err)
		return nil, err
	}

	if err := s.store.ReplaceCatalog(catalog); err != nil {
		s.finishRun(runID, 0, err)
		return nil, err
	}
	s.finishRun(runID, catalog.Len(), nil)

	report := &ScanReport{
		RunID:   runID,
		Prefix:  prefix,
		Catalog: catalog,
		Changes: Diff(previous, catalog),
		Elapsed: time.Since(start),
	}
	log.Info("catalog updated",
		"run", runID,
		"packages", catalog.Len(),
		"added", len(report.Changes.Added),
		"removed", len(report.Changes.Removed),
		"updated", len(report.Changes.Updated),
		"elapsed", report.Elapsed)

	return report, nil
}

func (s *Scanner) finishRun(runID string, count int, scanErr error) {
	if err := s.store.FinishScanRun(runID, count, scanErr); err != nil {
		logging.Get("scanner").Warn("failed to record scan run", "run", runID, "error", err)
	}
}

// GetInventory returns the stored catalog without touching the filesystem.
func (s *Scanner) GetInventory() (*brew.Catalog, error) {
	if s.store == nil {
		return nil, errors.New("scanner has no store")
	}
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return catalog, nil
}
