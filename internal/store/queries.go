package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/brewcat/internal/brew"
)

// Package operations

const packageColumns = `name, kind, installed_on, versions, installed_intentionally, size_bytes`

// ReplaceCatalog swaps the stored catalog for c in a single transaction.
// Readers see either the old or the new catalog, never a mix.
func (s *Store) ReplaceCatalog(c *brew.Catalog) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.Exec(`DELETE FROM packages`); err != nil {
		return wrapQueryErr(err, "failed to clear packages")
	}

	stmt, err := tx.Prepare(`INSERT INTO packages (` + packageColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, pkg := range c.Packages() {
		versionsJSON, err := json.Marshal(pkg.Versions)
		if err != nil {
			return fmt.Errorf("failed to marshal versions for %s: %w", pkg.Identity, err)
		}

		var installedOn sql.NullString
		if !pkg.InstalledOn.IsZero() {
			installedOn = sql.NullString{String: pkg.InstalledOn.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		var size sql.NullInt64
		if pkg.SizeBytes != nil {
			size = sql.NullInt64{Int64: *pkg.SizeBytes, Valid: true}
		}

		if _, err := stmt.Exec(
			pkg.Name,
			pkg.Kind.String(),
			installedOn,
			string(versionsJSON),
			pkg.InstalledIntentionally,
			size,
		); err != nil {
			return fmt.Errorf("failed to insert package %s: %w", pkg.Identity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (brew.Package, error) {
	var (
		pkg          brew.Package
		kind         string
		installedOn  sql.NullString
		versionsJSON string
		size         sql.NullInt64
	)

	if err := row.Scan(&pkg.Name, &kind, &installedOn, &versionsJSON, &pkg.InstalledIntentionally, &size); err != nil {
		return brew.Package{}, err
	}

	k, err := brew.ParseKind(kind)
	if err != nil {
		return brew.Package{}, fmt.Errorf("invalid kind for %s: %w", pkg.Name, err)
	}
	pkg.Kind = k

	if installedOn.Valid {
		pkg.InstalledOn, err = time.Parse(time.RFC3339Nano, installedOn.String)
		if err != nil {
			return brew.Package{}, fmt.Errorf("failed to parse installed_on for %s: %w", pkg.Name, err)
		}
	}

	if err := json.Unmarshal([]byte(versionsJSON), &pkg.Versions); err != nil {
		return brew.Package{}, fmt.Errorf("failed to unmarshal versions for %s: %w", pkg.Name, err)
	}

	if size.Valid {
		v := size.Int64
		pkg.SizeBytes = &v
	}

	return pkg, nil
}

// LoadCatalog returns the stored catalog.
func (s *Store) LoadCatalog() (*brew.Catalog, error) {
	rows, err := s.db.Query(`SELECT ` + packageColumns + ` FROM packages ORDER BY kind DESC, name`)
	if err != nil {
		return nil, wrapQueryErr(err, "failed to list packages")
	}
	defer rows.Close()

	catalog := brew.NewCatalog()
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package row: %w", err)
		}
		catalog.Add(pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}
	return catalog, nil
}

// GetPackage retrieves one package by identity.
func (s *Store) GetPackage(id brew.Identity) (*brew.Package, error) {
	row := s.db.QueryRow(`SELECT `+packageColumns+` FROM packages WHERE name = ? AND kind = ?`, id.Name, id.Kind.String())
	pkg, err := scanPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapQueryErr(err, "failed to get package %s", id)
	}
	return &pkg, nil
}

// FindPackages returns every package named name (a formula and a cask may share one).
func (s *Store) FindPackages(name string) ([]brew.Package, error) {
	rows, err := s.db.Query(`SELECT `+packageColumns+` FROM packages WHERE name = ? ORDER BY kind DESC`, name)
	if err != nil {
		return nil, wrapQueryErr(err, "failed to find package %s", name)
	}
	defer rows.Close()

	var pkgs []brew.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package row: %w", err)
		}
		pkgs = append(pkgs, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}
	return pkgs, nil
}

// CountPackages returns the number of stored packages per kind.
func (s *Store) CountPackages() (map[brew.Kind]int, error) {
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM packages GROUP BY kind`)
	if err != nil {
		return nil, wrapQueryErr(err, "failed to count packages")
	}
	defer rows.Close()

	counts := map[brew.Kind]int{brew.KindFormula: 0, brew.KindCask: 0}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		k, err := brew.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		counts[k] = n
	}
	return counts, rows.Err()
}

// Scan run operations

// BeginScanRun records the start of a scan and returns its ID.
func (s *Store) BeginScanRun(prefix string, strict bool) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO scan_runs (id, started_at, prefix, strict, status)
		VALUES (?, ?, ?, ?, ?)
	`, id, time.Now().UTC().Format(time.RFC3339Nano), prefix, strict, RunRunning)
	if err != nil {
		return "", wrapQueryErr(err, "failed to record scan run")
	}
	return id, nil
}

// FinishScanRun marks a run as succeeded, or failed when scanErr is non-nil.
func (s *Store) FinishScanRun(id string, packageCount int, scanErr error) error {
	status := RunSucceeded
	var errText sql.NullString
	if scanErr != nil {
		status = RunFailed
		errText = sql.NullString{String: scanErr.Error(), Valid: true}
	}

	result, err := s.db.Exec(`
		UPDATE scan_runs
		SET finished_at = ?, status = ?, package_count = ?, error = ?
		WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339Nano), status, packageCount, errText, id)
	if err != nil {
		return wrapQueryErr(err, "failed to finish scan run %s", id)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scan run %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListScanRuns returns up to limit runs, newest first.
func (s *Store) ListScanRuns(limit int) ([]*ScanRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, prefix, strict, status, package_count, error
		FROM scan_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, wrapQueryErr(err, "failed to list scan runs")
	}
	defer rows.Close()

	var runs []*ScanRun
	for rows.Next() {
		var (
			run        ScanRun
			startedAt  string
			finishedAt sql.NullString
			errText    sql.NullString
		)
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Prefix, &run.Strict, &run.Status, &run.PackageCount, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at for run %s: %w", run.ID, err)
		}
		if finishedAt.Valid {
			run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse finished_at for run %s: %w", run.ID, err)
			}
		}
		run.Error = errText.String

		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan runs: %w", err)
	}
	return runs, nil
}

// LastSuccessfulRun returns the most recent successful scan run.
func (s *Store) LastSuccessfulRun() (*ScanRun, error) {
	var (
		run        ScanRun
		startedAt  string
		finishedAt sql.NullString
	)
	err := s.db.QueryRow(`
		SELECT id, started_at, finished_at, prefix, strict, status, package_count
		FROM scan_runs
		WHERE status = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, RunSucceeded).Scan(&run.ID, &startedAt, &finishedAt, &run.Prefix, &run.Strict, &run.Status, &run.PackageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("successful scan run: %w", ErrNotFound)
	}
	if err != nil {
		return nil, wrapQueryErr(err, "failed to get last scan run")
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse finished_at: %w", err)
		}
	}
	return &run, nil
}
