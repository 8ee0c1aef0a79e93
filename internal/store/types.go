package store

import "time"

// Scan run status values.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// ScanRun records one attempt to rebuild the catalog.
type ScanRun struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time // zero while running
	Prefix       string
	Strict       bool
	Status       string
	PackageCount int
	Error        string
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *ScanRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
