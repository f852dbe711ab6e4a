package pipeline

import (
	"time"

	"firewatch/internal/detection"
	"firewatch/internal/ledger"
)

// Report summarizes one pipeline run.
type Report struct {
	RunID       string
	Window      detection.Window
	StartedAt   time.Time
	FinishedAt  time.Time
	Counts      ledger.RunCounts
	Alerted     int
	DryRun      bool
	FailedStage string
	Err         error
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
