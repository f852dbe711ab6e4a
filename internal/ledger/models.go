package ledger

import (
	"time"

	"firewatch/internal/physics"
)

// Outcome describes what an append did to the ledger.
type Outcome string

const (
	// OutcomeNew means the event id was not present and version 1 was written.
	OutcomeNew Outcome = "new"
	// OutcomeNoop means the latest version already carries identical content.
	OutcomeNoop Outcome = "noop"
	// OutcomeNewVersion means the content changed and a new version was appended.
	OutcomeNewVersion Outcome = "new-version"
)

// Event is one ledger row. Rows are append-only: corrections arrive as new
// versions of the same event id, never as updates in place.
type Event struct {
	EventID        string
	Version        int
	ObservedAt     time.Time
	Latitude       float64
	Longitude      float64
	Region         string
	FRPMW          float64
	FootprintM2    float64
	Classification string
	Confidence     float64
	Reason         string
	Suppressed     bool
	Members        []string
	Emissions      physics.Record
	RunID          string
	RecordedAt     time.Time
	ContentHash    string
	AuditHash      string
	PrevHash       string
}

// ScanRun records one pipeline invocation for operational history.
type ScanRun struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	WindowStart time.Time
	WindowEnd   time.Time
	Counts      RunCounts
	Error       string
}

// RunCounts are the per-run pipeline tallies.
type RunCounts struct {
	Ingested           int `json:"ingested"`
	Malformed          int `json:"malformed"`
	Deduplicated       int `json:"deduplicated"`
	VerifiedFarm       int `json:"verified_farm"`
	VerifiedIndustrial int `json:"verified_industrial"`
	VerifiedAmbiguous  int `json:"verified_ambiguous"`
	PersistedNew       int `json:"persisted_new"`
	PersistedNoop      int `json:"persisted_noop"`
	PersistedNewVer    int `json:"persisted_new_version"`
	Failed             int `json:"failed"`
}

// Filter narrows ledger reads. Zero values match everything.
type Filter struct {
	Since             time.Time
	Until             time.Time
	Region            string
	Classification    string
	IncludeSuppressed bool
	Limit             int
}
