package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"firewatch/internal/services"
)

// Store manages the append-only event ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string

	// appendMu serializes appends so the audit chain stays linear even when
	// verification workers finish out of order.
	appendMu sync.Mutex
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records an event. If the event id is unknown it becomes version 1.
// If the latest version carries identical canonical content nothing is
// written. If the content differs a new version is appended; earlier versions
// are never touched.
func (s *Store) Append(ctx context.Context, ev Event) (Outcome, *Event, error) {
	if ev.EventID == "" {
		return "", nil, services.Wrap(services.ErrMalformedInput, "persisting", "append", "event id required", nil)
	}

	contentHash, err := ContentHash(ev)
	if err != nil {
		return "", nil, fmt.Errorf("hash event %s: %w", ev.EventID, err)
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var latestVersion int
	var latestContentHash string
	row := tx.QueryRowContext(ctx,
		"SELECT version, content_hash FROM ledger_events WHERE event_id = ? ORDER BY version DESC LIMIT 1",
		ev.EventID)
	switch err := row.Scan(&latestVersion, &latestContentHash); {
	case err == nil:
		if latestContentHash == contentHash {
			existing, getErr := s.getVersionTx(ctx, tx, ev.EventID, latestVersion)
			if getErr != nil {
				return "", nil, getErr
			}
			return OutcomeNoop, existing, nil
		}
	case errors.Is(err, sql.ErrNoRows):
		latestVersion = 0
	default:
		return "", nil, fmt.Errorf("query latest version: %w", err)
	}

	var prevHash string
	row = tx.QueryRowContext(ctx, "SELECT audit_hash FROM ledger_events ORDER BY id DESC LIMIT 1")
	if err := row.Scan(&prevHash); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("query chain head: %w", err)
	}

	stored := ev
	stored.Version = latestVersion + 1
	stored.RecordedAt = time.Now().UTC()
	stored.ContentHash = contentHash
	stored.PrevHash = prevHash
	stored.AuditHash = chainHash(prevHash, contentHash)

	membersJSON, err := json.Marshal(sortedMembers(stored.Members))
	if err != nil {
		return "", nil, fmt.Errorf("marshal members: %w", err)
	}
	emissionsJSON, err := json.Marshal(stored.Emissions)
	if err != nil {
		return "", nil, fmt.Errorf("marshal emissions: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_events (
            event_id, version, observed_at, latitude, longitude, region,
            frp_mw, footprint_m2, classification, confidence, reason, suppressed,
            members_json, emissions_json, run_id, recorded_at,
            content_hash, audit_hash, prev_hash
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.EventID,
		stored.Version,
		stored.ObservedAt.UTC().Format(time.RFC3339),
		stored.Latitude,
		stored.Longitude,
		stored.Region,
		stored.FRPMW,
		stored.FootprintM2,
		stored.Classification,
		stored.Confidence,
		stored.Reason,
		boolToInt(stored.Suppressed),
		string(membersJSON),
		string(emissionsJSON),
		stored.RunID,
		stored.RecordedAt.Format(time.RFC3339Nano),
		stored.ContentHash,
		stored.AuditHash,
		stored.PrevHash,
	)
	if err != nil {
		return "", nil, fmt.Errorf("insert event %s v%d: %w", stored.EventID, stored.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("commit append: %w", err)
	}

	if stored.Version == 1 {
		return OutcomeNew, &stored, nil
	}
	return OutcomeNewVersion, &stored, nil
}

func sortedMembers(members []string) []string {
	out := append([]string(nil), members...)
	if out == nil {
		out = []string{}
	}
	sort.Strings(out)
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
