package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"firewatch/internal/services"
)

const eventColumns = `event_id, version, observed_at, latitude, longitude, region,
    frp_mw, footprint_m2, classification, confidence, reason, suppressed,
    members_json, emissions_json, run_id, recorded_at,
    content_hash, audit_hash, prev_hash`

// Latest returns the highest version recorded for the event id.
func (s *Store) Latest(ctx context.Context, eventID string) (*Event, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM ledger_events WHERE event_id = ? ORDER BY version DESC LIMIT 1",
		eventID)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "persisting", "latest", eventID, nil)
	}
	return ev, err
}

// Versions returns every recorded version of the event id, oldest first.
func (s *Store) Versions(ctx context.Context, eventID string) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM ledger_events WHERE event_id = ? ORDER BY version ASC",
		eventID)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "persisting", "versions", eventID, nil)
	}
	return events, nil
}

// List returns the latest version of every event matching the filter, ordered
// by observation time.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Event, error) {
	var (
		clauses []string
		args    []any
	)
	clauses = append(clauses,
		"e.version = (SELECT MAX(version) FROM ledger_events WHERE event_id = e.event_id)")
	if !filter.Since.IsZero() {
		clauses = append(clauses, "e.observed_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	if !filter.Until.IsZero() {
		clauses = append(clauses, "e.observed_at < ?")
		args = append(args, filter.Until.UTC().Format(time.RFC3339))
	}
	if filter.Region != "" {
		clauses = append(clauses, "e.region = ?")
		args = append(args, filter.Region)
	}
	if filter.Classification != "" {
		clauses = append(clauses, "e.classification = ?")
		args = append(args, filter.Classification)
	}
	if !filter.IncludeSuppressed {
		clauses = append(clauses, "e.suppressed = 0")
	}

	query := "SELECT " + strings.ReplaceAll(eventColumns, "\n", " ") +
		" FROM ledger_events e WHERE " + strings.Join(clauses, " AND ") +
		" ORDER BY e.observed_at ASC, e.event_id ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		ev           Event
		observedAt   string
		recordedAt   string
		suppressed   int
		membersJSON  string
		emissionJSON string
	)
	err := row.Scan(
		&ev.EventID, &ev.Version, &observedAt, &ev.Latitude, &ev.Longitude, &ev.Region,
		&ev.FRPMW, &ev.FootprintM2, &ev.Classification, &ev.Confidence, &ev.Reason, &suppressed,
		&membersJSON, &emissionJSON, &ev.RunID, &recordedAt,
		&ev.ContentHash, &ev.AuditHash, &ev.PrevHash,
	)
	if err != nil {
		return nil, err
	}

	ev.Suppressed = suppressed != 0
	if ev.ObservedAt, err = time.Parse(time.RFC3339, observedAt); err != nil {
		return nil, fmt.Errorf("parse observed_at %q: %w", observedAt, err)
	}
	if ev.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	if err := json.Unmarshal([]byte(membersJSON), &ev.Members); err != nil {
		return nil, fmt.Errorf("unmarshal members: %w", err)
	}
	if err := json.Unmarshal([]byte(emissionJSON), &ev.Emissions); err != nil {
		return nil, fmt.Errorf("unmarshal emissions: %w", err)
	}
	return &ev, nil
}

func collectEvents(rows *sql.Rows) ([]*Event, error) {
	var events []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (s *Store) getVersionTx(ctx context.Context, tx *sql.Tx, eventID string, version int) (*Event, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM ledger_events WHERE event_id = ? AND version = ?",
		eventID, version)
	return scanEvent(row)
}
