package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RecordScanRun upserts the run history row for a pipeline invocation.
func (s *Store) RecordScanRun(ctx context.Context, run ScanRun) error {
	if run.RunID == "" {
		return fmt.Errorf("record scan run: run id required")
	}
	countsJSON, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("marshal run counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scan_runs (run_id, started_at, finished_at, status, window_start, window_end, counts_json, error)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_id) DO UPDATE SET
            finished_at = excluded.finished_at,
            status = excluded.status,
            counts_json = excluded.counts_json,
            error = excluded.error`,
		run.RunID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Status,
		run.WindowStart.UTC().Format(time.RFC3339),
		run.WindowEnd.UTC().Format(time.RFC3339),
		string(countsJSON),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("record scan run %s: %w", run.RunID, err)
	}
	return nil
}

// ListScanRuns returns the most recent runs, newest first.
func (s *Store) ListScanRuns(ctx context.Context, limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, status, window_start, window_end, counts_json, error
         FROM scan_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var (
			run         ScanRun
			startedAt   string
			finishedAt  string
			windowStart string
			windowEnd   string
			countsJSON  string
		)
		if err := rows.Scan(&run.RunID, &startedAt, &finishedAt, &run.Status, &windowStart, &windowEnd, &countsJSON, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finishedAt, err)
		}
		if run.WindowStart, err = time.Parse(time.RFC3339, windowStart); err != nil {
			return nil, fmt.Errorf("parse window_start %q: %w", windowStart, err)
		}
		if run.WindowEnd, err = time.Parse(time.RFC3339, windowEnd); err != nil {
			return nil, fmt.Errorf("parse window_end %q: %w", windowEnd, err)
		}
		if err := json.Unmarshal([]byte(countsJSON), &run.Counts); err != nil {
			return nil, fmt.Errorf("unmarshal run counts: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan runs: %w", err)
	}
	return runs, nil
}
