package ledger

import (
	"context"
	"fmt"
)

// VerifyIssue describes one audit failure found while walking the chain.
type VerifyIssue struct {
	EventID string
	Version int
	Problem string
}

// VerifyReport summarizes a full audit of the ledger.
type VerifyReport struct {
	Rows   int
	Issues []VerifyIssue
}

// OK reports whether the audit found no issues.
func (r VerifyReport) OK() bool {
	return len(r.Issues) == 0
}

// Verify recomputes every row's content hash and walks the audit chain from
// the first row forward. Any edited, deleted, or reordered row surfaces as an
// issue on that row or the one after it.
func (s *Store) Verify(ctx context.Context) (VerifyReport, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM ledger_events ORDER BY id ASC")
	if err != nil {
		return VerifyReport{}, fmt.Errorf("query ledger for audit: %w", err)
	}
	defer rows.Close()

	var report VerifyReport
	prevHash := ""
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return VerifyReport{}, err
		}
		report.Rows++

		contentHash, err := ContentHash(*ev)
		if err != nil {
			return VerifyReport{}, err
		}
		if contentHash != ev.ContentHash {
			report.Issues = append(report.Issues, VerifyIssue{
				EventID: ev.EventID,
				Version: ev.Version,
				Problem: "content hash mismatch",
			})
		}
		if ev.PrevHash != prevHash {
			report.Issues = append(report.Issues, VerifyIssue{
				EventID: ev.EventID,
				Version: ev.Version,
				Problem: "chain broken: prev hash mismatch",
			})
		}
		if want := chainHash(ev.PrevHash, ev.ContentHash); want != ev.AuditHash {
			report.Issues = append(report.Issues, VerifyIssue{
				EventID: ev.EventID,
				Version: ev.Version,
				Problem: "audit hash mismatch",
			})
		}
		prevHash = ev.AuditHash
	}
	if err := rows.Err(); err != nil {
		return VerifyReport{}, fmt.Errorf("iterate ledger for audit: %w", err)
	}
	return report, nil
}
