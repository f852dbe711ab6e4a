// Package ledger persists quantified fire events to an append-only,
// hash-audited SQLite store. Every row carries a sha256 of its canonical JSON
// content and is chained to the previous row, so tampering is detectable by
// replaying the chain. Corrections arrive as new versions of the same event
// id; existing rows are never rewritten.
package ledger
