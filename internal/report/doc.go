// Package report aggregates ledger events into research-zone summaries with
// burned-area and social-cost estimates, exported as CSV or a terminal table.
package report
