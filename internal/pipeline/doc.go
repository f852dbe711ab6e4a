// Package pipeline orchestrates a scan: pull telemetry, normalize and
// cluster detections, verify each event semantically, quantify emissions, and
// persist to the audit ledger. Runs are one-shot and exclusive; a file lock
// prevents overlapping scans against the same data directory.
package pipeline
