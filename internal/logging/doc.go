// Package logging wires slog into the pipeline with console and JSON
// handlers, standardized field names, and context-derived attributes so every
// stage logs the owning run and event identifiers consistently.
package logging
