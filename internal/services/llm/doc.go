// Package llm wraps the external classification endpoint: an OpenRouter-style
// chat-completions API asked to judge whether a thermal anomaly is an
// agricultural biomass fire. The client enforces JSON-only responses, retries
// transient failures with exponential backoff, and parses defensively.
package llm
