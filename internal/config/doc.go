// Package config loads, normalizes, and validates the TOML configuration that
// drives a firewatch scan: feed credentials, clustering thresholds, emission
// profiles, retry policy, and alerting.
package config
