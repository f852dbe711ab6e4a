package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// FIRMS contains configuration for the thermal-anomaly telemetry feed.
type FIRMS struct {
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	Products       []string `toml:"products"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Scan bounds the geographic box and default lookback for a pipeline run.
type Scan struct {
	MinLat       float64 `toml:"min_lat"`
	MinLon       float64 `toml:"min_lon"`
	MaxLat       float64 `toml:"max_lat"`
	MaxLon       float64 `toml:"max_lon"`
	LookbackDays int     `toml:"lookback_days"`
}

// Verifier contains connection settings for the classification endpoint.
type Verifier struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	Model           string  `toml:"model"`
	Referer         string  `toml:"referer"`
	Title           string  `toml:"title"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	ConfidenceFloor float64 `toml:"confidence_floor"`
}

// Overpass contains configuration for the OSM land-use lookup that feeds the
// verifier's context bundle.
type Overpass struct {
	Enabled        bool    `toml:"enabled"`
	BaseURL        string  `toml:"base_url"`
	RadiusMeters   int     `toml:"radius_meters"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MinPowerMW     float64 `toml:"min_power_mw"`
}

// Clustering contains the spatio-temporal merge thresholds.
type Clustering struct {
	SpatialKm     float64 `toml:"spatial_km"`
	TemporalHours float64 `toml:"temporal_hours"`
}

// Emissions selects the emission-factor profile and observation model.
type Emissions struct {
	Profile            string `toml:"profile"`
	ObservationSeconds int    `toml:"observation_seconds"`
}

// Workflow contains retry and concurrency settings for a scan run.
type Workflow struct {
	VerifyWorkers     int `toml:"verify_workers"`
	RetryMaxAttempts  int `toml:"retry_max_attempts"`
	RetryBaseSeconds  int `toml:"retry_base_seconds"`
	RetryMaxSeconds   int `toml:"retry_max_seconds"`
	StageRetryBudget  int `toml:"stage_retry_budget"`
	FetchTimeoutHours int `toml:"fetch_timeout_hours"`
}

// Telegram contains configuration for fire alert broadcasts.
type Telegram struct {
	BotToken        string   `toml:"bot_token"`
	ChatIDs         []string `toml:"chat_ids"`
	RequestTimeout  int      `toml:"request_timeout"`
	AlertRegions    []string `toml:"alert_regions"`
	MinAlertPowerMW float64  `toml:"min_alert_power_mw"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for firewatch.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - FIRMS: thermal-anomaly feed (NASA FIRMS area CSV API)
//   - Scan: geographic bounding box and default lookback
//   - Verifier: classification endpoint and confidence floor
//   - Overpass: OSM land-use context lookups
//   - Clustering: spatio-temporal merge thresholds
//   - Emissions: constants profile and observation duration
//   - Workflow: retry/backoff policy and worker pool sizing
//   - Telegram: alert broadcast settings
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	FIRMS      FIRMS      `toml:"firms"`
	Scan       Scan       `toml:"scan"`
	Verifier   Verifier   `toml:"verifier"`
	Overpass   Overpass   `toml:"overpass"`
	Clustering Clustering `toml:"clustering"`
	Emissions  Emissions  `toml:"emissions"`
	Workflow   Workflow   `toml:"workflow"`
	Telegram   Telegram   `toml:"telegram"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/firewatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("firewatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a scan run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the SQLite database location for the audit ledger.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.DataDir, "ledger.db")
}

// LockPath returns the flock path guarding the data directory against
// concurrent scans.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "scan.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
