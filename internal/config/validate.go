package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFIRMS(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateVerifier(); err != nil {
		return err
	}
	if err := c.validateClustering(); err != nil {
		return err
	}
	if err := c.validateEmissions(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateFIRMS() error {
	if c.FIRMS.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/firewatch/config.toml"
		}
		return fmt.Errorf("firms.api_key is required. Set NASA_FIRMS_API_KEY env var or edit %s (create with 'firewatch config init')", defaultPath)
	}
	if len(c.FIRMS.Products) == 0 {
		return errors.New("firms.products must list at least one product")
	}
	return nil
}

func (c *Config) validateScan() error {
	s := c.Scan
	if s.MinLat < -90 || s.MaxLat > 90 || s.MinLon < -180 || s.MaxLon > 180 {
		return errors.New("scan bounding box exceeds geographic limits")
	}
	if s.MinLat >= s.MaxLat || s.MinLon >= s.MaxLon {
		return errors.New("scan bounding box must have min < max on both axes")
	}
	if s.LookbackDays < 1 || s.LookbackDays > 10 {
		return errors.New("scan.lookback_days must be between 1 and 10")
	}
	return nil
}

func (c *Config) validateVerifier() error {
	if c.Verifier.ConfidenceFloor < 0 || c.Verifier.ConfidenceFloor > 1 {
		return errors.New("verifier.confidence_floor must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateClustering() error {
	if c.Clustering.SpatialKm <= 0 {
		return errors.New("clustering.spatial_km must be positive")
	}
	if c.Clustering.TemporalHours <= 0 {
		return errors.New("clustering.temporal_hours must be positive")
	}
	return nil
}

func (c *Config) validateEmissions() error {
	if c.Emissions.ObservationSeconds <= 0 {
		return errors.New("emissions.observation_seconds must be positive")
	}
	if c.Emissions.Profile == "" {
		return errors.New("emissions.profile must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.VerifyWorkers <= 0 {
		return errors.New("workflow.verify_workers must be positive")
	}
	if c.Workflow.RetryMaxAttempts <= 0 {
		return errors.New("workflow.retry_max_attempts must be positive")
	}
	if c.Workflow.RetryBaseSeconds <= 0 || c.Workflow.RetryMaxSeconds < c.Workflow.RetryBaseSeconds {
		return errors.New("workflow retry backoff must satisfy 0 < retry_base_seconds <= retry_max_seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
