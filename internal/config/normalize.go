package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFIRMS()
	c.normalizeVerifier()
	c.normalizeOverpass()
	c.normalizeTelegram()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFIRMS() {
	c.FIRMS.APIKey = strings.TrimSpace(c.FIRMS.APIKey)
	if c.FIRMS.APIKey == "" {
		if value, ok := os.LookupEnv("NASA_FIRMS_API_KEY"); ok {
			c.FIRMS.APIKey = strings.TrimSpace(value)
		}
	}
	c.FIRMS.BaseURL = strings.TrimRight(strings.TrimSpace(c.FIRMS.BaseURL), "/")
	if c.FIRMS.BaseURL == "" {
		c.FIRMS.BaseURL = defaultFIRMSBaseURL
	}
	if len(c.FIRMS.Products) == 0 {
		c.FIRMS.Products = defaultProducts()
	}
	if c.FIRMS.TimeoutSeconds <= 0 {
		c.FIRMS.TimeoutSeconds = defaultFIRMSTimeout
	}
}

func (c *Config) normalizeVerifier() {
	c.Verifier.APIKey = strings.TrimSpace(c.Verifier.APIKey)
	if c.Verifier.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Verifier.APIKey = strings.TrimSpace(value)
		}
	}
	c.Verifier.BaseURL = strings.TrimSpace(c.Verifier.BaseURL)
	if c.Verifier.BaseURL == "" {
		c.Verifier.BaseURL = defaultVerifierBaseURL
	}
	if c.Verifier.Model == "" {
		c.Verifier.Model = defaultVerifierModel
	}
	if c.Verifier.TimeoutSeconds <= 0 {
		c.Verifier.TimeoutSeconds = defaultVerifierTimeout
	}
}

func (c *Config) normalizeOverpass() {
	c.Overpass.BaseURL = strings.TrimSpace(c.Overpass.BaseURL)
	if c.Overpass.BaseURL == "" {
		c.Overpass.BaseURL = defaultOverpassBaseURL
	}
	if c.Overpass.RadiusMeters <= 0 {
		c.Overpass.RadiusMeters = defaultOverpassRadius
	}
	if c.Overpass.TimeoutSeconds <= 0 {
		c.Overpass.TimeoutSeconds = defaultOverpassTimeout
	}
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	if c.Telegram.BotToken == "" {
		if value, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
			c.Telegram.BotToken = strings.TrimSpace(value)
		}
	}
	cleaned := make([]string, 0, len(c.Telegram.ChatIDs))
	for _, id := range c.Telegram.ChatIDs {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	c.Telegram.ChatIDs = cleaned
	if c.Telegram.RequestTimeout <= 0 {
		c.Telegram.RequestTimeout = defaultTelegramTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
