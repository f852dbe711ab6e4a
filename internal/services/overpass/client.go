package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"firewatch/internal/services"
)

const defaultHTTPTimeout = 25 * time.Second

// Config captures the runtime settings for the Overpass land-use lookup.
type Config struct {
	BaseURL        string
	RadiusMeters   int
	TimeoutSeconds int
}

// Client queries the Overpass API for land-use context around a coordinate.
// Lookups are best-effort enrichment: callers degrade to an empty tag set when
// the service is unavailable.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an Overpass client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = 1000
	}
	client := &Client{
		cfg: Config{
			BaseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			RadiusMeters: cfg.RadiusMeters,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type overpassResponse struct {
	Elements []struct {
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// LandUse returns the distinct land-use tags found within the configured
// radius of the coordinate, sorted and deduplicated. An empty slice means no
// mapped features nearby.
func (c *Client) LandUse(ctx context.Context, lat, lon float64) ([]string, error) {
	if c.cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "verifying", "landuse", "base url required", nil)
	}

	query := fmt.Sprintf(`[out:json][timeout:15];(
way(around:%d,%.4f,%.4f)[landuse];
way(around:%d,%.4f,%.4f)[man_made];
node(around:%d,%.4f,%.4f)[man_made];
way(around:%d,%.4f,%.4f)[natural=water];
);out tags;`,
		c.cfg.RadiusMeters, lat, lon,
		c.cfg.RadiusMeters, lat, lon,
		c.cfg.RadiusMeters, lat, lon,
		c.cfg.RadiusMeters, lat, lon)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "verifying", "landuse", "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "verifying", "landuse", "overpass", err)
		}
		return nil, services.Wrap(services.ErrTransient, "verifying", "landuse", "overpass", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrExternalService
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			marker = services.ErrTransient
		}
		return nil, services.Wrap(marker, "verifying", "landuse", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, services.Wrap(services.ErrExternalService, "verifying", "landuse", "decode response", err)
	}

	seen := make(map[string]struct{})
	for _, element := range parsed.Elements {
		for _, key := range []string{"landuse", "man_made", "natural"} {
			if value, ok := element.Tags[key]; ok && value != "" {
				seen[key+"="+value] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// Industrial reports whether any tag in the set indicates industrial or
// built-up use. Used to bias classification of high-power detections.
func Industrial(tags []string) bool {
	for _, tag := range tags {
		switch tag {
		case "landuse=industrial", "landuse=quarry", "landuse=brownfield":
			return true
		}
		if strings.HasPrefix(tag, "man_made=") {
			return true
		}
	}
	return false
}
