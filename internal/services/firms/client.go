package firms

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firewatch/internal/detection"
	"firewatch/internal/services"
)

const defaultHTTPTimeout = 30 * time.Second

// Config captures the runtime settings for the FIRMS area CSV API.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client pulls thermal-anomaly records from the NASA FIRMS area API.
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

// NewClient constructs a FIRMS client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Pull fetches up to dayRange days of detections for one product inside the
// bounding box. The feed is untrusted: rows come back as raw string records
// for the normalizer to validate.
func (c *Client) Pull(ctx context.Context, product string, box detection.BoundingBox, dayRange int) ([]detection.RawRecord, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, services.Wrap(services.ErrConfiguration, "fetching", "pull", "product required", nil)
	}
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "fetching", "pull", "api key required", nil)
	}
	if !box.Valid() {
		return nil, services.Wrap(services.ErrMalformedInput, "fetching", "pull", fmt.Sprintf("invalid bounding box %s", box), nil)
	}
	if dayRange < 1 {
		dayRange = 1
	}
	if dayRange > 10 {
		dayRange = 10
	}

	endpoint := fmt.Sprintf("%s/%s/%s/%s/%d", c.cfg.BaseURL, url.PathEscape(c.cfg.APIKey), url.PathEscape(product), box.String(), dayRange)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "fetching", "pull", "build request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "fetching", "pull", product, err)
		}
		return nil, services.Wrap(services.ErrTransient, "fetching", "pull", product, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, services.Wrap(services.ErrConfiguration, "fetching", "pull", fmt.Sprintf("%s: http %d (check api key)", product, resp.StatusCode), nil)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= http.StatusInternalServerError:
		return nil, services.Wrap(services.ErrTransient, "fetching", "pull", fmt.Sprintf("%s: http %d", product, resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, services.Wrap(services.ErrExternalService, "fetching", "pull", fmt.Sprintf("%s: http %d", product, resp.StatusCode), nil)
	}

	records, err := parseCSV(resp.Body, product)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "fetching", "parse", product, err)
	}
	return records, nil
}

// parseCSV reads the FIRMS CSV body. Column order varies between products, so
// fields are resolved by header name. Rows that cannot even be split are
// skipped here; content validation belongs to the normalizer.
func parseCSV(body io.Reader, product string) ([]detection.RawRecord, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["latitude"]; !ok {
		// Some FIRMS error responses are plain text with a single line.
		return nil, fmt.Errorf("unexpected response header: %s", strings.Join(header, ","))
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []detection.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		records = append(records, detection.RawRecord{
			SourceID:   product,
			Timestamp:  combineAcqTimestamp(field(row, "acq_date"), field(row, "acq_time")),
			Latitude:   field(row, "latitude"),
			Longitude:  field(row, "longitude"),
			PowerMW:    field(row, "frp"),
			ScanKm:     field(row, "scan"),
			TrackKm:    field(row, "track"),
			Confidence: field(row, "confidence"),
		})
	}
	return records, nil
}

// combineAcqTimestamp joins FIRMS acq_date ("2026-02-01") and acq_time
// (minutes-and-hours as an integer, e.g. "456" for 04:56) into the normalizer's
// timestamp format.
func combineAcqTimestamp(date, hhmm string) string {
	if date == "" || hhmm == "" {
		return ""
	}
	for len(hhmm) < 4 {
		hhmm = "0" + hhmm
	}
	if len(hhmm) != 4 {
		return ""
	}
	return fmt.Sprintf("%s %s:%s", date, hhmm[:2], hhmm[2:])
}
