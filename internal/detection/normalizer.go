package detection

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"firewatch/internal/logging"
)

// RejectReason labels why a raw record was excluded during normalization.
type RejectReason string

const (
	RejectMissingField  RejectReason = "missing_field"
	RejectBadTimestamp  RejectReason = "bad_timestamp"
	RejectBadCoordinate RejectReason = "bad_coordinate"
	RejectBadPower      RejectReason = "bad_power"
	RejectOutsideBox    RejectReason = "outside_box"
	RejectOutsideWindow RejectReason = "outside_window"
)

// Report summarizes a normalization pass. Malformed covers records rejected
// for content; clipped records are valid but outside the requested window.
type Report struct {
	Accepted  int
	Malformed int
	Clipped   int
	Reasons   map[RejectReason]int
}

func (r *Report) reject(reason RejectReason) {
	if r.Reasons == nil {
		r.Reasons = make(map[RejectReason]int)
	}
	r.Reasons[reason]++
	switch reason {
	case RejectOutsideBox, RejectOutsideWindow:
		r.Clipped++
	default:
		r.Malformed++
	}
}

// Normalizer validates raw feed records and clips them to a scan window.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer constructs a Normalizer. A nil logger disables logging.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logging.NewComponentLogger(logger, "normalizer")}
}

// Normalize parses raw records into Detections, rejecting malformed rows and
// clipping to the requested bounding box and time window. Output ordering is
// ascending by timestamp, ties broken by source then longitude, so repeated
// runs over identical input produce identical sequences.
func (n *Normalizer) Normalize(records []RawRecord, box BoundingBox, window Window) ([]Detection, Report) {
	var report Report
	detections := make([]Detection, 0, len(records))

	for _, record := range records {
		det, reason, ok := n.parse(record, box, window)
		if !ok {
			report.reject(reason)
			if n.logger != nil && reason != RejectOutsideBox && reason != RejectOutsideWindow {
				n.logger.Debug("record rejected",
					logging.String("reason", string(reason)),
					logging.String("source_id", record.SourceID),
					logging.String("timestamp", record.Timestamp),
				)
			}
			continue
		}
		detections = append(detections, det)
	}

	sort.Slice(detections, func(i, j int) bool {
		a, b := detections[i], detections[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return a.Longitude < b.Longitude
	})

	report.Accepted = len(detections)
	if n.logger != nil {
		n.logger.Info("normalization complete",
			logging.String(logging.FieldEventType, "normalize_complete"),
			logging.Int("accepted", report.Accepted),
			logging.Int("malformed", report.Malformed),
			logging.Int("clipped", report.Clipped),
		)
	}
	return detections, report
}

func (n *Normalizer) parse(record RawRecord, box BoundingBox, window Window) (Detection, RejectReason, bool) {
	var det Detection

	sourceID := strings.TrimSpace(record.SourceID)
	if sourceID == "" || strings.TrimSpace(record.Timestamp) == "" ||
		strings.TrimSpace(record.Latitude) == "" || strings.TrimSpace(record.Longitude) == "" ||
		strings.TrimSpace(record.PowerMW) == "" {
		return det, RejectMissingField, false
	}

	ts, err := parseTimestamp(record.Timestamp)
	if err != nil {
		return det, RejectBadTimestamp, false
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(record.Latitude), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record.Longitude), 64)
	if latErr != nil || lonErr != nil || !finite(lat) || !finite(lon) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return det, RejectBadCoordinate, false
	}

	power, err := strconv.ParseFloat(strings.TrimSpace(record.PowerMW), 64)
	if err != nil || !finite(power) || power <= 0 {
		return det, RejectBadPower, false
	}

	if !box.Contains(lat, lon) {
		return det, RejectOutsideBox, false
	}
	if !window.Contains(ts) {
		return det, RejectOutsideWindow, false
	}

	det = Detection{
		SourceID:  sourceID,
		Timestamp: ts,
		Latitude:  lat,
		Longitude: lon,
		PowerMW:   power,
		Footprint: Footprint{
			ScanKm:     parseOptionalFloat(record.ScanKm),
			TrackKm:    parseOptionalFloat(record.TrackKm),
			Confidence: strings.TrimSpace(record.Confidence),
		},
	}
	return det, "", true
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

func parseOptionalFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || !finite(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}

// finite rejects the NaN and Inf values ParseFloat accepts from feed text.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
