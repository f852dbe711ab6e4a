package detection

import (
	"fmt"
	"time"
)

// Detection is one raw thermal-anomaly reading, immutable once ingested.
type Detection struct {
	SourceID  string
	Timestamp time.Time
	Latitude  float64
	Longitude float64
	PowerMW   float64
	Footprint Footprint
}

// Footprint describes the sensor pixel that produced a detection.
type Footprint struct {
	ScanKm     float64
	TrackKm    float64
	Confidence string
}

// AreaM2 returns the pixel ground area in square meters. Zero dimensions fall
// back to the nominal VIIRS 375 m pixel.
func (f Footprint) AreaM2() float64 {
	scan := f.ScanKm
	track := f.TrackKm
	if scan <= 0 || track <= 0 {
		return 375.0 * 375.0
	}
	return scan * track * 1e6
}

// Key identifies a detection for cluster-membership hashing.
func (d Detection) Key() string {
	return fmt.Sprintf("%s|%s", d.SourceID, d.Timestamp.UTC().Format(time.RFC3339))
}

// BoundingBox is a latitude/longitude window. Min values are inclusive lower
// bounds, Max values inclusive upper bounds.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Contains reports whether the coordinate falls inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Valid reports whether the box has physically plausible, ordered bounds.
func (b BoundingBox) Valid() bool {
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLon < -180 || b.MaxLon > 180 {
		return false
	}
	return b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon
}

// String renders the box in the FIRMS west,south,east,north order.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// Window is a half-open [Start, End) scan time window.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the timestamp falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	if w.Start.IsZero() && w.End.IsZero() {
		return true
	}
	if !w.Start.IsZero() && ts.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !ts.Before(w.End) {
		return false
	}
	return true
}

// RawRecord is one untrusted row from the telemetry feed before validation.
type RawRecord struct {
	SourceID   string
	Timestamp  string
	Latitude   string
	Longitude  string
	PowerMW    string
	ScanKm     string
	TrackKm    string
	Confidence string
}
