package verify

import (
	"fmt"
	"strings"
	"time"
)

// Features is the evidence bundle assembled for one event before semantic
// verification. Everything the model sees is listed here; nothing else leaks
// into the prompt.
type Features struct {
	EventID           string
	ObservedAt        time.Time
	Latitude          float64
	Longitude         float64
	Region            string
	FRPMW             float64
	FootprintAreaM2   float64
	MemberCount       int
	LandUse           []string
	HistoricalDensity int
}

// Bundle renders the features as a deterministic text block. Field order is
// fixed and coordinates are rounded to three decimals so identical events
// always produce identical prompts.
func (f Features) Bundle() string {
	var b strings.Builder
	observed := f.ObservedAt.UTC()
	fmt.Fprintf(&b, "event_id: %s\n", f.EventID)
	fmt.Fprintf(&b, "observed_at_utc: %s\n", observed.Format(time.RFC3339))
	fmt.Fprintf(&b, "hour_of_day_utc: %d\n", observed.Hour())
	fmt.Fprintf(&b, "location: %.3f,%.3f\n", f.Latitude, f.Longitude)
	fmt.Fprintf(&b, "region: %s\n", f.Region)
	fmt.Fprintf(&b, "fire_radiative_power_mw: %.2f\n", f.FRPMW)
	fmt.Fprintf(&b, "footprint_area_m2: %.0f\n", f.FootprintAreaM2)
	fmt.Fprintf(&b, "detection_count: %d\n", f.MemberCount)
	landUse := "none"
	if len(f.LandUse) > 0 {
		landUse = strings.Join(f.LandUse, ", ")
	}
	fmt.Fprintf(&b, "nearby_land_use: %s\n", landUse)
	fmt.Fprintf(&b, "fires_at_this_location_last_30_days: %d\n", f.HistoricalDensity)
	return b.String()
}
