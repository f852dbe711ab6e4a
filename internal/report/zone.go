package report

// Research zones used for aggregate analysis. Zone boxes are coarse and
// overlap-free in practice; the first match wins.
const (
	ZoneANorth   = "ZONE_A_NORTH"
	ZoneBEast    = "ZONE_B_EAST"
	ZoneCSouth   = "ZONE_C_SOUTH"
	ZoneDCentral = "ZONE_D_CENTRAL"
	ZoneOther    = "ZONE_OTHER"
)

// eastLonCutoff drops events east of mainland India (Myanmar, Andaman
// islands) that the scan box admits but the cost model does not cover.
const eastLonCutoff = 92.5

// Per-hectare social cost in INR. Zone A is agricultural stubble with the
// highest health burden downwind; elsewhere the forest/other rate applies.
const (
	costPerHaZoneA = 370000.0
	costPerHaOther = 58000.0
)

// ZoneFor maps a coordinate to its research zone.
func ZoneFor(lat, lon float64) string {
	switch {
	case lat >= 28.0 && lat <= 32.5 && lon >= 73.0 && lon <= 77.5:
		return ZoneANorth
	case lat >= 21.5 && lat <= 27.0 && lon >= 85.5 && lon <= 89.9:
		return ZoneBEast
	case lat >= 18.0 && lat <= 24.0 && lon >= 80.0 && lon <= 85.0:
		return ZoneDCentral
	case lat >= 10.0 && lat <= 20.0 && lon >= 73.0 && lon <= 80.0:
		return ZoneCSouth
	default:
		return ZoneOther
	}
}

// CostINR estimates the social cost of the burned area for a zone.
func CostINR(zone string, hectares float64) float64 {
	if hectares <= 0 {
		return 0
	}
	if zone == ZoneANorth {
		return hectares * costPerHaZoneA
	}
	return hectares * costPerHaOther
}
