package detection

// RegionFor maps a coordinate to a coarse agricultural region tag used by the
// verifier's feature bundle and alert routing. Boxes mirror the priority burn
// regions of the monitored sector.
func RegionFor(lat, lon float64) string {
	switch {
	case lat >= 21.5 && lat <= 27.3 && lon >= 85.8 && lon <= 89.9:
		return "WEST_BENGAL"
	case lat >= 28.4 && lat <= 32.5 && lon >= 73.8 && lon <= 77.8:
		return "PUNJAB_HARYANA"
	case lat >= 28.0 && lat <= 28.9 && lon >= 76.8 && lon <= 77.5:
		return "DELHI_NCR"
	default:
		return "INDIA_OTHER"
	}
}
