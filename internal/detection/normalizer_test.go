package detection_test

import (
	"testing"
	"time"

	"firewatch/internal/detection"
)

func raw(source, ts, lat, lon, power string) detection.RawRecord {
	return detection.RawRecord{
		SourceID:   source,
		Timestamp:  ts,
		Latitude:   lat,
		Longitude:  lon,
		PowerMW:    power,
		Confidence: "nominal",
	}
}

func testBox() detection.BoundingBox {
	return detection.BoundingBox{MinLat: 6, MinLon: 68, MaxLat: 38, MaxLon: 98}
}

func testWindow(t *testing.T) detection.Window {
	t.Helper()
	start, err := time.Parse(time.RFC3339, "2026-02-01T00:00:00Z")
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	return detection.Window{Start: start, End: start.Add(24 * time.Hour)}
}

func TestNormalizeAcceptsValidRecords(t *testing.T) {
	n := detection.NewNormalizer(nil)
	records := []detection.RawRecord{
		raw("VIIRS_SNPP_NRT", "2026-02-01 08:30", "30.1", "75.5", "42.5"),
		raw("MODIS_NRT", "2026-02-01 09:00", "30.2", "75.6", "12.0"),
	}

	detections, report := n.Normalize(records, testBox(), testWindow(t))
	if len(detections) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(detections))
	}
	if report.Malformed != 0 || report.Accepted != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if detections[0].SourceID != "VIIRS_SNPP_NRT" {
		t.Fatalf("expected timestamp ordering, got %s first", detections[0].SourceID)
	}
	if detections[0].Timestamp.Location() != time.UTC {
		t.Fatal("timestamps must be normalized to UTC")
	}
}

func TestNormalizeRejectsMalformedRecords(t *testing.T) {
	n := detection.NewNormalizer(nil)
	records := []detection.RawRecord{
		raw("VIIRS_SNPP_NRT", "2026-02-01 08:30", "30.1", "75.5", "42.5"),
		raw("", "2026-02-01 08:30", "30.1", "75.5", "42.5"),         // missing source
		raw("MODIS_NRT", "yesterday", "30.1", "75.5", "42.5"),       // bad timestamp
		raw("MODIS_NRT", "2026-02-01 08:30", "95.0", "75.5", "10"),  // latitude out of range
		raw("MODIS_NRT", "2026-02-01 08:30", "30.1", "200.0", "10"), // longitude out of range
		raw("MODIS_NRT", "2026-02-01 08:30", "30.1", "75.5", "0"),   // zero power
		raw("MODIS_NRT", "2026-02-01 08:30", "30.1", "75.5", "-3"),  // negative power
	}

	detections, report := n.Normalize(records, testBox(), testWindow(t))
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if report.Malformed != 6 {
		t.Fatalf("expected 6 malformed, got %d (%+v)", report.Malformed, report.Reasons)
	}
	if report.Reasons[detection.RejectBadPower] != 2 {
		t.Fatalf("expected 2 bad-power rejections, got %d", report.Reasons[detection.RejectBadPower])
	}
}

func TestNormalizeRejectsNonFiniteValues(t *testing.T) {
	n := detection.NewNormalizer(nil)
	records := []detection.RawRecord{
		raw("VIIRS_SNPP_NRT", "2026-02-01 08:30", "30.1", "75.5", "42.5"),
		raw("MODIS_NRT", "2026-02-01 08:30", "30.1", "75.5", "NaN"),
		raw("MODIS_NRT", "2026-02-01 08:30", "30.1", "75.5", "+Inf"),
		raw("MODIS_NRT", "2026-02-01 08:30", "NaN", "75.5", "10"),
		raw("MODIS_NRT", "2026-02-01 08:30", "30.1", "Inf", "10"),
	}

	detections, report := n.Normalize(records, testBox(), testWindow(t))
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if report.Malformed != 4 {
		t.Fatalf("expected 4 malformed, got %d (%+v)", report.Malformed, report.Reasons)
	}
	if report.Clipped != 0 {
		t.Fatalf("non-finite coordinates must not count as clipped: %+v", report)
	}
	if report.Reasons[detection.RejectBadPower] != 2 {
		t.Fatalf("expected 2 bad-power rejections, got %d", report.Reasons[detection.RejectBadPower])
	}
	if report.Reasons[detection.RejectBadCoordinate] != 2 {
		t.Fatalf("expected 2 bad-coordinate rejections, got %d", report.Reasons[detection.RejectBadCoordinate])
	}
}

func TestNormalizeClipsToBoxAndWindow(t *testing.T) {
	n := detection.NewNormalizer(nil)
	records := []detection.RawRecord{
		raw("VIIRS_SNPP_NRT", "2026-02-01 08:30", "30.1", "75.5", "42.5"),
		raw("VIIRS_SNPP_NRT", "2026-02-01 08:30", "50.0", "75.5", "42.5"), // north of box
		raw("VIIRS_SNPP_NRT", "2026-02-03 08:30", "30.1", "75.5", "42.5"), // after window
	}

	detections, report := n.Normalize(records, testBox(), testWindow(t))
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if report.Clipped != 2 {
		t.Fatalf("expected 2 clipped, got %d", report.Clipped)
	}
	if report.Malformed != 0 {
		t.Fatalf("clipped records must not count as malformed: %+v", report)
	}
}

func TestNormalizeOrderingIsDeterministic(t *testing.T) {
	n := detection.NewNormalizer(nil)
	records := []detection.RawRecord{
		raw("VIIRS_SNPP_NRT", "2026-02-01 08:30", "30.1", "75.9", "10"),
		raw("VIIRS_SNPP_NRT", "2026-02-01 08:30", "30.1", "75.1", "10"),
		raw("MODIS_NRT", "2026-02-01 08:30", "30.1", "75.5", "10"),
	}

	first, _ := n.Normalize(records, testBox(), testWindow(t))
	reversed := []detection.RawRecord{records[2], records[1], records[0]}
	second, _ := n.Normalize(reversed, testBox(), testWindow(t))

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 detections each, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ordering differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
	if second[0].SourceID != "MODIS_NRT" {
		t.Fatalf("tie-break should order by source id, got %s", second[0].SourceID)
	}
	if second[1].Longitude != 75.1 {
		t.Fatalf("tie-break should order by longitude, got %v", second[1].Longitude)
	}
}

func TestBoundingBoxValidation(t *testing.T) {
	if (detection.BoundingBox{MinLat: 10, MaxLat: 5, MinLon: 0, MaxLon: 1}).Valid() {
		t.Fatal("inverted box should be invalid")
	}
	if (detection.BoundingBox{MinLat: -95, MaxLat: 5, MinLon: 0, MaxLon: 1}).Valid() {
		t.Fatal("out-of-range box should be invalid")
	}
	box := detection.BoundingBox{MinLat: 6, MinLon: 68, MaxLat: 38, MaxLon: 98}
	if !box.Valid() {
		t.Fatal("sector box should be valid")
	}
	if box.String() != "68,6,98,38" {
		t.Fatalf("unexpected FIRMS order: %s", box.String())
	}
}

func TestFootprintAreaFallsBackToNominalPixel(t *testing.T) {
	var f detection.Footprint
	if f.AreaM2() != 375.0*375.0 {
		t.Fatalf("expected nominal pixel area, got %v", f.AreaM2())
	}
	f = detection.Footprint{ScanKm: 0.5, TrackKm: 0.4}
	if f.AreaM2() != 0.5*0.4*1e6 {
		t.Fatalf("expected scan*track area, got %v", f.AreaM2())
	}
}
