package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"firewatch/internal/ledger"
	"firewatch/internal/physics"
	"firewatch/internal/testsupport"
)

func TestZoneFor(t *testing.T) {
	cases := []struct {
		lat, lon float64
		want     string
	}{
		{30.5, 75.5, ZoneANorth},
		{23.0, 87.0, ZoneBEast},
		{20.0, 82.0, ZoneDCentral},
		{15.0, 77.0, ZoneCSouth},
		{34.0, 74.0, ZoneOther},
		{28.0, 73.0, ZoneANorth},
	}
	for _, tc := range cases {
		if got := ZoneFor(tc.lat, tc.lon); got != tc.want {
			t.Errorf("ZoneFor(%.1f, %.1f) = %s, want %s", tc.lat, tc.lon, got, tc.want)
		}
	}
}

func TestCostINR(t *testing.T) {
	if got := CostINR(ZoneANorth, 2); got != 740000 {
		t.Errorf("zone A cost = %.0f, want 740000", got)
	}
	if got := CostINR(ZoneCSouth, 2); got != 116000 {
		t.Errorf("other zone cost = %.0f, want 116000", got)
	}
	if got := CostINR(ZoneANorth, 0); got != 0 {
		t.Errorf("zero area cost = %.0f", got)
	}
}

func seedEvent(t *testing.T, store *ledger.Store, id string, lat, lon, footprintM2 float64) {
	t.Helper()
	_, _, err := store.Append(context.Background(), ledger.Event{
		EventID:        id,
		ObservedAt:     time.Date(2026, 2, 1, 4, 56, 0, 0, time.UTC),
		Latitude:       lat,
		Longitude:      lon,
		Region:         "PUNJAB_HARYANA",
		FRPMW:          100,
		FootprintM2:    footprintM2,
		Classification: "farm",
		Confidence:     0.9,
		Members:        []string{"VIIRS_SNPP_NRT|2026-02-01T04:56:00Z"},
		Emissions:      physics.Record{EnergyMJ: 96000, BiomassKg: 35328, PM25Kg: 221.15, CO2Kg: 53521.92, ConstantsVersion: "v1", Profile: "default"},
	})
	if err != nil {
		t.Fatalf("seed event %s: %v", id, err)
	}
}

func TestGenerate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	seedEvent(t, store, "ev-north", 30.5, 75.5, 20000)  // 2 ha in zone A
	seedEvent(t, store, "ev-south", 15.0, 77.0, 10000)  // 1 ha in zone C
	seedEvent(t, store, "ev-andaman", 12.0, 93.0, 5000) // east of cutoff

	summary, err := NewGenerator(store).Generate(context.Background(), ledger.Filter{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(summary.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(summary.Rows))
	}
	if summary.Excluded != 1 {
		t.Errorf("excluded = %d, want 1", summary.Excluded)
	}
	if got := summary.TotalHectares(); got != 3 {
		t.Errorf("total hectares = %.2f, want 3", got)
	}
	wantCost := 2*costPerHaZoneA + 1*costPerHaOther
	if got := summary.TotalCostINR(); got != wantCost {
		t.Errorf("total cost = %.0f, want %.0f", got, wantCost)
	}

	if len(summary.Zones) != 2 {
		t.Fatalf("zones = %+v", summary.Zones)
	}
	if summary.Zones[0].Zone != ZoneANorth || summary.Zones[0].Events != 1 {
		t.Errorf("zone totals = %+v", summary.Zones)
	}
}

func TestWriteCSV(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	seedEvent(t, store, "ev-north", 30.5, 75.5, 20000)

	summary, err := NewGenerator(store).Generate(context.Background(), ledger.Filter{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var buf bytes.Buffer
	if err := summary.WriteCSV(&buf); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "event_id,observed_at") {
		t.Errorf("header = %s", lines[0])
	}
	for _, want := range []string{"ev-north", "ZONE_A_NORTH", "2.0000", "740000"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row missing %q: %s", want, lines[1])
		}
	}
}

func TestFormatINR(t *testing.T) {
	got := FormatINR(740000)
	if !strings.HasPrefix(got, "₹") {
		t.Errorf("FormatINR = %q", got)
	}
	if !strings.Contains(got, "40,000") {
		t.Errorf("expected Indian digit grouping, got %q", got)
	}
}
