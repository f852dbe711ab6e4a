package cluster_test

import (
	"testing"
	"time"

	"firewatch/internal/cluster"
	"firewatch/internal/detection"
)

func det(source string, ts time.Time, lat, lon, power float64) detection.Detection {
	return detection.Detection{
		SourceID:  source,
		Timestamp: ts,
		Latitude:  lat,
		Longitude: lon,
		PowerMW:   power,
	}
}

func baseTime(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2026-02-01T06:00:00Z")
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return ts
}

func TestDetectionsWithinThresholdsMerge(t *testing.T) {
	ts := baseTime(t)
	c := cluster.New(0.5, 4.0, nil)

	events := c.Cluster([]detection.Detection{
		det("VIIRS_SNPP_NRT", ts, 30.5, 75.5, 40),
		det("VIIRS_NOAA20_NRT", ts.Add(time.Hour), 30.5, 75.5, 55),
	})
	if len(events) != 1 {
		t.Fatalf("expected single event, got %d", len(events))
	}
	if len(events[0].Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(events[0].Members))
	}
}

func TestDetectionsOutsideTemporalWindowStaySeparate(t *testing.T) {
	ts := baseTime(t)
	c := cluster.New(0.5, 4.0, nil)

	events := c.Cluster([]detection.Detection{
		det("VIIRS_SNPP_NRT", ts, 30.5, 75.5, 40),
		det("VIIRS_SNPP_NRT", ts.Add(10*time.Hour), 30.5, 75.5, 55),
	})
	if len(events) != 2 {
		t.Fatalf("expected two events for 10h gap, got %d", len(events))
	}
}

func TestDetectionsOutsideSpatialThresholdStaySeparate(t *testing.T) {
	ts := baseTime(t)
	c := cluster.New(0.5, 4.0, nil)

	// ~1.1 km apart at this latitude.
	events := c.Cluster([]detection.Detection{
		det("VIIRS_SNPP_NRT", ts, 30.5, 75.5, 40),
		det("VIIRS_SNPP_NRT", ts, 30.51, 75.5, 55),
	})
	if len(events) != 2 {
		t.Fatalf("expected two events for 1.1km gap, got %d", len(events))
	}
}

func TestTransitiveMerge(t *testing.T) {
	ts := baseTime(t)
	c := cluster.New(0.5, 4.0, nil)

	// a-b and b-c are within threshold; a-c is not. All three must merge.
	events := c.Cluster([]detection.Detection{
		det("VIIRS_SNPP_NRT", ts, 30.500, 75.5, 40),
		det("VIIRS_SNPP_NRT", ts, 30.504, 75.5, 55),
		det("VIIRS_SNPP_NRT", ts, 30.508, 75.5, 30),
	})
	if len(events) != 1 {
		t.Fatalf("expected transitive merge into one event, got %d", len(events))
	}
	if len(events[0].Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(events[0].Members))
	}
}

func TestRepresentativeIsPeakPowerMember(t *testing.T) {
	ts := baseTime(t)
	c := cluster.New(0.5, 4.0, nil)

	events := c.Cluster([]detection.Detection{
		det("VIIRS_SNPP_NRT", ts, 30.500, 75.5, 40),
		det("VIIRS_NOAA20_NRT", ts.Add(time.Hour), 30.502, 75.5, 90),
	})
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	event := events[0]
	if event.RawFRPMW != 90 {
		t.Fatalf("merge policy is max power, got %v", event.RawFRPMW)
	}
	if event.Latitude != 30.502 || !event.Timestamp.Equal(ts.Add(time.Hour)) {
		t.Fatalf("representative should be the peak-power member: %+v", event)
	}
}

func TestEventIDStableAcrossMemberOrder(t *testing.T) {
	ts := baseTime(t)
	members := []detection.Detection{
		det("VIIRS_SNPP_NRT", ts, 30.5, 75.5, 40),
		det("MODIS_NRT", ts.Add(time.Hour), 30.5, 75.5, 55),
	}
	reversed := []detection.Detection{members[1], members[0]}

	if cluster.EventID(members) != cluster.EventID(reversed) {
		t.Fatal("event id must not depend on member order")
	}
	if cluster.EventID(members) == cluster.EventID(members[:1]) {
		t.Fatal("different membership must produce different ids")
	}
	if len(cluster.EventID(members)) != 64 {
		t.Fatalf("expected sha256 hex id, got %q", cluster.EventID(members))
	}
}

func TestClusterReprocessingIsIdempotent(t *testing.T) {
	ts := baseTime(t)
	c := cluster.New(0.5, 4.0, nil)
	input := []detection.Detection{
		det("VIIRS_SNPP_NRT", ts, 30.5, 75.5, 40),
		det("VIIRS_NOAA20_NRT", ts.Add(time.Hour), 30.5, 75.5, 55),
		det("MODIS_NRT", ts, 22.0, 87.0, 15),
	}

	first := c.Cluster(input)
	second := c.Cluster(input)
	if len(first) != len(second) {
		t.Fatalf("event counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("event ids differ at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestClusterEmptyInput(t *testing.T) {
	c := cluster.New(0.5, 4.0, nil)
	if events := c.Cluster(nil); len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
