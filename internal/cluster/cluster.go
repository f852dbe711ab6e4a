package cluster

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"firewatch/internal/detection"
	"firewatch/internal/logging"
)

const earthRadiusKm = 6371.0

// Clusterer merges detections of the same physical fire across sensor passes
// and adjacent pixels.
type Clusterer struct {
	spatialKm    float64
	temporalSpan time.Duration
	logger       *slog.Logger
}

// New constructs a Clusterer with the given merge thresholds.
func New(spatialKm, temporalHours float64, logger *slog.Logger) *Clusterer {
	return &Clusterer{
		spatialKm:    spatialKm,
		temporalSpan: time.Duration(temporalHours * float64(time.Hour)),
		logger:       logging.NewComponentLogger(logger, "clusterer"),
	}
}

// Cluster groups detections transitively: any pair within both the spatial
// and temporal thresholds joins the same event. Clusters are tracked as
// parent-pointer indexes over the flat input slice.
//
// The representative FRP is the maximum member power, not the sum. Overlapping
// sensor footprints observing one fire would double-count under summation and
// bias the emission estimate high; max undercounts multi-pixel fires instead,
// which is the conservative direction for defensible totals.
func (c *Clusterer) Cluster(detections []detection.Detection) []Event {
	if len(detections) == 0 {
		return nil
	}

	parents := make([]int, len(detections))
	for i := range parents {
		parents[i] = i
	}

	for i := 0; i < len(detections); i++ {
		for j := i + 1; j < len(detections); j++ {
			if c.related(detections[i], detections[j]) {
				union(parents, i, j)
			}
		}
	}

	groups := make(map[int][]detection.Detection)
	for i, det := range detections {
		root := find(parents, i)
		groups[root] = append(groups[root], det)
	}

	events := make([]Event, 0, len(groups))
	for _, members := range groups {
		events = append(events, buildEvent(members))
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].ID < events[j].ID
	})

	if c.logger != nil {
		c.logger.Info("clustering complete",
			logging.String(logging.FieldEventType, "cluster_complete"),
			logging.Int("detections", len(detections)),
			logging.Int("events", len(events)),
		)
	}
	return events
}

func (c *Clusterer) related(a, b detection.Detection) bool {
	gap := a.Timestamp.Sub(b.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	if gap > c.temporalSpan {
		return false
	}
	return HaversineKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude) <= c.spatialKm
}

func buildEvent(members []detection.Detection) Event {
	// Input detections arrive pre-sorted from the normalizer; keep that order
	// for the member list so serialization is stable.
	peak := members[0]
	var maxPower float64
	for _, member := range members {
		if member.PowerMW > maxPower {
			maxPower = member.PowerMW
			peak = member
		}
	}
	return Event{
		ID:        EventID(members),
		Timestamp: peak.Timestamp,
		Latitude:  peak.Latitude,
		Longitude: peak.Longitude,
		RawFRPMW:  maxPower,
		Members:   members,
	}
}

func find(parents []int, i int) int {
	for parents[i] != i {
		parents[i] = parents[parents[i]]
		i = parents[i]
	}
	return i
}

func union(parents []int, i, j int) {
	ri, rj := find(parents, i), find(parents, j)
	if ri != rj {
		parents[rj] = ri
	}
}

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
