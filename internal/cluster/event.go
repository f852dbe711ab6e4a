package cluster

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"firewatch/internal/detection"
)

// Event is one or more detections merged by spatio-temporal proximity,
// representing a single physical fire.
type Event struct {
	ID        string
	Timestamp time.Time
	Latitude  float64
	Longitude float64
	RawFRPMW  float64
	Members   []detection.Detection
}

// Region returns the coarse region tag for the event's representative
// coordinate.
func (e Event) Region() string {
	return detection.RegionFor(e.Latitude, e.Longitude)
}

// FootprintAreaM2 sums the pixel areas of all member detections.
func (e Event) FootprintAreaM2() float64 {
	var total float64
	for _, member := range e.Members {
		total += member.Footprint.AreaM2()
	}
	return total
}

// EventID derives the stable identity of a cluster: a sha256 digest over the
// sorted set of member (source_id, timestamp) keys. Reprocessing the same
// physical fire later yields the same identity.
func EventID(members []detection.Detection) string {
	keys := make([]string, 0, len(members))
	for _, member := range members {
		keys = append(keys, member.Key())
	}
	sort.Strings(keys)
	digest := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(digest[:])
}
