package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"firewatch/internal/physics"
)

// canonicalEvent is the exact content that participates in hashing. Field
// order is fixed by the struct, members are sorted, and timestamps are UTC
// RFC3339 so the same event always serializes to the same bytes.
type canonicalEvent struct {
	EventID        string         `json:"event_id"`
	ObservedAt     string         `json:"observed_at"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Region         string         `json:"region"`
	FRPMW          float64        `json:"frp_mw"`
	FootprintM2    float64        `json:"footprint_m2"`
	Classification string         `json:"classification"`
	Confidence     float64        `json:"confidence"`
	Reason         string         `json:"reason"`
	Suppressed     bool           `json:"suppressed"`
	Members        []string       `json:"members"`
	Emissions      physics.Record `json:"emissions"`
}

// CanonicalJSON serializes the hashable content of an event.
func CanonicalJSON(ev Event) ([]byte, error) {
	members := append([]string(nil), ev.Members...)
	sort.Strings(members)
	if members == nil {
		members = []string{}
	}
	payload := canonicalEvent{
		EventID:        ev.EventID,
		ObservedAt:     ev.ObservedAt.UTC().Format(time.RFC3339),
		Latitude:       ev.Latitude,
		Longitude:      ev.Longitude,
		Region:         ev.Region,
		FRPMW:          ev.FRPMW,
		FootprintM2:    ev.FootprintM2,
		Classification: ev.Classification,
		Confidence:     ev.Confidence,
		Reason:         ev.Reason,
		Suppressed:     ev.Suppressed,
		Members:        members,
		Emissions:      ev.Emissions,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal canonical event: %w", err)
	}
	return data, nil
}

// ContentHash is the sha256 hex digest of the event's canonical JSON. Two
// events with the same content hash are identical for dedup purposes.
func ContentHash(ev Event) (string, error) {
	data, err := CanonicalJSON(ev)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// chainHash links a row into the audit chain. The previous row's audit hash
// is folded in so any rewrite of history invalidates every later row.
func chainHash(prevHash, contentHash string) string {
	sum := sha256.Sum256([]byte(prevHash + "\n" + contentHash))
	return hex.EncodeToString(sum[:])
}
