package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"firewatch/internal/ledger"
)

// Row is one reportable event with its zone and impact estimates.
type Row struct {
	EventID        string
	ObservedAt     time.Time
	Latitude       float64
	Longitude      float64
	Region         string
	Zone           string
	Classification string
	Confidence     float64
	FRPMW          float64
	Hectares       float64
	PM25Kg         float64
	CostINR        float64
}

// ZoneTotal aggregates rows within one research zone.
type ZoneTotal struct {
	Zone     string
	Events   int
	Hectares float64
	PM25Kg   float64
	CostINR  float64
}

// Summary is the full report over a window.
type Summary struct {
	Window   ledger.Filter
	Rows     []Row
	Zones    []ZoneTotal
	Excluded int
}

// TotalHectares sums the burned area across all rows.
func (s *Summary) TotalHectares() float64 {
	var total float64
	for _, row := range s.Rows {
		total += row.Hectares
	}
	return total
}

// TotalCostINR sums the estimated social cost across all rows.
func (s *Summary) TotalCostINR() float64 {
	var total float64
	for _, row := range s.Rows {
		total += row.CostINR
	}
	return total
}

// TotalPM25Kg sums the estimated PM2.5 across all rows.
func (s *Summary) TotalPM25Kg() float64 {
	var total float64
	for _, row := range s.Rows {
		total += row.PM25Kg
	}
	return total
}

// Generator builds summaries from the ledger.
type Generator struct {
	store *ledger.Store
}

// NewGenerator constructs a Generator.
func NewGenerator(store *ledger.Store) *Generator {
	return &Generator{store: store}
}

// Generate reads the latest event versions matching the filter, assigns
// research zones, and estimates burned area and social cost. Events east of
// the mainland cutoff are excluded and counted.
func (g *Generator) Generate(ctx context.Context, filter ledger.Filter) (*Summary, error) {
	events, err := g.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	summary := &Summary{Window: filter}
	zoneTotals := make(map[string]*ZoneTotal)
	for _, ev := range events {
		if ev.Longitude >= eastLonCutoff {
			summary.Excluded++
			continue
		}
		zone := ZoneFor(ev.Latitude, ev.Longitude)
		hectares := ev.FootprintM2 / 10000
		row := Row{
			EventID:        ev.EventID,
			ObservedAt:     ev.ObservedAt,
			Latitude:       ev.Latitude,
			Longitude:      ev.Longitude,
			Region:         ev.Region,
			Zone:           zone,
			Classification: ev.Classification,
			Confidence:     ev.Confidence,
			FRPMW:          ev.FRPMW,
			Hectares:       hectares,
			PM25Kg:         ev.Emissions.PM25Kg,
			CostINR:        CostINR(zone, hectares),
		}
		summary.Rows = append(summary.Rows, row)

		total, ok := zoneTotals[zone]
		if !ok {
			total = &ZoneTotal{Zone: zone}
			zoneTotals[zone] = total
		}
		total.Events++
		total.Hectares += row.Hectares
		total.PM25Kg += row.PM25Kg
		total.CostINR += row.CostINR
	}

	for _, total := range zoneTotals {
		summary.Zones = append(summary.Zones, *total)
	}
	sort.Slice(summary.Zones, func(i, j int) bool {
		return summary.Zones[i].Zone < summary.Zones[j].Zone
	})
	return summary, nil
}

// WriteCSV streams the per-event rows as CSV.
func (s *Summary) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	header := []string{
		"event_id", "observed_at", "latitude", "longitude", "region", "zone",
		"classification", "confidence", "frp_mw", "hectares", "pm25_kg", "cost_inr",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range s.Rows {
		record := []string{
			row.EventID,
			row.ObservedAt.UTC().Format(time.RFC3339),
			strconv.FormatFloat(row.Latitude, 'f', 4, 64),
			strconv.FormatFloat(row.Longitude, 'f', 4, 64),
			row.Region,
			row.Zone,
			row.Classification,
			strconv.FormatFloat(row.Confidence, 'f', 2, 64),
			strconv.FormatFloat(row.FRPMW, 'f', 1, 64),
			strconv.FormatFloat(row.Hectares, 'f', 4, 64),
			strconv.FormatFloat(row.PM25Kg, 'f', 2, 64),
			strconv.FormatFloat(row.CostINR, 'f', 0, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
