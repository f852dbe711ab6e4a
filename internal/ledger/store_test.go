package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"firewatch/internal/physics"
	"firewatch/internal/services"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func sampleEvent(id string) Event {
	return Event{
		EventID:        id,
		ObservedAt:     time.Date(2026, 2, 1, 4, 56, 0, 0, time.UTC),
		Latitude:       30.1234,
		Longitude:      75.5678,
		Region:         "PUNJAB_HARYANA",
		FRPMW:          100,
		Classification: "farm",
		Confidence:     0.85,
		Reason:         "cropland cluster during burn season",
		Members:        []string{"VIIRS_SNPP_NRT|2026-02-01T04:56:00Z"},
		Emissions: physics.Record{
			EnergyMJ:         96000,
			BiomassKg:        35328,
			PM25Kg:           221.15328,
			CO2Kg:            53521.92,
			ConstantsVersion: "v1",
			Profile:          "default",
		},
		RunID: "run-1",
	}
}

func TestAppendNewThenNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	outcome, stored, err := store.Append(ctx, sampleEvent("ev-1"))
	if err != nil {
		t.Fatalf("first append: %v", err)
	}
	if outcome != OutcomeNew {
		t.Fatalf("outcome = %s, want %s", outcome, OutcomeNew)
	}
	if stored.Version != 1 {
		t.Errorf("version = %d, want 1", stored.Version)
	}
	if stored.AuditHash == "" || stored.ContentHash == "" {
		t.Error("stored event missing hashes")
	}
	if stored.PrevHash != "" {
		t.Errorf("first row prev hash = %q, want empty", stored.PrevHash)
	}

	outcome, again, err := store.Append(ctx, sampleEvent("ev-1"))
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if outcome != OutcomeNoop {
		t.Fatalf("outcome = %s, want %s", outcome, OutcomeNoop)
	}
	if again.Version != 1 {
		t.Errorf("noop returned version %d, want 1", again.Version)
	}
}

func TestAppendNewVersionOnChangedContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Append(ctx, sampleEvent("ev-1")); err != nil {
		t.Fatalf("first append: %v", err)
	}

	revised := sampleEvent("ev-1")
	revised.Classification = "industrial"
	revised.Suppressed = true
	outcome, stored, err := store.Append(ctx, revised)
	if err != nil {
		t.Fatalf("revised append: %v", err)
	}
	if outcome != OutcomeNewVersion {
		t.Fatalf("outcome = %s, want %s", outcome, OutcomeNewVersion)
	}
	if stored.Version != 2 {
		t.Errorf("version = %d, want 2", stored.Version)
	}

	versions, err := store.Versions(ctx, "ev-1")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].Classification != "farm" || versions[1].Classification != "industrial" {
		t.Error("version history not preserved in order")
	}

	latest, err := store.Latest(ctx, "ev-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Version != 2 || !latest.Suppressed {
		t.Errorf("latest = v%d suppressed=%v", latest.Version, latest.Suppressed)
	}
}

func TestLatestUnknownEvent(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Latest(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	farm := sampleEvent("ev-farm")
	industrial := sampleEvent("ev-industrial")
	industrial.Classification = "industrial"
	industrial.Suppressed = true
	industrial.Region = "DELHI_NCR"
	late := sampleEvent("ev-late")
	late.ObservedAt = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	for _, ev := range []Event{farm, industrial, late} {
		if _, _, err := store.Append(ctx, ev); err != nil {
			t.Fatalf("append %s: %v", ev.EventID, err)
		}
	}

	visible, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("default list should hide suppressed rows, got %d", len(visible))
	}

	all, err := store.List(ctx, Filter{IncludeSuppressed: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}

	windowed, err := store.List(ctx, Filter{
		Since:             time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		Until:             time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC),
		IncludeSuppressed: true,
	})
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(windowed) != 1 || windowed[0].EventID != "ev-late" {
		t.Fatalf("window filter returned %d events", len(windowed))
	}

	regional, err := store.List(ctx, Filter{Region: "DELHI_NCR", IncludeSuppressed: true})
	if err != nil {
		t.Fatalf("list region: %v", err)
	}
	if len(regional) != 1 || regional[0].EventID != "ev-industrial" {
		t.Fatalf("region filter returned %d events", len(regional))
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"ev-1", "ev-2", "ev-3"} {
		ev := sampleEvent(id)
		if _, _, err := store.Append(ctx, ev); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	report, err := store.Verify(ctx)
	if err != nil {
		t.Fatalf("verify clean ledger: %v", err)
	}
	if !report.OK() || report.Rows != 3 {
		t.Fatalf("clean ledger: rows=%d issues=%v", report.Rows, report.Issues)
	}

	if _, err := store.db.ExecContext(ctx,
		"UPDATE ledger_events SET frp_mw = 999 WHERE event_id = 'ev-2'"); err != nil {
		t.Fatalf("tamper with row: %v", err)
	}

	report, err = store.Verify(ctx)
	if err != nil {
		t.Fatalf("verify tampered ledger: %v", err)
	}
	if report.OK() {
		t.Fatal("audit missed an edited row")
	}
	found := false
	for _, issue := range report.Issues {
		if issue.EventID == "ev-2" && issue.Problem == "content hash mismatch" {
			found = true
		}
	}
	if !found {
		t.Errorf("issues = %v, want content hash mismatch on ev-2", report.Issues)
	}
}

func TestCanonicalJSONStable(t *testing.T) {
	ev := sampleEvent("ev-1")
	ev.Members = []string{"b|2026-02-01T05:00:00Z", "a|2026-02-01T04:56:00Z"}

	first, err := ContentHash(ev)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ev.Members = []string{"a|2026-02-01T04:56:00Z", "b|2026-02-01T05:00:00Z"}
	second, err := ContentHash(ev)
	if err != nil {
		t.Fatalf("hash reordered: %v", err)
	}
	if first != second {
		t.Error("member order changed the content hash")
	}

	ev.Confidence = 0.9
	third, err := ContentHash(ev)
	if err != nil {
		t.Fatalf("hash changed: %v", err)
	}
	if third == second {
		t.Error("content change did not change the hash")
	}
}

func TestScanRunHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := ScanRun{
		RunID:       "run-abc",
		StartedAt:   time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC),
		FinishedAt:  time.Date(2026, 2, 1, 6, 3, 0, 0, time.UTC),
		Status:      "completed",
		WindowStart: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Counts:      RunCounts{Ingested: 120, Malformed: 3, Deduplicated: 40, PersistedNew: 35},
	}
	if err := store.RecordScanRun(ctx, run); err != nil {
		t.Fatalf("record run: %v", err)
	}

	// Re-recording the same run id updates it in place.
	run.Status = "failed"
	run.Error = "verification unavailable"
	if err := store.RecordScanRun(ctx, run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	runs, err := store.ListScanRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Status != "failed" || got.Error != "verification unavailable" {
		t.Errorf("run = %+v", got)
	}
	if got.Counts.Ingested != 120 || got.Counts.PersistedNew != 35 {
		t.Errorf("counts = %+v", got.Counts)
	}
}
