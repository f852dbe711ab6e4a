package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"firewatch/internal/cluster"
	"firewatch/internal/config"
	"firewatch/internal/detection"
	"firewatch/internal/ledger"
	"firewatch/internal/logging"
	"firewatch/internal/notifications"
	"firewatch/internal/physics"
	"firewatch/internal/services"
	"firewatch/internal/verify"
)

// Stage names used in logs, run history, and failure reporting.
const (
	StageFetching    = "fetching"
	StageNormalizing = "normalizing"
	StageClustering  = "clustering"
	StageVerifying   = "verifying"
	StageQuantifying = "quantifying"
	StagePersisting  = "persisting"
)

// historicalLookback bounds the ledger window used for the fire-density
// feature fed to the verifier.
const historicalLookback = 30 * 24 * time.Hour

// densityRadiusKm bounds how far a past event can be and still count as
// activity at this location.
const densityRadiusKm = 1.0

// Fetcher pulls raw telemetry for one product. The FIRMS client satisfies
// this.
type Fetcher interface {
	Pull(ctx context.Context, product string, box detection.BoundingBox, dayRange int) ([]detection.RawRecord, error)
}

// LandUseLookup resolves map context near a coordinate. The Overpass client
// satisfies this.
type LandUseLookup interface {
	LandUse(ctx context.Context, lat, lon float64) ([]string, error)
}

// Deps are the collaborators a pipeline needs. Store, Fetcher, and Verifier
// are required; LandUse and Notifier may be nil for degraded operation.
type Deps struct {
	Store    *ledger.Store
	Fetcher  Fetcher
	Verifier *verify.Verifier
	LandUse  LandUseLookup
	Notifier notifications.Service
	Logger   *slog.Logger

	// Sleep is swapped out in tests to avoid real backoff waits.
	Sleep func(time.Duration)
}

// Options control a single run.
type Options struct {
	// DryRun executes every stage but writes nothing to the ledger and sends
	// no notifications.
	DryRun bool
}

// Pipeline executes one detect, verify, quantify, persist cycle.
type Pipeline struct {
	cfg      *config.Config
	store    *ledger.Store
	fetcher  Fetcher
	verifier *verify.Verifier
	landUse  LandUseLookup
	notifier notifications.Service
	logger   *slog.Logger
	sleep    func(time.Duration)
}

// New constructs a pipeline.
func New(cfg *config.Config, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: config required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("pipeline: ledger store required")
	}
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("pipeline: fetcher required")
	}
	if deps.Verifier == nil {
		return nil, fmt.Errorf("pipeline: verifier required")
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		store:    deps.Store,
		fetcher:  deps.Fetcher,
		verifier: deps.Verifier,
		landUse:  deps.LandUse,
		notifier: notifier,
		logger:   logger,
		sleep:    deps.Sleep,
	}, nil
}

// Run executes a full scan over the window. A zero window scans the
// configured lookback ending now. The returned report is non-nil whenever a
// run id was assigned, including on failure.
func (p *Pipeline) Run(ctx context.Context, window detection.Window, opts Options) (*Report, error) {
	runID := uuid.NewString()
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))
	ctx = services.WithRunID(ctx, runID)

	window = p.resolveWindow(window)
	report := &Report{
		RunID:     runID,
		Window:    window,
		StartedAt: time.Now().UTC(),
		DryRun:    opts.DryRun,
	}

	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return report, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !locked {
		return report, services.Wrap(services.ErrConflict, StageFetching, "lock", "another scan is already running", nil)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("release scan lock", logging.Error(unlockErr))
		}
	}()

	logger.Info("scan started",
		logging.String(logging.FieldEventType, "scan_started"),
		logging.Time("window_start", window.Start),
		logging.Time("window_end", window.End),
		logging.Bool("dry_run", opts.DryRun),
	)

	err = p.run(ctx, logger, window, opts, report)
	report.FinishedAt = time.Now().UTC()

	status := "completed"
	if err != nil {
		status = "failed"
		report.Err = err
		logger.Error("scan failed",
			logging.String(logging.FieldEventType, "scan_failed"),
			logging.String(logging.FieldStage, report.FailedStage),
			logging.Error(err),
		)
	} else {
		logger.Info("scan completed",
			logging.String(logging.FieldEventType, "scan_completed"),
			logging.Int("persisted", report.Counts.PersistedNew+report.Counts.PersistedNewVer),
			logging.Int("alerted", report.Alerted),
			logging.Duration("duration", report.Duration()),
		)
	}

	if !opts.DryRun {
		run := ledger.ScanRun{
			RunID:       runID,
			StartedAt:   report.StartedAt,
			FinishedAt:  report.FinishedAt,
			Status:      status,
			WindowStart: window.Start,
			WindowEnd:   window.End,
			Counts:      report.Counts,
		}
		if err != nil {
			run.Error = err.Error()
		}
		if recordErr := p.store.RecordScanRun(ctx, run); recordErr != nil {
			logger.Warn("record scan run", logging.Error(recordErr))
		}
		if notifyErr := p.notifyCompletion(ctx, report, err); notifyErr != nil {
			logger.Warn("send completion notification", logging.Error(notifyErr))
		}
	}
	return report, err
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, window detection.Window, opts Options, report *Report) error {
	box := detection.BoundingBox{
		MinLat: p.cfg.Scan.MinLat,
		MinLon: p.cfg.Scan.MinLon,
		MaxLat: p.cfg.Scan.MaxLat,
		MaxLon: p.cfg.Scan.MaxLon,
	}

	raw, err := p.fetch(ctx, logger, box, window)
	if err != nil {
		report.FailedStage = StageFetching
		return err
	}
	report.Counts.Ingested = len(raw)

	detections, normReport := detection.NewNormalizer(logger).Normalize(raw, box, window)
	report.Counts.Malformed = normReport.Malformed

	events := cluster.New(p.cfg.Clustering.SpatialKm, p.cfg.Clustering.TemporalHours, logger).Cluster(detections)
	report.Counts.Deduplicated = len(events)
	if len(events) == 0 {
		logger.Info("no events in window", logging.String(logging.FieldEventType, "scan_empty"))
		return nil
	}

	verdicts, err := p.verifyAll(ctx, logger, events)
	if err != nil {
		report.FailedStage = StageVerifying
		return err
	}

	profile, err := physics.ProfileByName(p.cfg.Emissions.Profile)
	if err != nil {
		report.FailedStage = StageQuantifying
		return services.Wrap(services.ErrConfiguration, StageQuantifying, "profile", p.cfg.Emissions.Profile, err)
	}
	observation := time.Duration(p.cfg.Emissions.ObservationSeconds) * time.Second
	floor := p.cfg.Verifier.ConfidenceFloor

	for i, event := range events {
		verdict := verdicts[i]
		switch verdict.Label {
		case verify.LabelFarm:
			report.Counts.VerifiedFarm++
		case verify.LabelIndustrial:
			report.Counts.VerifiedIndustrial++
		default:
			report.Counts.VerifiedAmbiguous++
		}

		emissions, err := physics.Quantify(event.RawFRPMW, observation, profile)
		if err != nil {
			report.Counts.Failed++
			logger.Error("quantify event",
				logging.String(logging.FieldEventID, event.ID),
				logging.Error(err))
			continue
		}

		entry := ledgerEvent(event, verdict, emissions, floor, report.RunID)
		if opts.DryRun {
			logger.Info("dry run: event not persisted",
				logging.String(logging.FieldEventID, event.ID),
				logging.String("classification", verdict.Label),
				logging.Float64("frp_mw", event.RawFRPMW))
			continue
		}

		outcome, stored, err := p.store.Append(ctx, entry)
		if err != nil {
			report.Counts.Failed++
			logger.Error("persist event",
				logging.String(logging.FieldEventID, event.ID),
				logging.Error(err))
			continue
		}
		switch outcome {
		case ledger.OutcomeNew:
			report.Counts.PersistedNew++
		case ledger.OutcomeNoop:
			report.Counts.PersistedNoop++
		case ledger.OutcomeNewVersion:
			report.Counts.PersistedNewVer++
		}

		if outcome == ledger.OutcomeNew && p.shouldAlert(stored, verdict, floor) {
			if err := p.sendAlert(ctx, stored); err != nil {
				logger.Warn("send fire alert",
					logging.String(logging.FieldEventID, event.ID),
					logging.Error(err))
			} else {
				report.Alerted++
			}
		}
	}
	return nil
}

// fetch pulls every configured product. Individual products may fail after
// retries as long as at least one succeeds.
func (p *Pipeline) fetch(ctx context.Context, logger *slog.Logger, box detection.BoundingBox, window detection.Window) ([]detection.RawRecord, error) {
	timeout := time.Duration(p.cfg.Workflow.FetchTimeoutHours) * time.Hour
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	days := p.windowDays(window)
	var (
		raw       []detection.RawRecord
		succeeded int
		lastErr   error
	)
	for _, product := range p.cfg.FIRMS.Products {
		var records []detection.RawRecord
		err := p.withRetry(ctx, func() error {
			var pullErr error
			records, pullErr = p.fetcher.Pull(ctx, product, box, days)
			return pullErr
		})
		if err != nil {
			lastErr = err
			logger.Error("pull product feed",
				logging.String("product", product),
				logging.Error(err))
			continue
		}
		succeeded++
		raw = append(raw, records...)
		logger.Info("product feed pulled",
			logging.String(logging.FieldEventType, "feed_pulled"),
			logging.String("product", product),
			logging.Int("records", len(records)))
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("all telemetry products failed: %w", lastErr)
	}
	return raw, nil
}

// verifyAll scores events through a bounded worker pool and returns verdicts
// aligned with the input slice.
func (p *Pipeline) verifyAll(ctx context.Context, logger *slog.Logger, events []cluster.Event) ([]verify.Result, error) {
	history := p.loadHistory(ctx, logger, events)

	workers := p.cfg.Workflow.VerifyWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(events) {
		workers = len(events)
	}

	results := make([]verify.Result, len(events))
	errs := make([]error, len(events))
	jobs := make(chan int)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				results[i], errs[i] = p.verifier.Verify(ctx, p.features(ctx, logger, events[i], history))
				done <- struct{}{}
			}
		}()
	}

	go func() {
		for i := range events {
			jobs <- i
		}
		close(jobs)
	}()
	for range events {
		<-done
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (p *Pipeline) features(ctx context.Context, logger *slog.Logger, event cluster.Event, history []*ledger.Event) verify.Features {
	features := verify.Features{
		EventID:           event.ID,
		ObservedAt:        event.Timestamp,
		Latitude:          event.Latitude,
		Longitude:         event.Longitude,
		Region:            event.Region(),
		FRPMW:             event.RawFRPMW,
		FootprintAreaM2:   event.FootprintAreaM2(),
		MemberCount:       len(event.Members),
		HistoricalDensity: densityNear(history, event.Latitude, event.Longitude),
	}

	if p.landUse != nil && p.cfg.Overpass.Enabled && event.RawFRPMW >= p.cfg.Overpass.MinPowerMW {
		tags, err := p.landUse.LandUse(ctx, event.Latitude, event.Longitude)
		if err != nil {
			logger.Warn("land-use lookup unavailable",
				logging.String(logging.FieldEventID, event.ID),
				logging.Error(err))
		} else {
			features.LandUse = tags
		}
	}
	return features
}

// loadHistory reads recent ledger events once per run for the density
// feature. A read failure degrades to zero density.
func (p *Pipeline) loadHistory(ctx context.Context, logger *slog.Logger, events []cluster.Event) []*ledger.Event {
	if len(events) == 0 {
		return nil
	}
	earliest := events[0].Timestamp
	for _, event := range events[1:] {
		if event.Timestamp.Before(earliest) {
			earliest = event.Timestamp
		}
	}
	history, err := p.store.List(ctx, ledger.Filter{
		Since:             earliest.Add(-historicalLookback),
		IncludeSuppressed: true,
	})
	if err != nil {
		logger.Warn("load event history", logging.Error(err))
		return nil
	}
	return history
}

func densityNear(history []*ledger.Event, lat, lon float64) int {
	count := 0
	for _, past := range history {
		if cluster.HaversineKm(past.Latitude, past.Longitude, lat, lon) <= densityRadiusKm {
			count++
		}
	}
	return count
}

func (p *Pipeline) shouldAlert(stored *ledger.Event, verdict verify.Result, floor float64) bool {
	if !verdict.Actionable(floor) {
		return false
	}
	return notifications.ShouldAlert(p.cfg.Telegram, stored.Region, stored.FRPMW)
}

func (p *Pipeline) sendAlert(ctx context.Context, stored *ledger.Event) error {
	return p.notifier.NotifyFireAlert(ctx, notifications.Alert{
		EventID:    stored.EventID,
		Region:     stored.Region,
		Latitude:   stored.Latitude,
		Longitude:  stored.Longitude,
		ObservedAt: stored.ObservedAt,
		FRPMW:      stored.FRPMW,
		Confidence: stored.Confidence,
		PM25Kg:     stored.Emissions.PM25Kg,
	})
}

func (p *Pipeline) notifyCompletion(ctx context.Context, report *Report, runErr error) error {
	if runErr != nil {
		return p.notifier.NotifyError(ctx, runErr, report.FailedStage)
	}
	persisted := report.Counts.PersistedNew + report.Counts.PersistedNewVer
	return p.notifier.NotifyScanCompleted(ctx, persisted, report.Alerted, report.Counts.Failed, report.Duration())
}

func (p *Pipeline) resolveWindow(window detection.Window) detection.Window {
	if !window.Start.IsZero() || !window.End.IsZero() {
		if window.End.IsZero() {
			window.End = time.Now().UTC()
		}
		return window
	}
	end := time.Now().UTC()
	days := p.cfg.Scan.LookbackDays
	if days < 1 {
		days = 1
	}
	return detection.Window{Start: end.Add(-time.Duration(days) * 24 * time.Hour), End: end}
}

func (p *Pipeline) windowDays(window detection.Window) int {
	span := window.End.Sub(window.Start)
	if span <= 0 {
		return 1
	}
	days := int(math.Ceil(span.Hours() / 24))
	if days < 1 {
		days = 1
	}
	if days > 10 {
		days = 10
	}
	return days
}

// withRetry runs fn with exponential backoff, retrying only errors the
// service taxonomy marks retryable.
func (p *Pipeline) withRetry(ctx context.Context, fn func() error) error {
	attempts := p.cfg.Workflow.StageRetryBudget
	if attempts < 1 {
		attempts = 1
	}
	base := time.Duration(p.cfg.Workflow.RetryBaseSeconds) * time.Second
	maxDelay := time.Duration(p.cfg.Workflow.RetryMaxSeconds) * time.Second

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !services.Retryable(err) || attempt == attempts {
			return err
		}
		delay := base << (attempt - 1)
		if maxDelay > 0 && delay > maxDelay {
			delay = maxDelay
		}
		if err := p.sleepFor(ctx, delay); err != nil {
			return err
		}
	}
	return err
}

// sleepFor waits out a backoff delay, returning early on cancellation. The
// injected hook bypasses the timer so tests never wait for real backoff.
func (p *Pipeline) sleepFor(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if p.sleep != nil {
		p.sleep(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func ledgerEvent(event cluster.Event, verdict verify.Result, emissions physics.Record, floor float64, runID string) ledger.Event {
	members := make([]string, 0, len(event.Members))
	for _, member := range event.Members {
		members = append(members, member.Key())
	}
	sort.Strings(members)

	return ledger.Event{
		EventID:        event.ID,
		ObservedAt:     event.Timestamp,
		Latitude:       event.Latitude,
		Longitude:      event.Longitude,
		Region:         event.Region(),
		FRPMW:          event.RawFRPMW,
		FootprintM2:    event.FootprintAreaM2(),
		Classification: verdict.Label,
		Confidence:     verdict.Confidence,
		Reason:         verdict.Reason,
		Suppressed:     verdict.Suppress(floor),
		Members:        members,
		Emissions:      emissions,
		RunID:          runID,
	}
}
