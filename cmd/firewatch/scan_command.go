package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"firewatch/internal/config"
	"firewatch/internal/detection"
	"firewatch/internal/ledger"
	"firewatch/internal/notifications"
	"firewatch/internal/pipeline"
	"firewatch/internal/services/firms"
	"firewatch/internal/services/llm"
	"firewatch/internal/services/overpass"
	"firewatch/internal/verify"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		sinceFlag  string
		untilFlag  string
		dryRunFlag bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one detect-verify-quantify cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := parseWindow(sinceFlag, untilFlag)
			if err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				p, err := pipeline.New(cfg, pipeline.Deps{
					Store:    store,
					Fetcher:  newFetcher(cfg),
					Verifier: verify.New(newScorer(cfg), logger),
					LandUse:  newLandUse(cfg),
					Notifier: notifications.NewService(cfg),
					Logger:   logger,
				})
				if err != nil {
					return err
				}

				report, err := p.Run(cmd.Context(), window, pipeline.Options{DryRun: dryRunFlag})
				if report != nil {
					printRunReport(cmd, report)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&sinceFlag, "since", "", "Window start (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&untilFlag, "until", "", "Window end (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Run every stage without persisting or notifying")
	return cmd
}

func newFetcher(cfg *config.Config) pipeline.Fetcher {
	return firms.NewClient(firms.Config{
		APIKey:         cfg.FIRMS.APIKey,
		BaseURL:        cfg.FIRMS.BaseURL,
		TimeoutSeconds: cfg.FIRMS.TimeoutSeconds,
	})
}

func newScorer(cfg *config.Config) verify.Scorer {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.Verifier.APIKey,
		BaseURL:        cfg.Verifier.BaseURL,
		Model:          cfg.Verifier.Model,
		Referer:        cfg.Verifier.Referer,
		Title:          cfg.Verifier.Title,
		TimeoutSeconds: cfg.Verifier.TimeoutSeconds,
	},
		llm.WithRetryMaxAttempts(cfg.Workflow.RetryMaxAttempts),
		llm.WithRetryBackoff(
			time.Duration(cfg.Workflow.RetryBaseSeconds)*time.Second,
			time.Duration(cfg.Workflow.RetryMaxSeconds)*time.Second,
		),
	)
}

func newLandUse(cfg *config.Config) pipeline.LandUseLookup {
	if !cfg.Overpass.Enabled {
		return nil
	}
	return overpass.NewClient(overpass.Config{
		BaseURL:        cfg.Overpass.BaseURL,
		RadiusMeters:   cfg.Overpass.RadiusMeters,
		TimeoutSeconds: cfg.Overpass.TimeoutSeconds,
	})
}

func parseWindow(since, until string) (detection.Window, error) {
	var window detection.Window
	if since != "" {
		start, err := parseTimeFlag(since)
		if err != nil {
			return window, fmt.Errorf("parse --since: %w", err)
		}
		window.Start = start
	}
	if until != "" {
		end, err := parseTimeFlag(until)
		if err != nil {
			return window, fmt.Errorf("parse --until: %w", err)
		}
		window.End = end
	}
	if !window.Start.IsZero() && !window.End.IsZero() && !window.Start.Before(window.End) {
		return window, fmt.Errorf("--since must be before --until")
	}
	return window, nil
}

func parseTimeFlag(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

func printRunReport(cmd *cobra.Command, report *pipeline.Report) {
	out := cmd.OutOrStdout()
	counts := report.Counts

	headers := []string{"Stage", "Count"}
	rows := [][]string{
		{"Ingested", fmt.Sprintf("%d", counts.Ingested)},
		{"Malformed", fmt.Sprintf("%d", counts.Malformed)},
		{"Events", fmt.Sprintf("%d", counts.Deduplicated)},
		{"Verified farm", fmt.Sprintf("%d", counts.VerifiedFarm)},
		{"Verified industrial", fmt.Sprintf("%d", counts.VerifiedIndustrial)},
		{"Verified ambiguous", fmt.Sprintf("%d", counts.VerifiedAmbiguous)},
		{"Persisted new", fmt.Sprintf("%d", counts.PersistedNew)},
		{"Persisted noop", fmt.Sprintf("%d", counts.PersistedNoop)},
		{"Persisted new version", fmt.Sprintf("%d", counts.PersistedNewVer)},
		{"Alerted", fmt.Sprintf("%d", report.Alerted)},
		{"Failed", fmt.Sprintf("%d", counts.Failed)},
	}
	fmt.Fprintf(out, "Run %s (%s)\n", report.RunID, report.Duration().Round(time.Millisecond))
	if report.DryRun {
		fmt.Fprintln(out, "Dry run: nothing was persisted")
	}
	fmt.Fprintln(out, renderTable(headers, rows))
}
