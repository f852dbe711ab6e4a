package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"firewatch/internal/config"
	"firewatch/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and audit the event ledger",
	}

	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerShowCommand(ctx))
	ledgerCmd.AddCommand(newLedgerVerifyCommand(ctx))

	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var (
		sinceFlag      string
		untilFlag      string
		regionFlag     string
		classFlag      string
		suppressedFlag bool
		limitFlag      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded fire events",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := parseWindow(sinceFlag, untilFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *ledger.Store) error {
				events, err := store.List(cmd.Context(), ledger.Filter{
					Since:             window.Start,
					Until:             window.End,
					Region:            strings.TrimSpace(regionFlag),
					Classification:    strings.TrimSpace(classFlag),
					IncludeSuppressed: suppressedFlag,
					Limit:             limitFlag,
				})
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No events recorded")
					return nil
				}

				headers := []string{"Event", "Observed (UTC)", "Region", "Class", "Conf", "FRP MW", "Ver", "Suppressed"}
				rows := make([][]string, 0, len(events))
				for _, ev := range events {
					rows = append(rows, []string{
						shortEventID(ev.EventID),
						ev.ObservedAt.UTC().Format("2006-01-02 15:04"),
						ev.Region,
						ev.Classification,
						fmt.Sprintf("%.2f", ev.Confidence),
						fmt.Sprintf("%.1f", ev.FRPMW),
						fmt.Sprintf("%d", ev.Version),
						fmt.Sprintf("%v", ev.Suppressed),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sinceFlag, "since", "", "Window start (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&untilFlag, "until", "", "Window end (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&regionFlag, "region", "", "Filter by region tag")
	cmd.Flags().StringVar(&classFlag, "classification", "", "Filter by classification")
	cmd.Flags().BoolVar(&suppressedFlag, "suppressed", false, "Include suppressed events")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum events to list")
	return cmd
}

func newLedgerShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show every version of one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *ledger.Store) error {
				versions, err := store.Versions(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, ev := range versions {
					fmt.Fprintf(out, "Version %d (recorded %s)\n", ev.Version, ev.RecordedAt.UTC().Format(time.RFC3339))
					fmt.Fprintf(out, "  Observed:       %s\n", ev.ObservedAt.UTC().Format(time.RFC3339))
					fmt.Fprintf(out, "  Location:       %.4f, %.4f (%s)\n", ev.Latitude, ev.Longitude, ev.Region)
					fmt.Fprintf(out, "  Classification: %s (%.2f) %s\n", ev.Classification, ev.Confidence, ev.Reason)
					fmt.Fprintf(out, "  FRP:            %.1f MW over %d detections\n", ev.FRPMW, len(ev.Members))
					fmt.Fprintf(out, "  Emissions:      %.0f MJ, %.1f kg biomass, %.2f kg PM2.5, %.1f kg CO2 (%s/%s)\n",
						ev.Emissions.EnergyMJ, ev.Emissions.BiomassKg, ev.Emissions.PM25Kg, ev.Emissions.CO2Kg,
						ev.Emissions.Profile, ev.Emissions.ConstantsVersion)
					fmt.Fprintf(out, "  Suppressed:     %v\n", ev.Suppressed)
					fmt.Fprintf(out, "  Audit hash:     %s\n", ev.AuditHash)
				}
				return nil
			})
		},
	}
}

func newLedgerVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Audit the ledger hash chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *ledger.Store) error {
				report, err := store.Verify(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if report.OK() {
					fmt.Fprintf(out, "Ledger intact: %d rows verified\n", report.Rows)
					return nil
				}
				for _, issue := range report.Issues {
					fmt.Fprintf(out, "%s v%d: %s\n", issue.EventID, issue.Version, issue.Problem)
				}
				return fmt.Errorf("ledger audit failed with %d issues", len(report.Issues))
			})
		},
	}
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent scan run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *ledger.Store) error {
				runs, err := store.ListScanRuns(cmd.Context(), limitFlag)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scan runs recorded")
					return nil
				}

				headers := []string{"Run", "Started (UTC)", "Status", "Ingested", "Events", "New", "Failed"}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortEventID(run.RunID),
						run.StartedAt.UTC().Format("2006-01-02 15:04"),
						run.Status,
						fmt.Sprintf("%d", run.Counts.Ingested),
						fmt.Sprintf("%d", run.Counts.Deduplicated),
						fmt.Sprintf("%d", run.Counts.PersistedNew),
						fmt.Sprintf("%d", run.Counts.Failed),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum runs to list")
	return cmd
}

func shortEventID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
