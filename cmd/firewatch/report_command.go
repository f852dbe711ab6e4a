package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"firewatch/internal/config"
	"firewatch/internal/ledger"
	"firewatch/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		sinceFlag      string
		untilFlag      string
		csvFlag        string
		suppressedFlag bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize ledger events by research zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := parseWindow(sinceFlag, untilFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *ledger.Store) error {
				summary, err := report.NewGenerator(store).Generate(cmd.Context(), ledger.Filter{
					Since:             window.Start,
					Until:             window.End,
					IncludeSuppressed: suppressedFlag,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(summary.Rows) == 0 {
					fmt.Fprintln(out, "No events in window")
					return nil
				}

				if path := strings.TrimSpace(csvFlag); path != "" {
					file, err := os.Create(path)
					if err != nil {
						return fmt.Errorf("create report file: %w", err)
					}
					if err := summary.WriteCSV(file); err != nil {
						_ = file.Close()
						return err
					}
					if err := file.Close(); err != nil {
						return fmt.Errorf("close report file: %w", err)
					}
					fmt.Fprintf(out, "Wrote %d rows to %s\n", len(summary.Rows), path)
				}

				headers := []string{"Zone", "Events", "Hectares", "PM2.5 kg", "Est. cost"}
				rows := make([][]string, 0, len(summary.Zones)+1)
				for _, zone := range summary.Zones {
					rows = append(rows, []string{
						zone.Zone,
						fmt.Sprintf("%d", zone.Events),
						report.FormatQuantity(zone.Hectares, 2),
						report.FormatQuantity(zone.PM25Kg, 1),
						report.FormatINR(zone.CostINR),
					})
				}
				rows = append(rows, []string{
					"TOTAL",
					fmt.Sprintf("%d", len(summary.Rows)),
					report.FormatQuantity(summary.TotalHectares(), 2),
					report.FormatQuantity(summary.TotalPM25Kg(), 1),
					report.FormatINR(summary.TotalCostINR()),
				})
				fmt.Fprintln(out, renderTable(headers, rows))
				if summary.Excluded > 0 {
					fmt.Fprintf(out, "%d events east of the mainland cutoff excluded\n", summary.Excluded)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sinceFlag, "since", "", "Window start (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&untilFlag, "until", "", "Window end (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&csvFlag, "csv", "", "Also write per-event rows to this CSV file")
	cmd.Flags().BoolVar(&suppressedFlag, "suppressed", false, "Include suppressed events")
	return cmd
}
