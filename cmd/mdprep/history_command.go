package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mdprep/internal/history"
	"mdprep/internal/report"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load run history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No recorded runs")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				finished := "-"
				if !run.FinishedAt.IsZero() {
					finished = run.FinishedAt.Local().Format("2006-01-02 15:04:05")
				}
				rows = append(rows, []string{
					shortRunID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					finished,
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Completed),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.Skipped),
					report.SuccessRate(run.Completed, run.Total),
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Finished", "Total", "Completed", "Failed", "Skipped", "Success"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
