package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"momo/pkg/history"
)

// newHistoryCmd creates the "momo history" subcommand.
func newHistoryCmd() *cobra.Command {
	var (
		limit int
		test  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent run outcomes",
		Long:  "Prints recent diagnostic runs from the history database, newest first.\nUse --test to filter to a single test name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.store == nil {
				return fmt.Errorf("history database is unavailable")
			}

			var entries []history.Entry
			if test != "" {
				entries, err = a.store.ByTest(cmd.Context(), test, limit)
			} else {
				entries, err = a.store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recorded runs")
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-20s %-24s %-12s %8s %6s\n", "STARTED", "TEST", "STATUS", "DURATION", "LINES")
			for _, e := range entries {
				fmt.Fprintf(w, "%-20s %-24s %-12s %8s %6d\n",
					e.StartedAt.Local().Format("2006-01-02 15:04:05"),
					e.TestName, e.Status, e.Duration.Round(10*time.Millisecond), e.LineCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	cmd.Flags().StringVar(&test, "test", "", "filter by test name")

	return cmd
}
