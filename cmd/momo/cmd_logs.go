package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"momo/pkg/sessionlog"
)

// newLogsCmd creates the "momo logs" subcommand.
func newLogsCmd() *cobra.Command {
	var show string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List or print session log files",
		Long:  "Lists the session log files, newest first. With --show, prints the\ncontents of the named log file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			dir := a.logDir()

			if show != "" {
				// Refuse anything that escapes the logs directory.
				if show != filepath.Base(show) || !strings.HasSuffix(show, ".log") {
					return fmt.Errorf("invalid log file name %q", show)
				}
				data, err := os.ReadFile(filepath.Join(dir, show)) // #nosec G304 -- base name validated above
				if err != nil {
					return fmt.Errorf("read log: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			names, err := sessionlog.List(dir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no logs yet in %s\n", dir)
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&show, "show", "", "print the contents of the named log file")

	return cmd
}
