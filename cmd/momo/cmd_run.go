package main

import (
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"momo/pkg/runner"
)

// writerSink relays output lines to an io.Writer. Implements runner.LineSink
// for headless runs.
type writerSink struct {
	mu sync.Mutex
	w  io.Writer
}

// Append writes line with a trailing newline.
func (s *writerSink) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

// newRunCmd creates the "momo run" subcommand for headless execution.
func newRunCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "run [test-name]...",
		Short: "Run diagnostic tests without the TUI",
		Long: "Runs the named tests sequentially, streaming output to stdout and\n" +
			"writing session logs as usual. Ctrl-C cancels the running test and\n" +
			"stops the sequence. Tests that require disk selection are skipped\n" +
			"by --all; run them from the TUI instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("name at least one test or pass --all")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			names := args
			if all {
				names = names[:0]
				for _, spec := range a.reg.Specs() {
					if spec.NeedsDevice() {
						continue
					}
					names = append(names, spec.Name)
				}
			}

			// SIGINT cancels the current run and, via the context, the
			// remainder of the sequence.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			orch := runner.NewOrchestrator(a.run, a.reg, a.recorder())
			out := &writerSink{w: cmd.OutOrStdout()}
			outcomes := orch.RunAll(ctx, names, out)

			for _, o := range outcomes {
				line := fmt.Sprintf("%-24s %s", o.Test, o.Status)
				if o.Status == runner.StatusCompleted && o.ExitCode != 0 {
					line += fmt.Sprintf(" (exit code %d)", o.ExitCode)
				}
				if o.LogPath != "" {
					line += "  log: " + o.LogPath
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			if len(outcomes) < len(names) {
				return fmt.Errorf("cancelled after %d of %d tests", len(outcomes), len(names))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "run every catalog test that needs no disk selection")

	return cmd
}
