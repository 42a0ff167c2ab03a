package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"momo/internal/version"
)

// newRootCmd creates the root momo command. Running it without a subcommand
// launches the interactive diagnostics menu.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "momo",
		Short:         "Linux hardware diagnostics menu",
		Long:          "momo runs a catalog of hardware diagnostic commands from an interactive\nterminal menu, streams their output live, and saves every run to a log file.",
		Version:       fmt.Sprintf("momo %s", version.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newListCmd(),
		newRunCmd(),
		newLogsCmd(),
		newHistoryCmd(),
	)

	return cmd
}

// runTUI wires the core and hands the terminal to Bubble Tea.
func runTUI() error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("stdout is not a terminal; use `momo run` for headless runs")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	p := tea.NewProgram(newModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	// Quitting mid-run must not leave the test's process group behind.
	_ = a.run.CancelCurrent()
	return nil
}
