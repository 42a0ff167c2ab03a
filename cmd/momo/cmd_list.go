package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"momo/pkg/registry"
)

// newListCmd creates the "momo list" subcommand.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the diagnostic test catalog",
		Long:  "Lists every test in the catalog with its command line and whether the\nrequired tool is installed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			printCatalog(cmd.OutOrStdout(), a.reg)
			return nil
		},
	}
}

// printCatalog writes one line per test, flagging missing tools.
func printCatalog(w io.Writer, reg *registry.Registry) {
	for _, spec := range reg.Specs() {
		marker := "         "
		if !reg.IsAvailable(spec) {
			marker = "[MISSING]"
		}
		fmt.Fprintf(w, "%s %-24s %s\n", marker, spec.Name, spec.Command())
	}
}
