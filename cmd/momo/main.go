// Package main is the entry point for the momo diagnostics CLI and TUI.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "momo: %v\n", err)
		os.Exit(1)
	}
}
