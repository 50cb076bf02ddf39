// Package main is the entry point for keel.
package main

import (
	"fmt"
	"os"

	"github.com/dshills/keel/internal/cli"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCommand(fmt.Sprintf("%s (commit %s, built %s)", version, commit, date))
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
