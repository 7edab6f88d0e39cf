// Package main provides the entry point for the gantt CLI.
package main

import (
	"os"

	"github.com/randalmurphal/gantt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
