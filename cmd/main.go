package main

import (
	"fmt"
	"os"

	"github.com/csbde/tetherback/cmd/cmd"
	"github.com/csbde/tetherback/internal/env"
)

func main() {
	PrintBanner()

	if err := cmd.Execute(); err != nil {
		cmd.ReportError(os.Stderr, err)
		os.Exit(cmd.ExitCode(err))
	}
}

// PrintBanner writes the version banner to stderr, keeping stdout for
// command output.
func PrintBanner() {
	fmt.Fprintf(os.Stderr, "%s %s (commit %s, built %s)\n", env.AppName, env.Version, env.CommitHash, env.BuildTime)
	fmt.Fprintln(os.Stderr, "Android TWRP backup over adb")
	fmt.Fprintln(os.Stderr)
}
