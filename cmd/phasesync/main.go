// Command phasesync analyzes phase synchronization in epoched
// multichannel recordings.
//
// Usage:
//
//	phasesync <command> [flags]
//
// Commands:
//
//	gen    generate a synthetic epoch CSV
//	info   describe an epoch CSV
//	psd    Welch power spectral density of one channel
//	sync   estimate synchrony between channel pairs
//	serve  browser-based viewer
//
// Examples:
//
//	phasesync gen -o demo.csv --trials 40 --samples 512
//	phasesync sync demo.csv --method wpli --band alpha
//	phasesync serve demo.csv --listen :9000
package main

import (
	"fmt"
	"os"

	"github.com/phaselab/phasesync/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
