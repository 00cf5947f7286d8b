// file-tracer correlates kernel file trace records into create, rename and
// delete events and dispatches them to a file events table, OpenTelemetry
// spans and message brokers.
//
// Usage:
//
//	FILE_TRACER_ENABLE_FILE_EVENTS=true file-tracer replay trace.jsonl
//	file-tracer volumes
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version information injected by GoReleaser at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type globalOptions struct {
	debug   bool
	volumes []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "file-tracer",
		Short: "Correlate kernel file trace records into file events",
		Long: `file-tracer classifies kernel file trace records, resolves device paths
to drive letters, correlates renames with the create that opened the handle,
and dispatches one event per file action.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringArrayVar(&opts.volumes, "volume", nil, "Volume mapping DEVICE=DRIVE, repeatable (overrides discovery)")

	rootCmd.AddCommand(replayCmd(opts))
	rootCmd.AddCommand(volumesCmd(opts))

	return rootCmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
