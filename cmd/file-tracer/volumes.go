package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/volume"
)

func volumesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "volumes",
		Short: "Print the device to drive letter table",
		Long: `Print the table used to rewrite device-form paths such as
\Device\HarddiskVolume3\Users to drive-letter form (C:\Users).

The table is discovered from the DOS device namespace on Windows, or taken
from --volume flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(opts.debug)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			normalizer, err := loadNormalizer(opts.volumes, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range normalizer.Mappings() {
				fmt.Fprintf(out, "%s\t%s\n", m.Drive, m.Device)
			}
			return nil
		},
	}
}

// loadNormalizer builds the volume table from explicit mappings, falling back
// to discovery when there are none.
func loadNormalizer(mappings []string, logger *zap.Logger) (*volume.Normalizer, error) {
	if len(mappings) == 0 {
		return volume.Discover(logger), nil
	}
	table, err := volume.ParseMappings(mappings)
	if err != nil {
		return nil, fmt.Errorf("invalid --volume: %w", err)
	}
	return volume.New(table), nil
}
