package main

import (
	"fmt"
	"io"
	"time"

	"github.com/skobkin/camsync/internal/app"
	"github.com/skobkin/camsync/internal/camera"
	"github.com/skobkin/camsync/internal/clock"
	"github.com/skobkin/camsync/internal/config"
	"github.com/skobkin/camsync/internal/logging"
	"github.com/skobkin/camsync/internal/timesource"
	"github.com/spf13/cobra"
)

func newEncodeCmd(flags *rootFlags) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the time-set parameter and URL for a time",
		Long:  "Prints what would be sent to the camera. Uses the configured time source unless --time is given (RFC3339).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := app.ResolvePaths(flags.configPath)
			if err != nil {
				return err
			}
			cfg, err := config.Load(paths.ConfigFile)
			if err != nil {
				return err
			}
			flags.options(cmd, false).Override(&cfg)
			cfg.FillMissingDefaults()

			snap, err := encodeSnapshot(cfg.TimeSource, at)
			if err != nil {
				return err
			}

			return printEncoding(cmd.OutOrStdout(), cfg.Camera, snap)
		},
	}
	cmd.Flags().StringVar(&at, "time", "", "time to encode, RFC3339 (default: now from the time source)")

	return cmd
}

func encodeSnapshot(cfg config.TimeSourceConfig, at string) (timesource.Snapshot, error) {
	if at == "" {
		adapter, err := app.NewTimeAdapter(cfg, clock.Real(), logging.Discard())
		if err != nil {
			return timesource.Snapshot{}, err
		}

		return adapter.Snapshot()
	}

	parsed, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return timesource.Snapshot{}, fmt.Errorf("parse --time: %w", err)
	}
	snap := timesource.FromTime(parsed)
	if err := snap.Validate(); err != nil {
		return timesource.Snapshot{}, err
	}

	return snap, nil
}

func printEncoding(w io.Writer, cfg config.CameraConfig, snap timesource.Snapshot) error {
	endpoint := camera.Endpoint{BaseURL: cfg.BaseURL, Path: cfg.DateTimePath}
	_, err := fmt.Fprintf(w, "time:  %s\nparam: %s\nurl:   %s\n", snap, camera.EncodeTimeParam(snap), camera.TimeURL(endpoint, snap))

	return err
}
