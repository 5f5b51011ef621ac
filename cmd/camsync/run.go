package main

import (
	"log/slog"

	"github.com/skobkin/camsync/internal/app"
	"github.com/spf13/cobra"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sync the camera clock and keep supervising the connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.Initialize(flags.options(cmd, true))
			if err != nil {
				return err
			}
			defer func() {
				_ = rt.Close()
			}()

			sup, err := rt.NewSupervisor(true)
			if err != nil {
				return err
			}
			if err := sup.Run(cmd.Context()); err != nil {
				slog.Error("supervisor exited", "error", err)
				return err
			}

			return nil
		},
	}
}

func newSyncOnceCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-once",
		Short: "Run discovery through time apply once and exit",
		Long:  "Runs the setup path a single time without monitoring. Exits non-zero unless the time was applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.Initialize(flags.options(cmd, true))
			if err != nil {
				return err
			}
			defer func() {
				_ = rt.Close()
			}()

			sup, err := rt.NewSupervisor(false)
			if err != nil {
				return err
			}
			outcome, err := sup.SyncOnce(cmd.Context())
			if err != nil {
				slog.Error("sync failed", "stage", outcome.FailedStage.String(), "reason", string(outcome.Reason), "error", err)
				return err
			}
			cmd.Printf("time applied (run %s)\n", outcome.RunID)

			return nil
		},
	}
}
