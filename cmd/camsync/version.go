package main

import (
	"runtime"

	"github.com/skobkin/camsync/internal/app"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the camsync version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("camsync %s %s/%s %s\n", app.BuildVersionWithDate(), runtime.GOOS, runtime.GOARCH, runtime.Version())
			cmd.Printf("source: %s\n", app.SourceURL)
		},
	}
}
