package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/skobkin/camsync/internal/app"
	"github.com/spf13/cobra"
)

func newScanCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List advertised Bluetooth LE devices for one scan window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.Initialize(flags.options(cmd, true))
			if err != nil {
				return err
			}
			defer func() {
				_ = rt.Close()
			}()

			window := rt.Config.Timing.ScanWindow.Std()
			prefix := rt.Config.Device.NamePrefix
			cmd.Printf("scanning for %s...\n", window)

			radio := rt.Stack.Radio
			defer radio.ClearScanResults()
			ads, err := radio.Scan(cmd.Context(), window)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "MATCH\tNAME\tADDRESS\tRSSI")
			matches := 0
			for _, ad := range ads {
				mark := ""
				if ad.Name != "" && strings.HasPrefix(ad.Name, prefix) {
					mark = "*"
					matches++
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", mark, ad.Name, ad.Address, ad.RSSI)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			cmd.Printf("%d devices, %d matching prefix %q\n", len(ads), matches, prefix)

			return nil
		},
	}
}
