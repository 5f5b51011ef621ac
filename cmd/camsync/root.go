package main

import (
	"github.com/skobkin/camsync/internal/app"
	"github.com/skobkin/camsync/internal/config"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
	prefix     string
	adapter    string
	iface      string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   app.Name,
		Short: "Keep an action camera's clock in sync with this host",
		Long: `camsync finds the camera over Bluetooth LE, turns on its Wi-Fi access point,
joins it and sets the camera clock over HTTP. It then watches the association,
reconnects when it is lost and resynchronizes periodically.`,
		SilenceUsage: true,
		Version:      app.BuildVersionWithDate(),
	}
	cmd.SetVersionTemplate(`{{printf "camsync %s\n" .Version}}`)

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (.yaml, .yml or .json); defaults to the user config dir")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.prefix, "prefix", "", "advertised camera name prefix")
	pf.StringVar(&flags.adapter, "adapter", "", "bluetooth adapter id, e.g. hci0")
	pf.StringVar(&flags.iface, "iface", "", "wireless interface used to join the camera network")

	cmd.AddCommand(
		newRunCmd(flags),
		newSyncOnceCmd(flags),
		newScanCmd(flags),
		newEncodeCmd(flags),
		newVersionCmd(),
	)

	return cmd
}

// options turns the persistent flags into runtime options. Only flags the
// user actually set override the config file.
func (f *rootFlags) options(cmd *cobra.Command, lock bool) app.Options {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}

	return app.Options{
		ConfigPath: f.configPath,
		Lock:       lock,
		Override: func(cfg *config.AppConfig) {
			if changed("log-level") {
				cfg.Logging.Level = f.logLevel
			}
			if changed("prefix") {
				cfg.Device.NamePrefix = f.prefix
			}
			if changed("adapter") {
				cfg.Device.AdapterID = f.adapter
			}
			if changed("iface") {
				cfg.Network.Interface = f.iface
			}
		},
	}
}
