//go:build linux

package bluetoothutil

import (
	"strings"

	"tinygo.org/x/bluetooth"
)

// ResolveAdapter returns the BlueZ adapter with the given id (e.g. "hci1"),
// or the default one when id is blank.
func ResolveAdapter(adapterID string) *bluetooth.Adapter {
	trimmed := strings.TrimSpace(adapterID)
	if trimmed == "" {
		return bluetooth.DefaultAdapter
	}

	return bluetooth.NewAdapter(trimmed)
}
