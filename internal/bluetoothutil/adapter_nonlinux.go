//go:build !linux

package bluetoothutil

import "tinygo.org/x/bluetooth"

// ResolveAdapter ignores adapterID: only the Linux backend can address
// adapters other than the default one.
func ResolveAdapter(_ string) *bluetooth.Adapter {
	return bluetooth.DefaultAdapter
}
