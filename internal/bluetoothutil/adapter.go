// Package bluetoothutil holds tinygo bluetooth helpers shared by the radio
// transport: adapter resolution, scan lifecycle and BlueZ error classification.
package bluetoothutil

import (
	"runtime"
	"strings"

	"tinygo.org/x/bluetooth"
)

// EnableAdapter powers the adapter, ignoring errors that only mean it is
// already initialized.
func EnableAdapter(adapter *bluetooth.Adapter) error {
	if err := adapter.Enable(); err != nil && !isBenignEnableError(runtime.GOOS, err) {
		return err
	}

	return nil
}

func isBenignEnableError(goos string, err error) bool {
	if err == nil {
		return false
	}
	msg := strings.TrimSpace(strings.ToLower(err.Error()))

	switch goos {
	case "windows":
		// RoInitialize(S_FALSE) surfaces as "Incorrect function." once COM is up.
		return msg == "incorrect function" || msg == "incorrect function."
	case "linux":
		return IsDBusErrorName(err, "org.bluez.Error.AlreadyExists")
	default:
		return false
	}
}
