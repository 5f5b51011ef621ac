package bluetoothutil

import (
	"fmt"
	"strings"

	"tinygo.org/x/bluetooth"
)

// Control-plane characteristics of the camera's Wi-Fi access point service.
const (
	WiFiSSIDUUID     = "b5f90002-aa8d-11e3-9046-0002a5d5c51b"
	WiFiPasswordUUID = "b5f90003-aa8d-11e3-9046-0002a5d5c51b"
	WiFiAPEnableUUID = "b5f90004-aa8d-11e3-9046-0002a5d5c51b"
	WiFiAPStateUUID  = "b5f90005-aa8d-11e3-9046-0002a5d5c51b"
)

func mustParseUUID(raw string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(strings.TrimSpace(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid bluetooth UUID %q: %v", raw, err))
	}

	return uuid
}

// ControlPlaneUUIDs returns the parsed form of the four AP control identifiers,
// in SSID, password, enable, state order.
func ControlPlaneUUIDs() []bluetooth.UUID {
	return []bluetooth.UUID{
		mustParseUUID(WiFiSSIDUUID),
		mustParseUUID(WiFiPasswordUUID),
		mustParseUUID(WiFiAPEnableUUID),
		mustParseUUID(WiFiAPStateUUID),
	}
}
