package camera

import (
	"context"
	"errors"
	"strings"
)

// DeviceAddress identifies the discovered camera on the short-range medium.
type DeviceAddress struct {
	Address string
	Name    string
}

func (a DeviceAddress) String() string {
	if a.Name == "" {
		return a.Address
	}

	return a.Name + " (" + a.Address + ")"
}

// Credentials are the camera AP join parameters. Both fields must be set
// before activation proceeds.
type Credentials struct {
	SSID     string
	Password string
}

func (c Credentials) Complete() bool {
	return c.SSID != "" && c.Password != ""
}

// MaskedPassword keeps the first and last characters only.
func (c Credentials) MaskedPassword() string {
	return maskSecret(c.Password)
}

func maskSecret(secret string) string {
	switch n := len(secret); {
	case n == 0:
		return ""
	case n <= 2:
		return strings.Repeat("*", n)
	default:
		return secret[:1] + strings.Repeat("*", n-2) + secret[n-1:]
	}
}

// APStatus is the ordinal readiness of the camera access point.
type APStatus int

const (
	APDisabled APStatus = iota
	APStarting
	APBroadcasting
	APUnknown
)

const (
	apStateStartingMarker  byte = 0x01
	apStateBroadcastingMin byte = 0x03
)

func (s APStatus) String() string {
	switch s {
	case APDisabled:
		return "disabled"
	case APStarting:
		return "starting"
	case APBroadcasting:
		return "broadcasting"
	default:
		return "unknown"
	}
}

// ClassifyAPState maps one raw AP-state read to a status. Unreadable or empty
// reads are unknown, never ready.
func ClassifyAPState(raw []byte, readErr error) APStatus {
	if readErr != nil || len(raw) == 0 {
		return APUnknown
	}

	switch v := raw[0]; {
	case v >= apStateBroadcastingMin:
		return APBroadcasting
	case v == apStateStartingMarker:
		return APStarting
	case v == 0x00:
		return APDisabled
	default:
		return APUnknown
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
