package transport

import (
	"context"
	"time"
)

// Advertisement is one identity seen during a short-range scan.
type Advertisement struct {
	Name    string
	Address string
	RSSI    int
}

// ServiceInfo lists the characteristic identifiers exposed under one service.
type ServiceInfo struct {
	ID              string
	Characteristics []string
}

// ShortRange is the short-range wireless collaborator used for discovery and
// the control plane. Implementations hold at most one connection.
type ShortRange interface {
	Name() string
	Scan(ctx context.Context, window time.Duration) ([]Advertisement, error)
	// ClearScanResults releases any advertisement state kept by the last scan.
	ClearScanResults()
	Connect(ctx context.Context, address string, timeout time.Duration) error
	EnumerateServices(ctx context.Context) ([]ServiceInfo, error)
	ReadCharacteristic(ctx context.Context, id string) ([]byte, error)
	WriteCharacteristic(ctx context.Context, id string, payload []byte, needAck bool) error
	Disconnect() error
}

// StationStatus is the association state of the local wireless interface.
type StationStatus int

const (
	StationUnknown StationStatus = iota
	StationDisconnected
	StationAssociating
	StationAssociated
	StationFailed
)

func (s StationStatus) String() string {
	switch s {
	case StationDisconnected:
		return "disconnected"
	case StationAssociating:
		return "associating"
	case StationAssociated:
		return "associated"
	case StationFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Station is the local wireless network collaborator.
type Station interface {
	Name() string
	// Join starts station-mode association and returns without waiting for it.
	Join(ctx context.Context, ssid, secret string) error
	Status(ctx context.Context) (StationStatus, error)
	LocalAddress(ctx context.Context) (string, error)
	// Leave drops the current association, if any.
	Leave(ctx context.Context) error
}

// Requester performs a single blocking GET against a caller-supplied URL.
type Requester interface {
	Get(ctx context.Context, url string) (statusCode int, body []byte, err error)
}
