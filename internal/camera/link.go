package camera

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skobkin/camsync/internal/bluetoothutil"
	"github.com/skobkin/camsync/internal/transport"
)

// Capability names one of the four required control-plane characteristics.
type Capability string

const (
	CapSSID     Capability = "ssid"
	CapPassword Capability = "password"
	CapAPEnable Capability = "ap_enable"
	CapAPState  Capability = "ap_state"
)

type capabilityID struct {
	capability Capability
	id         string
}

// Resolution order is also the order missing capabilities are reported in.
var requiredCapabilities = []capabilityID{
	{CapSSID, bluetoothutil.WiFiSSIDUUID},
	{CapPassword, bluetoothutil.WiFiPasswordUUID},
	{CapAPEnable, bluetoothutil.WiFiAPEnableUUID},
	{CapAPState, bluetoothutil.WiFiAPStateUUID},
}

// LinkHandle is an established short-range connection plus its resolved
// control characteristics. It must not be used after Disconnect.
type LinkHandle struct {
	radio     transport.ShortRange
	device    DeviceAddress
	refs      map[Capability]string
	connected bool
	logger    *slog.Logger
}

func (l *LinkHandle) Device() DeviceAddress {
	return l.device
}

func (l *LinkHandle) Connected() bool {
	return l != nil && l.connected
}

// Ref returns the characteristic identifier bound to c.
func (l *LinkHandle) Ref(c Capability) (string, bool) {
	id, ok := l.refs[c]

	return id, ok
}

// Missing lists the required capabilities left unbound by enumeration.
func (l *LinkHandle) Missing() []Capability {
	var missing []Capability
	for _, req := range requiredCapabilities {
		if _, ok := l.refs[req.capability]; !ok {
			missing = append(missing, req.capability)
		}
	}

	return missing
}

func (l *LinkHandle) Read(ctx context.Context, c Capability) ([]byte, error) {
	id, err := l.usable(c)
	if err != nil {
		return nil, err
	}
	raw, err := l.radio.ReadCharacteristic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadError, c, err)
	}

	return raw, nil
}

func (l *LinkHandle) Write(ctx context.Context, c Capability, payload []byte, needAck bool) error {
	id, err := l.usable(c)
	if err != nil {
		return err
	}
	if err := l.radio.WriteCharacteristic(ctx, id, payload, needAck); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteError, c, err)
	}

	return nil
}

// Disconnect tears the link down. Repeated calls are no-ops.
func (l *LinkHandle) Disconnect() error {
	if l == nil || !l.connected {
		return nil
	}
	l.connected = false
	if err := l.radio.Disconnect(); err != nil {
		l.logger.Warn("disconnect failed", "device", l.device.String(), "error", err)
		return fmt.Errorf("disconnect %s: %w", l.device, err)
	}
	l.logger.Info("link closed", "device", l.device.String())

	return nil
}

func (l *LinkHandle) usable(c Capability) (string, error) {
	if !l.Connected() {
		return "", ErrLinkClosed
	}
	id, ok := l.refs[c]
	if !ok {
		return "", &IncompleteCapabilitiesError{Missing: []Capability{c}}
	}

	return id, nil
}

// Connect opens the link to device and binds the control characteristics in
// one enumeration pass. When some bindings are missing it returns the
// connected handle together with an *IncompleteCapabilitiesError; the caller
// decides whether to disconnect.
func Connect(
	ctx context.Context,
	radio transport.ShortRange,
	device DeviceAddress,
	timeout time.Duration,
	logger *slog.Logger,
) (*LinkHandle, error) {
	logger = stageLogger(logger, "link")
	logger.Info("connecting", "device", device.String(), "timeout", timeout.String())

	if err := radio.Connect(ctx, device.Address, timeout); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectFailed, device, err)
	}

	link := &LinkHandle{
		radio:     radio,
		device:    device,
		refs:      make(map[Capability]string, len(requiredCapabilities)),
		connected: true,
		logger:    logger,
	}

	services, err := radio.EnumerateServices(ctx)
	if err != nil {
		_ = link.Disconnect()
		return nil, fmt.Errorf("%w: enumerate services on %s: %w", ErrConnectFailed, device, err)
	}
	bindCapabilities(link.refs, services)
	logger.Debug("services enumerated", "services", len(services), "bound", len(link.refs))

	if missing := link.Missing(); len(missing) > 0 {
		logger.Warn("control characteristics missing", "missing", fmt.Sprint(missing))
		return link, &IncompleteCapabilitiesError{Missing: missing}
	}
	logger.Info("link ready", "device", device.String())

	return link, nil
}

func bindCapabilities(refs map[Capability]string, services []transport.ServiceInfo) {
	for _, svc := range services {
		for _, charID := range svc.Characteristics {
			for _, req := range requiredCapabilities {
				if _, bound := refs[req.capability]; bound {
					continue
				}
				if strings.EqualFold(strings.TrimSpace(charID), req.id) {
					refs[req.capability] = charID
				}
			}
		}
	}
}
