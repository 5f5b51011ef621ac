package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/skobkin/camsync/internal/bluetoothutil"
)

const (
	nmBusName        = "org.freedesktop.NetworkManager"
	nmRootPath       = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmIface          = "org.freedesktop.NetworkManager"
	nmDeviceIface    = "org.freedesktop.NetworkManager.Device"
	nmConnIface      = "org.freedesktop.NetworkManager.Settings.Connection"
	nmIP4ConfigIface = "org.freedesktop.NetworkManager.IP4Config"

	nmErrNotActive = "org.freedesktop.NetworkManager.Device.NotActive"
	nmErrUnknown   = "org.freedesktop.NetworkManager.Settings.Connection.UnknownConnection"

	nmCloseTimeout = 5 * time.Second
)

// NetworkManager device states (NMDeviceState).
const (
	nmDeviceStateUnavailable  uint32 = 20
	nmDeviceStateDisconnected uint32 = 30
	nmDeviceStatePrepare      uint32 = 40
	nmDeviceStateActivated    uint32 = 100
	nmDeviceStateDeactivating uint32 = 110
	nmDeviceStateFailed       uint32 = 120
)

type nmObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	GetProperty(p string) (dbus.Variant, error)
}

type nmBus interface {
	object(path dbus.ObjectPath) nmObject
	Close() error
}

type systemBus struct {
	conn *dbus.Conn
}

func (b systemBus) object(path dbus.ObjectPath) nmObject {
	return b.conn.Object(nmBusName, path)
}

func (b systemBus) Close() error {
	return b.conn.Close()
}

// NMStation implements Station through the NetworkManager D-Bus API. Each
// Join creates an in-memory, non-autoconnecting profile that Leave and Close
// remove.
type NMStation struct {
	iface string
	dial  func() (nmBus, error)

	mu       sync.Mutex
	bus      nmBus
	device   dbus.ObjectPath
	profile  dbus.ObjectPath
	joinedTo string
}

func NewNMStation(iface string) *NMStation {
	return &NMStation{
		iface: strings.TrimSpace(iface),
		dial: func() (nmBus, error) {
			conn, err := dbus.ConnectSystemBus()
			if err != nil {
				return nil, err
			}
			return systemBus{conn: conn}, nil
		},
	}
}

func (s *NMStation) Name() string {
	return "networkmanager"
}

func (s *NMStation) Join(ctx context.Context, ssid, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := channelLogger("networkmanager", "iface", s.iface, "ssid", ssid)
	if s.profile != "" {
		logger.Debug("dropping previous profile before join", "profile", s.profile)
		if err := s.leaveLocked(ctx); err != nil {
			return err
		}
	}

	device, err := s.deviceLocked(ctx)
	if err != nil {
		return err
	}

	settings := stationSettings(ssid, secret)
	options := map[string]dbus.Variant{"persist": dbus.MakeVariant("volatile")}
	var (
		profile, active dbus.ObjectPath
		result          map[string]dbus.Variant
	)
	call := s.bus.object(nmRootPath).CallWithContext(ctx, nmIface+".AddAndActivateConnection2", 0, settings, device, dbus.ObjectPath("/"), options)
	if err := call.Store(&profile, &active, &result); err != nil {
		logger.Warn("add and activate connection failed", "error", err)
		return fmt.Errorf("activate connection on %s: %w", s.iface, err)
	}

	s.profile = profile
	s.joinedTo = ssid
	logger.Info("association started", "profile", profile, "active", active)

	return nil
}

func (s *NMStation) Status(ctx context.Context) (StationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	device, err := s.deviceLocked(ctx)
	if err != nil {
		return StationUnknown, err
	}

	raw, err := s.bus.object(device).GetProperty(nmDeviceIface + ".State")
	if err != nil {
		return StationUnknown, fmt.Errorf("read device state: %w", err)
	}
	state, ok := raw.Value().(uint32)
	if !ok {
		return StationUnknown, fmt.Errorf("unexpected device state type %T", raw.Value())
	}

	return stationStatusFromNM(state), nil
}

func (s *NMStation) LocalAddress(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	device, err := s.deviceLocked(ctx)
	if err != nil {
		return "", err
	}

	raw, err := s.bus.object(device).GetProperty(nmDeviceIface + ".Ip4Config")
	if err != nil {
		return "", fmt.Errorf("read ip4 config path: %w", err)
	}
	configPath, ok := raw.Value().(dbus.ObjectPath)
	if !ok || configPath == "" || configPath == "/" {
		return "", errors.New("interface has no ipv4 configuration")
	}

	raw, err = s.bus.object(configPath).GetProperty(nmIP4ConfigIface + ".AddressData")
	if err != nil {
		return "", fmt.Errorf("read ip4 address data: %w", err)
	}
	entries, ok := raw.Value().([]map[string]dbus.Variant)
	if !ok || len(entries) == 0 {
		return "", errors.New("interface has no ipv4 address")
	}
	address, ok := entries[0]["address"].Value().(string)
	if !ok || address == "" {
		return "", errors.New("interface has no ipv4 address")
	}

	return address, nil
}

func (s *NMStation) Leave(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.leaveLocked(ctx)
}

// Close leaves the joined network before dropping the bus connection.
func (s *NMStation) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bus == nil {
		return nil
	}

	var errs []error
	if s.profile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), nmCloseTimeout)
		errs = append(errs, s.leaveLocked(ctx))
		cancel()
	}
	errs = append(errs, s.bus.Close())
	s.bus = nil
	s.device = ""

	return errors.Join(errs...)
}

func (s *NMStation) leaveLocked(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	logger := channelLogger("networkmanager", "iface", s.iface, "ssid", s.joinedTo)

	var errs []error
	if s.device != "" {
		err := s.bus.object(s.device).CallWithContext(ctx, nmDeviceIface+".Disconnect", 0).Err
		if err != nil && !bluetoothutil.IsDBusErrorName(err, nmErrNotActive) {
			errs = append(errs, fmt.Errorf("disconnect %s: %w", s.iface, err))
		}
	}
	if s.profile != "" {
		err := s.bus.object(s.profile).CallWithContext(ctx, nmConnIface+".Delete", 0).Err
		if err != nil && !bluetoothutil.IsDBusErrorName(err, nmErrUnknown) {
			errs = append(errs, fmt.Errorf("delete profile %s: %w", s.profile, err))
		}
		s.profile = ""
		s.joinedTo = ""
	}

	if err := errors.Join(errs...); err != nil {
		logger.Warn("leave failed", "error", err)
		return err
	}
	logger.Debug("left network")

	return nil
}

func (s *NMStation) deviceLocked(ctx context.Context) (dbus.ObjectPath, error) {
	if s.bus == nil {
		bus, err := s.dial()
		if err != nil {
			return "", fmt.Errorf("connect system bus: %w", err)
		}
		s.bus = bus
	}
	if s.device != "" {
		return s.device, nil
	}
	if s.iface == "" {
		return "", errors.New("network interface is empty")
	}

	var device dbus.ObjectPath
	call := s.bus.object(nmRootPath).CallWithContext(ctx, nmIface+".GetDeviceByIpIface", 0, s.iface)
	if err := call.Store(&device); err != nil {
		return "", fmt.Errorf("resolve network device %q: %w", s.iface, err)
	}
	s.device = device

	return device, nil
}

func stationSettings(ssid, secret string) map[string]map[string]dbus.Variant {
	settings := map[string]map[string]dbus.Variant{
		"connection": {
			"id":          dbus.MakeVariant("camsync-" + ssid),
			"type":        dbus.MakeVariant("802-11-wireless"),
			"autoconnect": dbus.MakeVariant(false),
		},
		"802-11-wireless": {
			"ssid": dbus.MakeVariant([]byte(ssid)),
			"mode": dbus.MakeVariant("infrastructure"),
		},
		"ipv4": {"method": dbus.MakeVariant("auto")},
		"ipv6": {"method": dbus.MakeVariant("ignore")},
	}
	if secret != "" {
		settings["802-11-wireless-security"] = map[string]dbus.Variant{
			"key-mgmt": dbus.MakeVariant("wpa-psk"),
			"psk":      dbus.MakeVariant(secret),
		}
	}

	return settings
}

func stationStatusFromNM(state uint32) StationStatus {
	switch {
	case state == nmDeviceStateActivated:
		return StationAssociated
	case state == nmDeviceStateFailed:
		return StationFailed
	case state >= nmDeviceStatePrepare && state < nmDeviceStateActivated:
		return StationAssociating
	case state == nmDeviceStateDeactivating,
		state == nmDeviceStateDisconnected,
		state == nmDeviceStateUnavailable:
		return StationDisconnected
	default:
		return StationUnknown
	}
}
