package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skobkin/camsync/internal/bluetoothutil"
	"tinygo.org/x/bluetooth"
)

const defaultBluetoothReadBufferSize = 512

type bluetoothLink struct {
	address string
	device  bluetooth.Device
	chars   map[string]bluetooth.DeviceCharacteristic
}

// BluetoothRadio implements ShortRange on top of tinygo.org/x/bluetooth.
type BluetoothRadio struct {
	adapterID string

	mu      sync.Mutex
	adapter *bluetooth.Adapter
	enabled bool

	seen      []Advertisement
	seenIndex map[string]int
	addresses map[string]bluetooth.Address

	link *bluetoothLink
}

func NewBluetoothRadio(adapterID string) *BluetoothRadio {
	return &BluetoothRadio{
		adapterID: strings.TrimSpace(adapterID),
		seenIndex: make(map[string]int),
		addresses: make(map[string]bluetooth.Address),
	}
}

func (r *BluetoothRadio) Name() string {
	return "bluetooth"
}

// Scan collects advertisements for the whole window and returns them in
// first-seen order.
func (r *BluetoothRadio) Scan(ctx context.Context, window time.Duration) ([]Advertisement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := channelLogger("bluetooth", "adapter", r.adapterID)
	adapter, err := r.enableLocked()
	if err != nil {
		logger.Warn("enable adapter failed", "error", err)
		return nil, err
	}
	if err := bluetoothutil.StopScan(adapter); err != nil {
		return nil, fmt.Errorf("reset bluetooth scan state: %w", err)
	}
	r.clearLocked()

	scanCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	var resultsMu sync.Mutex
	scanErrCh := make(chan error, 1)
	go func() {
		scanErrCh <- bluetoothutil.RunScan(adapter, func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			resultsMu.Lock()
			defer resultsMu.Unlock()
			r.recordLocked(result)
		})
	}()

	logger.Debug("scan started", "window", window)
	if err := bluetoothutil.AwaitScan(scanCtx, adapter, scanErrCh); err != nil {
		logger.Warn("scan failed", "error", err)
		return nil, err
	}

	resultsMu.Lock()
	found := append([]Advertisement(nil), r.seen...)
	resultsMu.Unlock()
	logger.Debug("scan finished", "devices", len(found))

	return found, nil
}

func (r *BluetoothRadio) ClearScanResults() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
}

func (r *BluetoothRadio) Connect(ctx context.Context, address string, timeout time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := channelLogger("bluetooth", "address", address, "adapter", r.adapterID)
	if r.link != nil {
		return fmt.Errorf("already connected to %s", r.link.address)
	}

	adapter, err := r.enableLocked()
	if err != nil {
		return err
	}
	addr, ok := r.addresses[normalizeAddress(address)]
	if !ok {
		if addr, err = parseBluetoothAddress(address); err != nil {
			return err
		}
	}

	logger.Debug("connecting device", "timeout", timeout)
	device, err := connectWithTimeout(ctx, adapter, addr, timeout)
	if err != nil {
		logger.Warn("connect device failed", "error", err)
		return fmt.Errorf("connect bluetooth device %q: %w", address, err)
	}

	r.link = &bluetoothLink{
		address: address,
		device:  device,
		chars:   make(map[string]bluetooth.DeviceCharacteristic),
	}
	logger.Info("connected")

	return nil
}

func (r *BluetoothRadio) EnumerateServices(ctx context.Context) ([]ServiceInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.link == nil {
		return nil, errors.New("bluetooth link is not connected")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	services, err := r.link.device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("discover services: %w", err)
	}

	infos := make([]ServiceInfo, 0, len(services))
	for _, svc := range services {
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			// Some stacks refuse unfiltered discovery.
			filtered, filterErr := svc.DiscoverCharacteristics(bluetoothutil.ControlPlaneUUIDs())
			if filterErr != nil {
				return nil, fmt.Errorf("discover characteristics of %s: %w", svc.UUID().String(), err)
			}
			chars = filtered
		}

		info := ServiceInfo{ID: svc.UUID().String()}
		for _, char := range chars {
			id := char.UUID().String()
			info.Characteristics = append(info.Characteristics, id)
			key := strings.ToLower(id)
			if _, exists := r.link.chars[key]; !exists {
				r.link.chars[key] = char
			}
		}
		infos = append(infos, info)
	}

	return infos, nil
}

func (r *BluetoothRadio) ReadCharacteristic(ctx context.Context, id string) ([]byte, error) {
	char, err := r.characteristic(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := readBluetoothCharacteristic(char, defaultBluetoothReadBufferSize)
	if err != nil {
		return nil, fmt.Errorf("read characteristic %s: %w", id, err)
	}

	return payload, nil
}

// ErrAckWriteUnsupported is returned for acknowledged writes: the BlueZ
// backend only exposes write without response.
var ErrAckWriteUnsupported = errors.New("acknowledged write unsupported")

func (r *BluetoothRadio) WriteCharacteristic(ctx context.Context, id string, payload []byte, needAck bool) error {
	if needAck {
		return fmt.Errorf("write characteristic %s: %w", id, ErrAckWriteUnsupported)
	}
	char, err := r.characteristic(ctx, id)
	if err != nil {
		return err
	}

	written, err := char.WriteWithoutResponse(payload)
	if err != nil {
		return fmt.Errorf("write characteristic %s: %w", id, err)
	}
	if written != len(payload) {
		return fmt.Errorf("short write to %s: wrote %d of %d", id, written, len(payload))
	}

	return nil
}

func (r *BluetoothRadio) Disconnect() error {
	r.mu.Lock()
	link := r.link
	r.link = nil
	r.mu.Unlock()

	if link == nil {
		return nil
	}

	logger := channelLogger("bluetooth", "address", link.address)
	if err := link.device.Disconnect(); err != nil {
		logger.Warn("disconnect failed", "error", err)
		return fmt.Errorf("disconnect bluetooth device: %w", err)
	}
	logger.Info("disconnected")

	return nil
}

func (r *BluetoothRadio) characteristic(ctx context.Context, id string) (bluetooth.DeviceCharacteristic, error) {
	if err := ctx.Err(); err != nil {
		return bluetooth.DeviceCharacteristic{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.link == nil {
		return bluetooth.DeviceCharacteristic{}, errors.New("bluetooth link is not connected")
	}
	char, ok := r.link.chars[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("characteristic %s is not enumerated", id)
	}

	return char, nil
}

func (r *BluetoothRadio) enableLocked() (*bluetooth.Adapter, error) {
	if r.adapter == nil {
		r.adapter = bluetoothutil.ResolveAdapter(r.adapterID)
	}
	if !r.enabled {
		if err := bluetoothutil.EnableAdapter(r.adapter); err != nil {
			return nil, fmt.Errorf("enable bluetooth adapter: %w", err)
		}
		r.enabled = true
	}

	return r.adapter, nil
}

func (r *BluetoothRadio) recordLocked(result bluetooth.ScanResult) {
	address := normalizeAddress(result.Address.String())
	if address == "" {
		return
	}
	entry := Advertisement{
		Name:    strings.TrimSpace(result.LocalName()),
		Address: address,
		RSSI:    int(result.RSSI),
	}

	if idx, ok := r.seenIndex[address]; ok {
		// Names often arrive only in the scan response.
		if r.seen[idx].Name == "" {
			r.seen[idx].Name = entry.Name
		}
		r.seen[idx].RSSI = entry.RSSI
		return
	}
	r.seenIndex[address] = len(r.seen)
	r.seen = append(r.seen, entry)
	r.addresses[address] = result.Address
}

func (r *BluetoothRadio) clearLocked() {
	r.seen = nil
	r.seenIndex = make(map[string]int)
	r.addresses = make(map[string]bluetooth.Address)
}

type connectResult struct {
	device bluetooth.Device
	err    error
}

func connectWithTimeout(ctx context.Context, adapter *bluetooth.Adapter, addr bluetooth.Address, timeout time.Duration) (bluetooth.Device, error) {
	done := make(chan connectResult, 1)
	go func() {
		device, err := adapter.Connect(addr, bluetooth.ConnectionParams{})
		done <- connectResult{device: device, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.device, res.err
	case <-ctx.Done():
		go dropLateConnection(done)
		return bluetooth.Device{}, ctx.Err()
	case <-timer.C:
		go dropLateConnection(done)
		return bluetooth.Device{}, fmt.Errorf("timed out after %s", timeout)
	}
}

// dropLateConnection closes a connection that completed after its caller gave up,
// so no second link stays open behind the radio's back.
func dropLateConnection(done <-chan connectResult) {
	res := <-done
	if res.err == nil {
		_ = res.device.Disconnect()
	}
}

func readBluetoothCharacteristic(char bluetooth.DeviceCharacteristic, bufferSize int) ([]byte, error) {
	if bufferSize <= 0 {
		return nil, errors.New("buffer size must be positive")
	}

	buf := make([]byte, bufferSize)
	n, err := char.Read(buf)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	if n > len(buf) {
		return nil, fmt.Errorf("payload length %d exceeds buffer size %d", n, len(buf))
	}

	payload := make([]byte, n)
	copy(payload, buf[:n])
	return payload, nil
}

func parseBluetoothAddress(raw string) (bluetooth.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return bluetooth.Address{}, errors.New("bluetooth address is empty")
	}

	mac, err := bluetooth.ParseMAC(strings.ToUpper(trimmed))
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("invalid bluetooth address %q: %w", trimmed, err)
	}

	return bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}, nil
}

func normalizeAddress(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
