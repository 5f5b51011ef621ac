package camera

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/skobkin/camsync/internal/bluetoothutil"
	"github.com/skobkin/camsync/internal/transport"
)

type readResult struct {
	raw []byte
	err error
}

type writeCall struct {
	id      string
	payload []byte
	needAck bool
}

type fakeRadio struct {
	mu sync.Mutex

	ads         []transport.Advertisement
	scanErr     error
	scanWindows []time.Duration
	cleared     int

	connectErr   error
	connects     []string
	services     []transport.ServiceInfo
	enumerateErr error
	enumerations int

	// reads are consumed per characteristic id; the last entry repeats.
	reads  map[string][]readResult
	writes []writeCall

	writeErr      error
	disconnects   int
	disconnectErr error
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{reads: make(map[string][]readResult)}
}

func (f *fakeRadio) Name() string { return "fake-radio" }

func (f *fakeRadio) Scan(_ context.Context, window time.Duration) ([]transport.Advertisement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanWindows = append(f.scanWindows, window)
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	return append([]transport.Advertisement(nil), f.ads...), nil
}

func (f *fakeRadio) ClearScanResults() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
}

func (f *fakeRadio) Connect(_ context.Context, address string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, address)

	return f.connectErr
}

func (f *fakeRadio) EnumerateServices(context.Context) ([]transport.ServiceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enumerations++
	if f.enumerateErr != nil {
		return nil, f.enumerateErr
	}

	return f.services, nil
}

func (f *fakeRadio) ReadCharacteristic(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(id)
	queue := f.reads[key]
	if len(queue) == 0 {
		return nil, errors.New("no scripted read")
	}
	next := queue[0]
	if len(queue) > 1 {
		f.reads[key] = queue[1:]
	}

	return next.raw, next.err
}

func (f *fakeRadio) WriteCharacteristic(_ context.Context, id string, payload []byte, needAck bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, writeCall{id: id, payload: append([]byte(nil), payload...), needAck: needAck})

	return f.writeErr
}

func (f *fakeRadio) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++

	return f.disconnectErr
}

func (f *fakeRadio) script(id string, results ...readResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[strings.ToLower(id)] = results
}

func fullServices() []transport.ServiceInfo {
	return []transport.ServiceInfo{
		{ID: "00001800-0000-1000-8000-00805f9b34fb", Characteristics: []string{"00002a00-0000-1000-8000-00805f9b34fb"}},
		{ID: "b5f90001-aa8d-11e3-9046-0002a5d5c51b", Characteristics: []string{
			strings.ToUpper(bluetoothutil.WiFiSSIDUUID),
			bluetoothutil.WiFiPasswordUUID,
			bluetoothutil.WiFiAPEnableUUID,
			bluetoothutil.WiFiAPStateUUID,
		}},
	}
}

func ok(raw ...byte) readResult {
	return readResult{raw: raw}
}

func text(s string) readResult {
	return readResult{raw: []byte(s)}
}

type fakeStation struct {
	mu sync.Mutex

	joinErr   error
	joins     []string
	statuses  []transport.StationStatus
	statusErr error
	polls     int
	leaves    int
	address   string
}

func (f *fakeStation) Name() string { return "fake-station" }

func (f *fakeStation) Join(_ context.Context, ssid, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, ssid)

	return f.joinErr
}

func (f *fakeStation) Status(context.Context) (transport.StationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.statusErr != nil {
		return transport.StationUnknown, f.statusErr
	}
	if len(f.statuses) == 0 {
		return transport.StationDisconnected, nil
	}
	next := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}

	return next, nil
}

func (f *fakeStation) LocalAddress(context.Context) (string, error) {
	if f.address == "" {
		return "", errors.New("no address")
	}

	return f.address, nil
}

func (f *fakeStation) Leave(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves++

	return nil
}

type fakeRequester struct {
	status int
	body   []byte
	err    error
	urls   []string
}

func (f *fakeRequester) Get(_ context.Context, url string) (int, []byte, error) {
	f.urls = append(f.urls, url)

	return f.status, f.body, f.err
}
