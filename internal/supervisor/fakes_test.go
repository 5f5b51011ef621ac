package supervisor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/skobkin/camsync/internal/bluetoothutil"
	"github.com/skobkin/camsync/internal/bus"
	"github.com/skobkin/camsync/internal/timesource"
	"github.com/skobkin/camsync/internal/transport"
)

type scriptedRadio struct {
	mu sync.Mutex

	ads   []transport.Advertisement
	scans int

	services []transport.ServiceInfo
	reads    map[string][][]byte
	readLog  map[string]int
	writes   int
	connects int
	closes   int
}

func newScriptedRadio() *scriptedRadio {
	r := &scriptedRadio{
		ads: []transport.Advertisement{{Name: "GoPro 1234", Address: "AA:BB:CC:DD:EE:FF"}},
		services: []transport.ServiceInfo{{ID: "svc", Characteristics: []string{
			bluetoothutil.WiFiSSIDUUID,
			bluetoothutil.WiFiPasswordUUID,
			bluetoothutil.WiFiAPEnableUUID,
			bluetoothutil.WiFiAPStateUUID,
		}}},
		reads:   make(map[string][][]byte),
		readLog: make(map[string]int),
	}
	r.reads[bluetoothutil.WiFiSSIDUUID] = [][]byte{[]byte("GP12345678")}
	r.reads[bluetoothutil.WiFiPasswordUUID] = [][]byte{[]byte("pass-word")}
	r.reads[bluetoothutil.WiFiAPStateUUID] = [][]byte{{0x00}, {0x01}, {0x03}}

	return r
}

func (r *scriptedRadio) Name() string { return "scripted" }

func (r *scriptedRadio) Scan(context.Context, time.Duration) ([]transport.Advertisement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans++

	return append([]transport.Advertisement(nil), r.ads...), nil
}

func (r *scriptedRadio) ClearScanResults() {}

func (r *scriptedRadio) Connect(context.Context, string, time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connects++

	return nil
}

func (r *scriptedRadio) EnumerateServices(context.Context) ([]transport.ServiceInfo, error) {
	return r.services, nil
}

// ReadCharacteristic replays the script per id; the last value repeats.
func (r *scriptedRadio) ReadCharacteristic(_ context.Context, id string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(id)
	r.readLog[key]++
	queue := r.reads[key]
	if len(queue) == 0 {
		return nil, errors.New("unreadable")
	}
	idx := r.readLog[key] - 1
	if idx >= len(queue) {
		idx = len(queue) - 1
	}

	return queue[idx], nil
}

func (r *scriptedRadio) WriteCharacteristic(context.Context, string, []byte, bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++

	return nil
}

func (r *scriptedRadio) Disconnect() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++

	return nil
}

func (r *scriptedRadio) powerOff() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ads = nil
}

func (r *scriptedRadio) rearmAPState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readLog = make(map[string]int)
}

type switchStation struct {
	mu       sync.Mutex
	status   transport.StationStatus
	joins    int
	leaves   int
	onJoin   transport.StationStatus
	statusOf int
}

func newSwitchStation() *switchStation {
	return &switchStation{status: transport.StationDisconnected, onJoin: transport.StationAssociated}
}

func (s *switchStation) Name() string { return "switch" }

func (s *switchStation) Join(context.Context, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joins++
	s.status = s.onJoin

	return nil
}

func (s *switchStation) Status(context.Context) (transport.StationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusOf++

	return s.status, nil
}

func (s *switchStation) LocalAddress(context.Context) (string, error) {
	return "10.5.5.100", nil
}

func (s *switchStation) Leave(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves++
	s.status = transport.StationDisconnected

	return nil
}

func (s *switchStation) set(status transport.StationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

type countingRequester struct {
	mu     sync.Mutex
	status int
	calls  int
	urls   []string
}

func (r *countingRequester) Get(_ context.Context, url string) (int, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.urls = append(r.urls, url)

	return r.status, nil, nil
}

func (r *countingRequester) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls
}

type fixedTime struct {
	snap timesource.Snapshot
	err  error
}

func (f fixedTime) Snapshot() (timesource.Snapshot, error) { return f.snap, f.err }

type countingPulser struct {
	pulses int
}

func (p *countingPulser) Name() string { return "counting" }

func (p *countingPulser) Pulse(context.Context) error {
	p.pulses++
	return nil
}

type recordingBus struct {
	mu       sync.Mutex
	messages map[string][]any
}

var _ bus.MessageBus = (*recordingBus)(nil)

func newRecordingBus() *recordingBus {
	return &recordingBus{messages: make(map[string][]any)}
}

func (b *recordingBus) Publish(topic string, msg any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[topic] = append(b.messages[topic], msg)
}

func (b *recordingBus) Subscribe(...string) bus.Subscription { return make(bus.Subscription) }

func (b *recordingBus) Unsubscribe(bus.Subscription, ...string) {}

func (b *recordingBus) Close() {}

func (b *recordingBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.messages[topic])
}
