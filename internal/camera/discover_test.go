package camera

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skobkin/camsync/internal/logging"
	"github.com/skobkin/camsync/internal/transport"
)

func TestDiscoverFirstMatchWins(t *testing.T) {
	radio := newFakeRadio()
	radio.ads = []transport.Advertisement{
		{Name: "", Address: "AA:00:00:00:00:01"},
		{Name: "gopro lower", Address: "AA:00:00:00:00:02"},
		{Name: "GoPro 1234", Address: "AA:00:00:00:00:03", RSSI: -70},
		{Name: "GoPro 9999", Address: "AA:00:00:00:00:04", RSSI: -40},
	}

	addr, found, err := Discover(context.Background(), radio, "GoPro", 10*time.Second, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected device to be found")
	}
	if addr.Address != "AA:00:00:00:00:03" || addr.Name != "GoPro 1234" {
		t.Fatalf("expected first prefix match, got %+v", addr)
	}
	if radio.cleared != 1 {
		t.Fatalf("expected scan results to be cleared once, got %d", radio.cleared)
	}
}

func TestDiscoverNoMatchIsNotAnError(t *testing.T) {
	radio := newFakeRadio()
	radio.ads = []transport.Advertisement{{Name: "Speaker", Address: "AA:00:00:00:00:01"}}
	window := 3 * time.Second

	_, found, err := Discover(context.Background(), radio, "GoPro", window, logging.Discard())
	if err != nil {
		t.Fatalf("expected nil error for no match, got %v", err)
	}
	if found {
		t.Fatalf("expected not found")
	}
	if len(radio.scanWindows) != 1 || radio.scanWindows[0] != window {
		t.Fatalf("expected one scan bounded by %s, got %v", window, radio.scanWindows)
	}
	if radio.cleared != 1 {
		t.Fatalf("expected scan results to be cleared")
	}
}

func TestDiscoverScanErrorClearsResults(t *testing.T) {
	radio := newFakeRadio()
	radio.scanErr = errors.New("adapter off")

	_, found, err := Discover(context.Background(), radio, "GoPro", time.Second, logging.Discard())
	if err == nil || found {
		t.Fatalf("expected scan error, got found=%v err=%v", found, err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("scan failure must not be reported as not found")
	}
	if radio.cleared != 1 {
		t.Fatalf("expected scan results cleared on failure")
	}
}
