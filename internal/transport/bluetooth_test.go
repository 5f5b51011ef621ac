package transport

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseBluetoothAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid upper", input: "AA:BB:CC:DD:EE:FF"},
		{name: "valid lower", input: "aa:bb:cc:dd:ee:ff"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "invalid", input: "not-a-mac", wantErr: true},
	}

	for _, tc := range tests {
		_, err := parseBluetoothAddress(tc.input)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error, got nil", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestNormalizeAddress(t *testing.T) {
	if got := normalizeAddress(" aa:bb:cc:dd:ee:ff "); got != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("unexpected normalized address: %q", got)
	}
}

func TestBluetoothRadioRequiresLink(t *testing.T) {
	r := NewBluetoothRadio("")
	ctx := context.Background()

	if _, err := r.EnumerateServices(ctx); err == nil {
		t.Fatalf("enumerate without link must fail")
	}
	if _, err := r.ReadCharacteristic(ctx, "b5f90002-aa8d-11e3-9046-0002a5d5c51b"); err == nil {
		t.Fatalf("read without link must fail")
	}
	if err := r.WriteCharacteristic(ctx, "b5f90004-aa8d-11e3-9046-0002a5d5c51b", []byte{1}, false); err == nil {
		t.Fatalf("write without link must fail")
	}
	if err := r.Disconnect(); err != nil {
		t.Fatalf("disconnect without link must be a no-op: %v", err)
	}
}

func TestBluetoothRadioRejectsAcknowledgedWrite(t *testing.T) {
	r := NewBluetoothRadio("")
	err := r.WriteCharacteristic(context.Background(), "b5f90004-aa8d-11e3-9046-0002a5d5c51b", []byte{1}, true)
	if !errors.Is(err, ErrAckWriteUnsupported) {
		t.Fatalf("expected ErrAckWriteUnsupported, got %v", err)
	}
}

func TestDropLateConnectionIgnoresFailedConnect(t *testing.T) {
	done := make(chan connectResult, 1)
	done <- connectResult{err: context.DeadlineExceeded}

	finished := make(chan struct{})
	go func() {
		dropLateConnection(done)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("dropLateConnection did not return")
	}
}

func TestStationStatusString(t *testing.T) {
	if StationAssociated.String() != "associated" || StationStatus(42).String() != "unknown" {
		t.Fatalf("unexpected status names")
	}
}
