package feedback

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/skobkin/camsync/internal/config"
	"github.com/skobkin/camsync/internal/logging"
	"go.bug.st/serial"
)

func TestNewSelectsPulser(t *testing.T) {
	base := config.Default().Feedback

	tests := []struct {
		name    string
		mutate  func(cfg *config.FeedbackConfig)
		want    string
		wantErr bool
	}{
		{name: "none", mutate: func(cfg *config.FeedbackConfig) { cfg.Kind = config.FeedbackNone }, want: "none"},
		{name: "beep", mutate: func(cfg *config.FeedbackConfig) { cfg.Kind = config.FeedbackBeep }, want: "beep"},
		{name: "serial", mutate: func(cfg *config.FeedbackConfig) {
			cfg.Kind = config.FeedbackSerial
			cfg.SerialPort = "/dev/ttyUSB0"
		}, want: "serial"},
		{name: "serial without port", mutate: func(cfg *config.FeedbackConfig) {
			cfg.Kind = config.FeedbackSerial
			cfg.SerialPort = ""
		}, wantErr: true},
		{name: "unknown", mutate: func(cfg *config.FeedbackConfig) { cfg.Kind = "laser" }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			pulser, err := New(cfg, logging.Discard())
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pulser.Name() != tc.want {
				t.Fatalf("expected %q pulser, got %q", tc.want, pulser.Name())
			}
		})
	}
}

func TestBeepPulserUsesConfiguredTone(t *testing.T) {
	p := NewBeepPulser(880, 200*time.Millisecond, logging.Discard())
	var gotFreq float64
	var gotMs int
	p.beep = func(freq float64, ms int) error {
		gotFreq, gotMs = freq, ms
		return nil
	}

	if err := p.Pulse(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFreq != 880 || gotMs != 200 {
		t.Fatalf("expected 880Hz for 200ms, got %vHz for %dms", gotFreq, gotMs)
	}
}

func TestBeepPulserPropagatesError(t *testing.T) {
	p := NewBeepPulser(880, 200*time.Millisecond, logging.Discard())
	p.beep = func(float64, int) error { return errors.New("no speaker") }

	if err := p.Pulse(context.Background()); err == nil {
		t.Fatalf("expected beep error")
	}
}

type fakeLine struct {
	rts    []bool
	rtsErr error
	closed int
}

func (l *fakeLine) SetRTS(rts bool) error {
	l.rts = append(l.rts, rts)
	return l.rtsErr
}

func (l *fakeLine) Close() error {
	l.closed++
	return nil
}

func TestSerialPulserTogglesRTS(t *testing.T) {
	p, err := NewSerialPulser("/dev/ttyUSB0", 9600, time.Millisecond, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := &fakeLine{}
	opens := 0
	var gotMode *serial.Mode
	p.open = func(name string, mode *serial.Mode) (rtsLine, error) {
		opens++
		gotMode = mode
		return line, nil
	}

	for i := 0; i < 2; i++ {
		if err := p.Pulse(context.Background()); err != nil {
			t.Fatalf("pulse %d: %v", i, err)
		}
	}
	if opens != 1 {
		t.Fatalf("expected port opened once, got %d", opens)
	}
	if gotMode == nil || gotMode.BaudRate != 9600 {
		t.Fatalf("expected baud 9600, got %+v", gotMode)
	}
	if want := []bool{true, false, true, false}; !reflect.DeepEqual(line.rts, want) {
		t.Fatalf("expected rts sequence %v, got %v", want, line.rts)
	}
	if err := p.Close(); err != nil || line.closed != 1 {
		t.Fatalf("expected port closed once, err=%v closed=%d", err, line.closed)
	}
}

func TestSerialPulserReopensAfterFailure(t *testing.T) {
	p, err := NewSerialPulser("/dev/ttyUSB0", 9600, 0, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := &fakeLine{rtsErr: errors.New("unplugged")}
	p.open = func(string, *serial.Mode) (rtsLine, error) { return line, nil }

	if err := p.Pulse(context.Background()); err == nil {
		t.Fatalf("expected rts error")
	}
	if line.closed != 1 || p.port != nil {
		t.Fatalf("expected failed port to be released")
	}
}
