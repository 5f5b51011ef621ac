package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"
)

// rtsLine is the subset of serial.Port the pulser drives.
type rtsLine interface {
	SetRTS(rts bool) error
	Close() error
}

type openPortFunc func(name string, mode *serial.Mode) (rtsLine, error)

func openSerialPort(name string, mode *serial.Mode) (rtsLine, error) {
	return serial.Open(name, mode)
}

// SerialPulser raises the RTS line of a serial adapter for the pulse
// duration. The port is opened lazily and kept open between pulses.
type SerialPulser struct {
	portName string
	baudRate int
	duration time.Duration
	logger   *slog.Logger
	open     openPortFunc

	mu   sync.Mutex
	port rtsLine
}

func NewSerialPulser(portName string, baudRate int, duration time.Duration, logger *slog.Logger) (*SerialPulser, error) {
	if portName == "" {
		return nil, errors.New("serial port is empty")
	}
	if baudRate <= 0 {
		return nil, fmt.Errorf("invalid serial baud rate: %d", baudRate)
	}

	return &SerialPulser{
		portName: portName,
		baudRate: baudRate,
		duration: duration,
		logger:   logger,
		open:     openSerialPort,
	}, nil
}

func (p *SerialPulser) Name() string { return "serial" }

func (p *SerialPulser) Pulse(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		port, err := p.open(p.portName, &serial.Mode{BaudRate: p.baudRate})
		if err != nil {
			return fmt.Errorf("open serial port %q: %w", p.portName, err)
		}
		p.port = port
	}

	if err := p.port.SetRTS(true); err != nil {
		p.resetLocked()
		return fmt.Errorf("raise rts on %q: %w", p.portName, err)
	}
	waitErr := sleepWithContext(ctx, p.duration)
	if err := p.port.SetRTS(false); err != nil {
		p.resetLocked()
		return fmt.Errorf("lower rts on %q: %w", p.portName, err)
	}
	if waitErr != nil {
		return waitErr
	}
	p.logger.Debug("confirm pulse", "port", p.portName, "duration", p.duration.String())

	return nil
}

// Close releases the port if it was opened.
func (p *SerialPulser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil

	return err
}

func (p *SerialPulser) resetLocked() {
	if p.port == nil {
		return
	}
	if err := p.port.Close(); err != nil {
		p.logger.Debug("close serial port failed", "port", p.portName, "error", err)
	}
	p.port = nil
}
