// Package feedback emits the physical confirm pulse after a time apply.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skobkin/camsync/internal/config"
)

// Pulser emits one confirm signal.
type Pulser interface {
	Name() string
	Pulse(ctx context.Context) error
}

// Nop is the pulser used when feedback is disabled.
type Nop struct{}

func (Nop) Name() string { return "none" }

func (Nop) Pulse(context.Context) error { return nil }

// New builds the pulser selected by cfg.
func New(cfg config.FeedbackConfig, logger *slog.Logger) (Pulser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "feedback", "kind", string(cfg.Kind))

	switch cfg.Kind {
	case config.FeedbackNone, "":
		return Nop{}, nil
	case config.FeedbackBeep:
		return NewBeepPulser(cfg.BeepFrequency, cfg.PulseDuration.Std(), logger), nil
	case config.FeedbackSerial:
		return NewSerialPulser(cfg.SerialPort, cfg.SerialBaud, cfg.PulseDuration.Std(), logger)
	default:
		return nil, fmt.Errorf("unsupported feedback kind %q", cfg.Kind)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
