package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gen2brain/beeep"
)

const (
	fallbackBeepFrequency = 880
	fallbackBeepMs        = 200
)

var systemBeep = beeep.Beep

// BeepPulser sounds the system beeper for the pulse duration.
type BeepPulser struct {
	frequency float64
	duration  time.Duration
	logger    *slog.Logger
	beep      func(freq float64, durationMs int) error
}

func NewBeepPulser(frequency float64, duration time.Duration, logger *slog.Logger) *BeepPulser {
	if frequency <= 0 {
		frequency = fallbackBeepFrequency
	}

	return &BeepPulser{frequency: frequency, duration: duration, logger: logger, beep: systemBeep}
}

func (p *BeepPulser) Name() string { return "beep" }

func (p *BeepPulser) Pulse(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms := int(p.duration / time.Millisecond)
	if ms <= 0 {
		ms = fallbackBeepMs
	}
	if err := p.beep(p.frequency, ms); err != nil {
		return fmt.Errorf("beep: %w", err)
	}
	p.logger.Debug("confirm pulse", "frequency", p.frequency, "duration_ms", ms)

	return nil
}
