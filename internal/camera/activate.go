package camera

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skobkin/camsync/internal/clock"
)

var apEnableCommand = []byte{0x01}

// Activate reads the AP credentials, turns the access point on and polls its
// state until it broadcasts. Steps run strictly in that order. On APTimeout
// the credentials that were read are still returned alongside the error.
func Activate(
	ctx context.Context,
	link *LinkHandle,
	clk clock.Clock,
	timing Timing,
	logger *slog.Logger,
) (Credentials, error) {
	logger = stageLogger(logger, "activate")

	if err := clk.Sleep(ctx, timing.StabilizeDelay); err != nil {
		return Credentials{}, err
	}

	ssid, err := readCredential(ctx, link, CapSSID)
	if err != nil {
		return Credentials{}, err
	}
	password, err := readCredential(ctx, link, CapPassword)
	if err != nil {
		return Credentials{}, err
	}
	creds := Credentials{SSID: ssid, Password: password}
	logger.Info("credentials read", "ssid", creds.SSID, "password", creds.MaskedPassword())

	if err := link.Write(ctx, CapAPEnable, apEnableCommand, false); err != nil {
		return Credentials{}, err
	}
	logger.Info("ap enable sent")
	if err := clk.Sleep(ctx, timing.EnableSettle); err != nil {
		return Credentials{}, err
	}

	if err := pollAPState(ctx, link, clk, timing, logger); err != nil {
		return creds, err
	}

	return creds, nil
}

func readCredential(ctx context.Context, link *LinkHandle, c Capability) (string, error) {
	raw, err := link.Read(ctx, c)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrReadError, c)
	}

	return string(raw), nil
}

// pollAPState sleeps only between attempts, so the budget costs at most
// (attempts-1) intervals.
func pollAPState(ctx context.Context, link *LinkHandle, clk clock.Clock, timing Timing, logger *slog.Logger) error {
	attempts := timing.APPollAttempts
	if attempts <= 0 {
		attempts = 1
	}

	last := APUnknown
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, readErr := link.Read(ctx, CapAPState)
		last = ClassifyAPState(raw, readErr)
		logger.Debug("ap state", "attempt", attempt, "status", last.String(), "raw", fmt.Sprintf("% x", raw), "error", readErr)

		if last == APBroadcasting {
			logger.Info("ap broadcasting", "attempt", attempt)
			return nil
		}
		if attempt < attempts {
			if err := clk.Sleep(ctx, timing.APPollInterval); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("%w: %d attempts, last status %s", ErrAPTimeout, attempts, last)
}
