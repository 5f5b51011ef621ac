package camera

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skobkin/camsync/internal/clock"
	"github.com/skobkin/camsync/internal/transport"
)

// Join starts station association and polls until associated or timeout.
// It is one timed attempt; on timeout the association is dropped.
func Join(
	ctx context.Context,
	station transport.Station,
	clk clock.Clock,
	creds Credentials,
	timeout, pollInterval time.Duration,
	logger *slog.Logger,
) error {
	logger = stageLogger(logger, "join")
	if !creds.Complete() {
		return ErrIncompleteCredentials
	}

	logger.Info("joining network", "ssid", creds.SSID, "station", station.Name())
	if err := station.Join(ctx, creds.SSID, creds.Password); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrJoinFailed, creds.SSID, err)
	}

	deadline := clk.Now().Add(timeout)
	last := transport.StationUnknown
	for {
		status, err := station.Status(ctx)
		if err != nil {
			logger.Debug("station status failed", "error", err)
		} else {
			last = status
		}
		if last == transport.StationAssociated {
			logger.Info("network joined", "ssid", creds.SSID)
			return nil
		}
		if last == transport.StationFailed {
			leaveQuietly(ctx, station, logger)
			return fmt.Errorf("%w: %s: association failed", ErrJoinFailed, creds.SSID)
		}
		if !clk.Now().Before(deadline) {
			break
		}
		if err := clk.Sleep(ctx, pollInterval); err != nil {
			return err
		}
	}
	leaveQuietly(ctx, station, logger)

	return fmt.Errorf("%w: %s after %s, last status %s", ErrJoinTimeout, creds.SSID, timeout, last)
}

// Handover releases the short-range link and moves to the camera network.
func Handover(
	ctx context.Context,
	link *LinkHandle,
	station transport.Station,
	clk clock.Clock,
	creds Credentials,
	timing Timing,
	logger *slog.Logger,
) error {
	logger = stageLogger(logger, "handover")

	if err := link.Disconnect(); err != nil {
		logger.Warn("link teardown failed, continuing", "error", err)
	}
	if err := clk.Sleep(ctx, timing.LinkReleaseDelay); err != nil {
		return err
	}

	if err := Join(ctx, station, clk, creds, timing.JoinTimeout, timing.JoinPollInterval, logger); err != nil {
		return err
	}
	if err := clk.Sleep(ctx, timing.JoinSettleDelay); err != nil {
		return err
	}

	if addr, err := station.LocalAddress(ctx); err != nil {
		logger.Debug("local address unavailable", "error", err)
	} else {
		logger.Info("local address", "address", addr)
	}

	return nil
}

func leaveQuietly(ctx context.Context, station transport.Station, logger *slog.Logger) {
	if err := station.Leave(ctx); err != nil {
		logger.Debug("leave network failed", "error", err)
	}
}
