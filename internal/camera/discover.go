package camera

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skobkin/camsync/internal/transport"
)

// Discover scans for window and returns the first advertisement whose name
// starts with prefix. The prefix match is case-sensitive. found is false when
// nothing matched; that is a normal outcome and err stays nil.
func Discover(
	ctx context.Context,
	radio transport.ShortRange,
	prefix string,
	window time.Duration,
	logger *slog.Logger,
) (addr DeviceAddress, found bool, err error) {
	logger = stageLogger(logger, "discover")
	defer radio.ClearScanResults()

	logger.Info("scanning", "prefix", prefix, "window", window.String())
	ads, err := radio.Scan(ctx, window)
	if err != nil {
		return DeviceAddress{}, false, fmt.Errorf("scan for %q: %w", prefix, err)
	}
	logger.Debug("scan finished", "advertisements", len(ads))

	for _, ad := range ads {
		if ad.Name == "" || !strings.HasPrefix(ad.Name, prefix) {
			continue
		}
		addr = DeviceAddress{Address: ad.Address, Name: ad.Name}
		logger.Info("device found", "name", ad.Name, "address", ad.Address, "rssi", ad.RSSI)

		return addr, true, nil
	}
	logger.Info("no matching device", "prefix", prefix)

	return DeviceAddress{}, false, nil
}

// NotFoundError wraps ErrNotFound with the prefix that was searched for.
func NotFoundError(prefix string) error {
	return fmt.Errorf("%w: no advertisement with prefix %q", ErrNotFound, prefix)
}
