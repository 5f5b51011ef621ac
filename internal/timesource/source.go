package timesource

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/skobkin/camsync/internal/clock"
)

const defaultRTCRoot = "/sys/class/rtc"

// Source is the reference clock collaborator.
type Source interface {
	Now() (time.Time, error)
	// LostPower is advisory: a degraded source is still read and applied.
	LostPower() bool
}

// Adapter converts source readings into Snapshots in the configured zone.
type Adapter struct {
	source   Source
	location *time.Location
	logger   *slog.Logger
}

func NewAdapter(source Source, location *time.Location, logger *slog.Logger) *Adapter {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{source: source, location: location, logger: logger}
}

func (a *Adapter) Snapshot() (Snapshot, error) {
	now, err := a.source.Now()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read time source: %w", err)
	}
	snap := FromTime(now.In(a.location))
	if err := snap.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("time source returned invalid time %s: %w", snap, err)
	}
	if a.source.LostPower() {
		a.logger.Warn("time source lost power, time may be incorrect", "time", snap.String())
	}

	return snap, nil
}

func (a *Adapter) Degraded() bool {
	return a.source.LostPower()
}

// SystemSource reads the host clock.
type SystemSource struct {
	clock clock.Clock
}

func NewSystemSource(clk clock.Clock) *SystemSource {
	if clk == nil {
		clk = clock.Real()
	}

	return &SystemSource{clock: clk}
}

func (s *SystemSource) Now() (time.Time, error) {
	return s.clock.Now(), nil
}

func (s *SystemSource) LostPower() bool {
	return false
}

// RTCSource reads a kernel RTC device through sysfs. The ds1307 family driver
// refuses reads while the oscillator-stop flag is set, which is reported as
// lost power.
type RTCSource struct {
	dir string
}

func NewRTCSource(device string) *RTCSource {
	return newRTCSource(defaultRTCRoot, device)
}

func newRTCSource(root, device string) *RTCSource {
	device = strings.TrimSpace(device)
	if device == "" {
		device = "rtc0"
	}

	return &RTCSource{dir: filepath.Join(root, filepath.Base(device))}
}

func (s *RTCSource) Now() (time.Time, error) {
	path := filepath.Join(s.dir, "since_epoch")
	// #nosec G304 -- path is a sysfs attribute of the configured RTC device.
	raw, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s: %w", path, err)
	}
	seconds, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if seconds <= 0 {
		return time.Time{}, errors.New("rtc reports an unset clock")
	}

	return time.Unix(seconds, 0).UTC(), nil
}

func (s *RTCSource) LostPower() bool {
	now, err := s.Now()
	if err != nil {
		return true
	}

	return now.Year() < minYear
}
