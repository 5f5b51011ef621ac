package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	// Zone names must resolve on minimal images without tzdata.
	_ "time/tzdata"

	"github.com/skobkin/camsync/internal/clock"
	"github.com/skobkin/camsync/internal/config"
	"github.com/skobkin/camsync/internal/feedback"
	"github.com/skobkin/camsync/internal/timesource"
	"github.com/skobkin/camsync/internal/transport"
)

// Stack is the set of production collaborators built from configuration.
type Stack struct {
	Radio     *transport.BluetoothRadio
	Station   *transport.NMStation
	Requester *transport.HTTPRequester
	Time      *timesource.Adapter
	Pulser    feedback.Pulser
}

func BuildStack(cfg config.AppConfig, clk clock.Clock, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}

	timeAdapter, err := NewTimeAdapter(cfg.TimeSource, clk, logger.With("component", "timesource"))
	if err != nil {
		return nil, err
	}
	pulser, err := feedback.New(cfg.Feedback, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize feedback: %w", err)
	}

	return &Stack{
		Radio:     transport.NewBluetoothRadio(cfg.Device.AdapterID),
		Station:   transport.NewNMStation(cfg.Network.Interface),
		Requester: transport.NewHTTPRequester(nil, cfg.Timing.HTTPTimeout.Std()),
		Time:      timeAdapter,
		Pulser:    pulser,
	}, nil
}

// NewTimeAdapter selects the time source and display zone.
func NewTimeAdapter(cfg config.TimeSourceConfig, clk clock.Clock, logger *slog.Logger) (*timesource.Adapter, error) {
	location := time.Local
	if name := strings.TrimSpace(cfg.Location); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("load time zone %q: %w", name, err)
		}
		location = loc
	}

	var source timesource.Source
	switch cfg.Kind {
	case config.TimeSourceSystem, "":
		source = timesource.NewSystemSource(clk)
	case config.TimeSourceRTC:
		source = timesource.NewRTCSource(cfg.RTCDevice)
	default:
		return nil, fmt.Errorf("unsupported time source %q", cfg.Kind)
	}

	return timesource.NewAdapter(source, location, logger), nil
}

func (s *Stack) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Radio != nil {
		if err := s.Radio.Disconnect(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Station != nil {
		if err := s.Station.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close station: %w", err))
		}
	}
	if closer, ok := s.Pulser.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pulser: %w", err))
		}
	}

	return errors.Join(errs...)
}
