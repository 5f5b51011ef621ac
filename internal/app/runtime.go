package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/skobkin/camsync/internal/bus"
	"github.com/skobkin/camsync/internal/clock"
	"github.com/skobkin/camsync/internal/config"
	"github.com/skobkin/camsync/internal/logging"
	"github.com/skobkin/camsync/internal/platform"
	"github.com/skobkin/camsync/internal/supervisor"
)

// Options tune Initialize from the command line.
type Options struct {
	ConfigPath string
	// Override is applied after the config file is loaded and before it is
	// validated.
	Override func(cfg *config.AppConfig)
	// Lock takes the runtime lock over the adapter and interface.
	Lock bool
}

// Runtime owns process-wide resources for one command invocation.
type Runtime struct {
	Paths      Paths
	Config     config.AppConfig
	LogManager *logging.Manager
	Clock      clock.Clock
	Bus        *bus.PubSubBus
	Stack      *Stack
	Status     *StatusRecorder

	lock         platform.RuntimeLock
	statusCancel context.CancelFunc
	statusDone   <-chan struct{}
}

func Initialize(opts Options) (*Runtime, error) {
	paths, err := ResolvePaths(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.Override != nil {
		opts.Override(&cfg)
		cfg.FillMissingDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", paths.ConfigFile, err)
	}

	rt := &Runtime{
		Paths:  paths,
		Config: cfg,
		Clock:  clock.Real(),
	}

	logMgr := logging.NewManager(os.Stderr)
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting camsync", "version", BuildVersion(), "build_date", BuildDateYMD(), "config", paths.ConfigFile)

	if opts.Lock {
		lock, err := platform.AcquireRuntimeLock(Name, cfg.Device.AdapterID, cfg.Network.Interface)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("acquire runtime lock: %w", err)
		}
		rt.lock = lock
	}

	stack, err := BuildStack(cfg, rt.Clock, slog.Default())
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Stack = stack
	if rt.Stack.Time.Degraded() {
		slog.Warn("time source lost power, camera will receive a possibly wrong time", "kind", string(cfg.TimeSource.Kind))
	}
	if snap, err := rt.Stack.Time.Snapshot(); err != nil {
		slog.Warn("time source unreadable at startup", "error", err)
	} else {
		slog.Info("time source ready", "kind", string(cfg.TimeSource.Kind), "time", snap.String())
	}

	rt.Bus = bus.New(logMgr.Logger("bus"))
	rt.Status = NewStatusRecorder(slog.Default())
	statusCtx, cancel := context.WithCancel(context.Background())
	rt.statusCancel = cancel
	rt.statusDone = rt.Status.Start(statusCtx, rt.Bus)

	return rt, nil
}

// NewSupervisor wires the stack into a supervisor. withRestart enables
// self-restart after a setup failure.
func (r *Runtime) NewSupervisor(withRestart bool) (*supervisor.Supervisor, error) {
	deps := supervisor.Deps{
		Radio:     r.Stack.Radio,
		Station:   r.Stack.Station,
		Requester: r.Stack.Requester,
		Time:      r.Stack.Time,
		Pulser:    r.Stack.Pulser,
		Clock:     r.Clock,
		Bus:       r.Bus,
		Logger:    slog.Default(),
	}
	if withRestart {
		deps.Restarter = platform.NewRestarter(slog.Default(), r.releaseForRestart)
	}

	return supervisor.New(deps, supervisor.SettingsFromConfig(r.Config))
}

// releaseForRestart frees what the next process image needs: the radio,
// the NetworkManager profile and the runtime lock.
func (r *Runtime) releaseForRestart() {
	if err := r.Stack.Close(); err != nil {
		slog.Debug("release stack before restart", "error", err)
	}
	if r.lock != nil {
		_ = r.lock.Release()
		r.lock = nil
	}
	_ = r.LogManager.Close()
}

func (r *Runtime) Close() error {
	var errs []error
	if r.statusCancel != nil {
		r.statusCancel()
		<-r.statusDone
		r.Status.LogSummary()
	}
	if r.Bus != nil {
		r.Bus.Close()
	}
	if r.Stack != nil {
		if err := r.Stack.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.lock != nil {
		if err := r.lock.Release(); err != nil {
			errs = append(errs, err)
		}
		r.lock = nil
	}
	if r.LogManager != nil {
		if err := r.LogManager.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
