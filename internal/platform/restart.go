package platform

import (
	"fmt"
	"log/slog"
	"os"
)

// Restarter replaces the current process with a fresh copy of itself using
// the same arguments and environment.
type Restarter struct {
	Logger *slog.Logger
	// BeforeRestart runs right before the process is replaced, typically to
	// release the runtime lock.
	BeforeRestart func()

	executable func() (string, error)
	args       []string
	respawn    func(exe string, args, env []string) error
}

func NewRestarter(logger *slog.Logger, beforeRestart func()) *Restarter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Restarter{
		Logger:        logger.With("component", "platform"),
		BeforeRestart: beforeRestart,
		executable:    os.Executable,
		args:          os.Args,
		respawn:       respawnProcess,
	}
}

// Restart does not return on success where the platform can replace the
// process image in place.
func (r *Restarter) Restart() error {
	exe, err := r.executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	r.Logger.Info("self restart", "executable", exe, "args", r.args)

	if r.BeforeRestart != nil {
		r.BeforeRestart()
	}
	if err := r.respawn(exe, r.args, os.Environ()); err != nil {
		return fmt.Errorf("respawn %s: %w", exe, err)
	}

	return nil
}
