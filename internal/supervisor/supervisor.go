// Package supervisor drives the camera sync stages as an explicit state
// machine: initial setup, health monitoring, throttled reconnection and
// periodic resynchronization.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/skobkin/camsync/internal/bus"
	"github.com/skobkin/camsync/internal/camera"
	"github.com/skobkin/camsync/internal/clock"
	"github.com/skobkin/camsync/internal/events"
	"github.com/skobkin/camsync/internal/feedback"
	"github.com/skobkin/camsync/internal/timesource"
	"github.com/skobkin/camsync/internal/transport"
)

// TimeReader yields a fresh snapshot for every apply.
type TimeReader interface {
	Snapshot() (timesource.Snapshot, error)
}

// Restarter replaces the running process. On success it normally does not
// return.
type Restarter interface {
	Restart() error
}

type RestartFunc func() error

func (f RestartFunc) Restart() error { return f() }

// Deps are the collaborators the supervisor owns for its lifetime.
type Deps struct {
	Radio     transport.ShortRange
	Station   transport.Station
	Requester transport.Requester
	Time      TimeReader
	Pulser    feedback.Pulser
	Clock     clock.Clock
	// Restarter is optional; without it a setup failure just ends Run.
	Restarter Restarter
	Bus       bus.MessageBus
	Logger    *slog.Logger
	NewRunID  func() string
}

// Supervisor holds all session state: one link, one credential set and
// one association at most.
type Supervisor struct {
	deps     Deps
	settings Settings
	logger   *slog.Logger

	state   State
	runID   string
	trigger Trigger

	device camera.DeviceAddress
	link   *camera.LinkHandle
	creds  camera.Credentials

	wasAssociated        bool
	lastSuccess          time.Time
	lastApplyAttempt     time.Time
	lastReconnectAttempt time.Time

	setupErr    error
	lastOutcome SyncOutcome
}

func New(deps Deps, settings Settings) (*Supervisor, error) {
	var missing []string
	if deps.Radio == nil {
		missing = append(missing, "radio")
	}
	if deps.Station == nil {
		missing = append(missing, "station")
	}
	if deps.Requester == nil {
		missing = append(missing, "requester")
	}
	if deps.Time == nil {
		missing = append(missing, "time source")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("supervisor: missing collaborators: %v", missing)
	}
	if deps.Pulser == nil {
		deps.Pulser = feedback.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Bus == nil {
		deps.Bus = bus.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}

	return &Supervisor{
		deps:     deps,
		settings: settings,
		logger:   deps.Logger.With("component", "supervisor"),
		state:    StateIdle,
	}, nil
}

func (s *Supervisor) State() State {
	return s.state
}

// LastSuccess is the time of the last applied time, zero if none yet.
func (s *Supervisor) LastSuccess() time.Time {
	return s.lastSuccess
}

func (s *Supervisor) LastOutcome() SyncOutcome {
	return s.lastOutcome
}

// Run drives the machine until ctx is done or setup fails. After a setup
// failure it waits the restart delay and asks the Restarter to replace the
// process; the returned error carries the setup failure.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Info("supervisor started", "prefix", s.settings.NamePrefix)

	for !s.state.Terminal() {
		s.Step(ctx)
	}
	s.release()

	if s.state == StateStopped {
		s.logger.Info("supervisor stopped")
		return nil
	}

	return s.escalate(ctx)
}

// SyncOnce runs the setup path up to and including the first apply and
// reports its outcome. It never monitors or restarts.
func (s *Supervisor) SyncOnce(ctx context.Context) (SyncOutcome, error) {
	for s.state.setup() {
		s.Step(ctx)
	}
	s.release()

	switch {
	case s.state == StateStopped:
		return s.lastOutcome, ctx.Err()
	case s.setupErr != nil:
		return s.lastOutcome, s.setupErr
	case !s.lastOutcome.Success:
		return s.lastOutcome, s.lastOutcome.Err
	default:
		return s.lastOutcome, nil
	}
}

// Step executes the transition function of the current state once.
func (s *Supervisor) Step(ctx context.Context) State {
	var next State
	switch s.state {
	case StateIdle:
		next = s.onIdle(ctx)
	case StateDiscovering:
		next = s.onDiscovering(ctx)
	case StateLinking:
		next = s.onLinking(ctx)
	case StateActivating:
		next = s.onActivating(ctx)
	case StateHandover:
		next = s.onHandover(ctx)
	case StateApplying:
		next = s.onApplying(ctx)
	case StateMonitoring:
		next = s.onMonitoring(ctx)
	case StateReconnecting:
		next = s.onReconnecting(ctx)
	default:
		return s.state
	}
	s.transition(next)

	return s.state
}

func (s *Supervisor) transition(next State) {
	if next == s.state {
		return
	}
	prev := s.state
	s.state = next
	s.logger.Info("state transition", "run_id", s.runID, "from", prev.String(), "to", next.String())
	s.deps.Bus.Publish(events.TopicState, events.StateChange{
		RunID:     s.runID,
		From:      prev.String(),
		To:        next.String(),
		Timestamp: s.deps.Clock.Now(),
	})
}

func (s *Supervisor) escalate(ctx context.Context) error {
	setupErr := fmt.Errorf("initial setup failed: %w", s.setupErr)
	if s.deps.Restarter == nil {
		return setupErr
	}

	s.logger.Error("initial setup failed, restarting after delay",
		"error", s.setupErr, "delay", s.settings.RestartDelay.String())
	if err := s.deps.Clock.Sleep(ctx, s.settings.RestartDelay); err != nil {
		return errors.Join(setupErr, err)
	}
	s.logger.Info("restarting process")
	if err := s.deps.Restarter.Restart(); err != nil {
		return errors.Join(setupErr, fmt.Errorf("restart: %w", err))
	}

	return setupErr
}

// release drops whatever the session still holds.
func (s *Supervisor) release() {
	if s.link != nil {
		_ = s.link.Disconnect()
		s.link = nil
	}
}

func (s *Supervisor) newRun(trigger Trigger) {
	s.runID = s.deps.NewRunID()
	s.trigger = trigger
}

func (s *Supervisor) publishOutcome(outcome SyncOutcome) {
	s.lastOutcome = outcome
	logger := s.logger.With("run_id", outcome.RunID, "trigger", string(outcome.Trigger))
	if outcome.Success {
		logger.Info("sync succeeded")
	} else {
		logger.Warn("sync failed",
			"stage", outcome.FailedStage.String(),
			"reason", string(outcome.Reason),
			"retry", outcome.RetryEligible,
			"error", outcome.Err,
		)
	}
	s.deps.Bus.Publish(events.TopicSyncOutcome, outcome)
}

func (s *Supervisor) failure(stage State, err error, retry bool) SyncOutcome {
	return SyncOutcome{
		RunID:         s.runID,
		Trigger:       s.trigger,
		FailedStage:   stage,
		Reason:        camera.KindOf(err),
		RetryEligible: retry && !isCanceled(err),
		Err:           err,
		At:            s.deps.Clock.Now(),
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
