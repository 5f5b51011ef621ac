package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skobkin/camsync/internal/camera"
	"github.com/skobkin/camsync/internal/events"
	"github.com/skobkin/camsync/internal/transport"
)

type stage struct {
	state State
	run   func(ctx context.Context) error
}

// reconnectUnit is discovery through handover, retried as a whole.
func (s *Supervisor) reconnectUnit() []stage {
	return []stage{
		{StateDiscovering, s.discover},
		{StateLinking, s.connectLink},
		{StateActivating, s.activate},
		{StateHandover, s.handover},
	}
}

func (s *Supervisor) onIdle(ctx context.Context) State {
	if ctx.Err() != nil {
		return StateStopped
	}
	s.newRun(TriggerSetup)
	s.logger.Info("orchestration started", "run_id", s.runID, "trigger", string(s.trigger))

	return StateDiscovering
}

func (s *Supervisor) onDiscovering(ctx context.Context) State {
	return s.setupStage(ctx, StateDiscovering, s.discover, StateLinking)
}

func (s *Supervisor) onLinking(ctx context.Context) State {
	return s.setupStage(ctx, StateLinking, s.connectLink, StateActivating)
}

func (s *Supervisor) onActivating(ctx context.Context) State {
	return s.setupStage(ctx, StateActivating, s.activate, StateHandover)
}

func (s *Supervisor) onHandover(ctx context.Context) State {
	next := s.setupStage(ctx, StateHandover, s.handover, StateApplying)
	if next == StateApplying {
		s.wasAssociated = true
	}

	return next
}

// onApplying moves to monitoring whatever the apply result.
func (s *Supervisor) onApplying(ctx context.Context) State {
	s.apply(ctx)
	if ctx.Err() != nil {
		return StateStopped
	}

	return StateMonitoring
}

func (s *Supervisor) onMonitoring(ctx context.Context) State {
	if err := s.deps.Clock.Sleep(ctx, s.settings.MonitorInterval); err != nil {
		return StateStopped
	}

	status, err := s.deps.Station.Status(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return StateStopped
		}
		s.logger.Debug("station status failed", "error", err)
		status = transport.StationUnknown
	}
	now := s.deps.Clock.Now()

	if status != transport.StationAssociated {
		if s.wasAssociated {
			s.wasAssociated = false
			s.alert(status)
		}
		if s.reconnectAllowed(now) {
			return StateReconnecting
		}

		return StateMonitoring
	}

	s.wasAssociated = true
	if s.resyncDue(now) {
		s.newRun(TriggerPeriodic)
		s.logger.Info("periodic resync", "run_id", s.runID)
		s.apply(ctx)
		if ctx.Err() != nil {
			return StateStopped
		}
	}

	return StateMonitoring
}

func (s *Supervisor) onReconnecting(ctx context.Context) State {
	s.lastReconnectAttempt = s.deps.Clock.Now()
	s.newRun(TriggerReconnect)
	s.logger.Info("reconnection started", "run_id", s.runID)

	if err := s.teardown(ctx); err != nil {
		return StateStopped
	}
	for _, st := range s.reconnectUnit() {
		if err := st.run(ctx); err != nil {
			if ctx.Err() != nil {
				return StateStopped
			}
			s.release()
			s.publishOutcome(s.failure(st.state, err, true))
			s.logger.Info("reconnection deferred", "run_id", s.runID, "cooldown", s.settings.ReconnectCooldown.String())

			return StateMonitoring
		}
	}
	s.wasAssociated = true

	s.apply(ctx)
	if ctx.Err() != nil {
		return StateStopped
	}

	return StateMonitoring
}

func (s *Supervisor) setupStage(ctx context.Context, current State, run func(context.Context) error, next State) State {
	err := run(ctx)
	if err == nil {
		return next
	}
	if ctx.Err() != nil {
		return StateStopped
	}

	s.release()
	s.setupErr = fmt.Errorf("%s: %w", current, err)
	s.publishOutcome(s.failure(current, err, s.deps.Restarter != nil))

	return StateSetupFailed
}

func (s *Supervisor) reconnectAllowed(now time.Time) bool {
	if s.lastReconnectAttempt.IsZero() {
		return true
	}

	return now.Sub(s.lastReconnectAttempt) >= s.settings.ReconnectCooldown
}

// resyncDue reports a periodic apply once the resync period has passed since
// the last success. After a failed attempt the next one waits the apply
// retry interval.
func (s *Supervisor) resyncDue(now time.Time) bool {
	lastFailed := s.lastApplyAttempt.After(s.lastSuccess)
	if lastFailed && now.Sub(s.lastApplyAttempt) < s.settings.ApplyRetryInterval {
		return false
	}
	if s.lastSuccess.IsZero() {
		return true
	}

	return now.Sub(s.lastSuccess) >= s.settings.ResyncPeriod
}

func (s *Supervisor) teardown(ctx context.Context) error {
	s.release()
	if err := s.deps.Station.Leave(ctx); err != nil {
		s.logger.Debug("leave network failed", "error", err)
	}

	return s.deps.Clock.Sleep(ctx, s.settings.TeardownDelay)
}

func (s *Supervisor) alert(status transport.StationStatus) {
	reason := fmt.Sprintf("camera network lost (status %s)", status)
	s.logger.Warn("network alert", "status", status.String())
	s.deps.Bus.Publish(events.TopicAlert, events.Alert{Reason: reason, Timestamp: s.deps.Clock.Now()})
}

func (s *Supervisor) stageLogger() *slog.Logger {
	return s.deps.Logger.With("component", "camera", "run_id", s.runID)
}

func (s *Supervisor) discover(ctx context.Context) error {
	addr, found, err := camera.Discover(ctx, s.deps.Radio, s.settings.NamePrefix, s.settings.Timing.ScanWindow, s.stageLogger())
	if err != nil {
		return err
	}
	if !found {
		return camera.NotFoundError(s.settings.NamePrefix)
	}
	s.device = addr

	return nil
}

func (s *Supervisor) connectLink(ctx context.Context) error {
	link, err := camera.Connect(ctx, s.deps.Radio, s.device, s.settings.Timing.ConnectTimeout, s.stageLogger())
	if err != nil {
		if link != nil {
			_ = link.Disconnect()
		}
		return err
	}
	s.link = link

	return nil
}

// activate re-reads credentials on every run; they may change between
// sessions.
func (s *Supervisor) activate(ctx context.Context) error {
	creds, err := camera.Activate(ctx, s.link, s.deps.Clock, s.settings.Timing, s.stageLogger())
	if err != nil {
		return err
	}
	s.creds = creds

	return nil
}

// handover consumes the link.
func (s *Supervisor) handover(ctx context.Context) error {
	link := s.link
	s.link = nil

	return camera.Handover(ctx, link, s.deps.Station, s.deps.Clock, s.creds, s.settings.Timing, s.stageLogger())
}

// apply reads a fresh snapshot and performs one time-set exchange.
func (s *Supervisor) apply(ctx context.Context) {
	s.lastApplyAttempt = s.deps.Clock.Now()

	snap, err := s.deps.Time.Snapshot()
	if err != nil {
		s.publishOutcome(s.failure(StateApplying, fmt.Errorf("%w: %w", camera.ErrTimeSource, err), true))
		return
	}
	if err := camera.ApplyTime(ctx, s.deps.Requester, s.settings.Endpoint, snap, s.stageLogger()); err != nil {
		s.publishOutcome(s.failure(StateApplying, err, true))
		return
	}

	s.lastSuccess = s.deps.Clock.Now()
	s.pulse(ctx)
	s.publishOutcome(SyncOutcome{
		RunID:   s.runID,
		Trigger: s.trigger,
		Success: true,
		At:      s.lastSuccess,
	})
}

func (s *Supervisor) pulse(ctx context.Context) {
	evt := events.Pulse{Pulser: s.deps.Pulser.Name(), Timestamp: s.deps.Clock.Now()}
	if err := s.deps.Pulser.Pulse(ctx); err != nil {
		s.logger.Warn("confirm pulse failed", "pulser", evt.Pulser, "error", err)
		evt.Err = err.Error()
	}
	s.deps.Bus.Publish(events.TopicPulse, evt)
}
