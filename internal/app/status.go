package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skobkin/camsync/internal/bus"
	"github.com/skobkin/camsync/internal/events"
	"github.com/skobkin/camsync/internal/supervisor"
)

// SessionStatus is the in-memory summary of the current process session.
type SessionStatus struct {
	State             string
	LastRunID         string
	LastSuccess       time.Time
	LastError         string
	Applied           int
	ApplyFailures     int
	ReconnectAttempts int
	ReconnectFailures int
	SetupFailures     int
	Alerts            int
	Pulses            int
	PulseFailures     int
}

// StatusRecorder folds supervisor events into a SessionStatus.
type StatusRecorder struct {
	logger *slog.Logger

	mu     sync.RWMutex
	status SessionStatus
}

func NewStatusRecorder(logger *slog.Logger) *StatusRecorder {
	if logger == nil {
		logger = slog.Default()
	}

	return &StatusRecorder{
		logger: logger.With("component", "status"),
		status: SessionStatus{State: supervisor.StateIdle.String()},
	}
}

// Start consumes events until ctx is done or the bus is closed. The returned
// channel is closed when consumption stops.
func (r *StatusRecorder) Start(ctx context.Context, b bus.MessageBus) <-chan struct{} {
	sub := b.Subscribe(events.TopicState, events.TopicAlert, events.TopicSyncOutcome, events.TopicPulse)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub:
				if !ok {
					return
				}
				r.record(msg)
			}
		}
	}()

	return done
}

func (r *StatusRecorder) Snapshot() SessionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.status
}

func (r *StatusRecorder) LogSummary() {
	s := r.Snapshot()
	r.logger.Info("session summary",
		"state", s.State,
		"last_run_id", s.LastRunID,
		"last_success", formatTime(s.LastSuccess),
		"applied", s.Applied,
		"apply_failures", s.ApplyFailures,
		"reconnect_attempts", s.ReconnectAttempts,
		"reconnect_failures", s.ReconnectFailures,
		"setup_failures", s.SetupFailures,
		"alerts", s.Alerts,
		"pulses", s.Pulses,
		"last_error", s.LastError,
	)
}

func (r *StatusRecorder) record(msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch evt := msg.(type) {
	case events.StateChange:
		r.status.State = evt.To
		if evt.RunID != "" {
			r.status.LastRunID = evt.RunID
		}
		if evt.To == supervisor.StateReconnecting.String() {
			r.status.ReconnectAttempts++
		}
	case events.Alert:
		r.status.Alerts++
		r.status.LastError = evt.Reason
	case events.Pulse:
		if evt.Err != "" {
			r.status.PulseFailures++
		} else {
			r.status.Pulses++
		}
	case supervisor.SyncOutcome:
		r.recordOutcome(evt)
	default:
		r.logger.Debug("ignoring event", "type", fmt.Sprintf("%T", msg))
	}
}

func (r *StatusRecorder) recordOutcome(o supervisor.SyncOutcome) {
	if o.RunID != "" {
		r.status.LastRunID = o.RunID
	}
	if o.Success {
		r.status.Applied++
		r.status.LastSuccess = o.At
		return
	}

	r.status.LastError = o.ErrString()
	switch {
	case o.FailedStage == supervisor.StateApplying:
		r.status.ApplyFailures++
	case o.Trigger == supervisor.TriggerReconnect:
		r.status.ReconnectFailures++
	case o.Trigger == supervisor.TriggerSetup:
		r.status.SetupFailures++
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339)
}
