package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skobkin/camsync/internal/bus"
	"github.com/skobkin/camsync/internal/camera"
	"github.com/skobkin/camsync/internal/events"
	"github.com/skobkin/camsync/internal/logging"
	"github.com/skobkin/camsync/internal/supervisor"
)

func TestStatusRecorderFoldsEvents(t *testing.T) {
	r := NewStatusRecorder(logging.Discard())
	at := time.Date(2024, 3, 9, 14, 5, 30, 0, time.UTC)

	r.record(events.StateChange{RunID: "run-1", From: "applying", To: "monitoring"})
	r.record(supervisor.SyncOutcome{RunID: "run-1", Trigger: supervisor.TriggerSetup, Success: true, At: at})
	r.record(events.Pulse{Pulser: "beep"})
	r.record(events.Alert{Reason: "camera network lost"})
	r.record(events.StateChange{RunID: "run-2", From: "monitoring", To: "reconnecting"})
	r.record(supervisor.SyncOutcome{
		RunID:       "run-2",
		Trigger:     supervisor.TriggerReconnect,
		FailedStage: supervisor.StateDiscovering,
		Reason:      camera.KindNotFound,
		Err:         camera.ErrNotFound,
	})
	r.record(supervisor.SyncOutcome{
		RunID:       "run-3",
		Trigger:     supervisor.TriggerPeriodic,
		FailedStage: supervisor.StateApplying,
		Err:         errors.New("status 500"),
	})
	r.record("unrelated")

	got := r.Snapshot()
	if got.State != "reconnecting" || got.LastRunID != "run-3" {
		t.Fatalf("unexpected state/run: %+v", got)
	}
	if got.Applied != 1 || !got.LastSuccess.Equal(at) || got.Pulses != 1 {
		t.Fatalf("unexpected success counters: %+v", got)
	}
	if got.ReconnectAttempts != 1 || got.ReconnectFailures != 1 || got.ApplyFailures != 1 || got.Alerts != 1 {
		t.Fatalf("unexpected failure counters: %+v", got)
	}
	if got.LastError != "status 500" {
		t.Fatalf("expected last error from latest failure, got %q", got.LastError)
	}
}

func TestStatusRecorderConsumesBus(t *testing.T) {
	b := bus.New(logging.Discard())
	defer b.Close()
	r := NewStatusRecorder(logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := r.Start(ctx, b)
	b.Publish(events.TopicAlert, events.Alert{Reason: "lost"})

	deadline := time.Now().Add(2 * time.Second)
	for r.Snapshot().Alerts == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("alert not recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("recorder did not stop")
	}
}
