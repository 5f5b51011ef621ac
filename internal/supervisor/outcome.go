package supervisor

import (
	"time"

	"github.com/skobkin/camsync/internal/camera"
)

// Trigger says what started an orchestration attempt.
type Trigger string

const (
	TriggerSetup     Trigger = "setup"
	TriggerReconnect Trigger = "reconnect"
	TriggerPeriodic  Trigger = "periodic"
)

// SyncOutcome is the result of one orchestration attempt.
type SyncOutcome struct {
	RunID   string
	Trigger Trigger
	Success bool
	// FailedStage is only meaningful when Success is false.
	FailedStage   State
	Reason        camera.Kind
	RetryEligible bool
	Err           error
	At            time.Time
}

func (o SyncOutcome) ErrString() string {
	if o.Err == nil {
		return ""
	}

	return o.Err.Error()
}
