// Package events defines bus topics and payloads published by the supervisor.
package events

import "time"

const (
	TopicState       = "sync.state"
	TopicAlert       = "sync.alert"
	TopicSyncOutcome = "sync.outcome"
	TopicPulse       = "feedback.pulse"
)

// StateChange is published on every supervisor transition.
type StateChange struct {
	RunID     string
	From      string
	To        string
	Timestamp time.Time
}

// Alert is published when the camera network association is lost.
type Alert struct {
	Reason    string
	Timestamp time.Time
}

// Pulse reports whether the confirm signal was emitted.
type Pulse struct {
	Pulser    string
	Err       string
	Timestamp time.Time
}
