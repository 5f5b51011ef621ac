package camera

import "time"

// Timing holds the stage-internal bounded waits.
type Timing struct {
	ScanWindow       time.Duration
	ConnectTimeout   time.Duration
	StabilizeDelay   time.Duration
	EnableSettle     time.Duration
	APPollInterval   time.Duration
	APPollAttempts   int
	LinkReleaseDelay time.Duration
	JoinTimeout      time.Duration
	JoinPollInterval time.Duration
	JoinSettleDelay  time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		ScanWindow:       10 * time.Second,
		ConnectTimeout:   15 * time.Second,
		StabilizeDelay:   500 * time.Millisecond,
		EnableSettle:     time.Second,
		APPollInterval:   200 * time.Millisecond,
		APPollAttempts:   25,
		LinkReleaseDelay: time.Second,
		JoinTimeout:      20 * time.Second,
		JoinPollInterval: 500 * time.Millisecond,
		JoinSettleDelay:  time.Second,
	}
}
