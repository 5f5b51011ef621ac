package supervisor

import (
	"time"

	"github.com/skobkin/camsync/internal/camera"
	"github.com/skobkin/camsync/internal/config"
)

// Settings are the supervisor inputs derived from configuration.
type Settings struct {
	NamePrefix string
	Endpoint   camera.Endpoint
	Timing     camera.Timing

	MonitorInterval    time.Duration
	ReconnectCooldown  time.Duration
	TeardownDelay      time.Duration
	ResyncPeriod       time.Duration
	ApplyRetryInterval time.Duration
	RestartDelay       time.Duration
}

func SettingsFromConfig(cfg config.AppConfig) Settings {
	t := cfg.Timing

	return Settings{
		NamePrefix: cfg.Device.NamePrefix,
		Endpoint: camera.Endpoint{
			BaseURL: cfg.Camera.BaseURL,
			Path:    cfg.Camera.DateTimePath,
		},
		Timing: camera.Timing{
			ScanWindow:       t.ScanWindow.Std(),
			ConnectTimeout:   t.ConnectTimeout.Std(),
			StabilizeDelay:   t.StabilizeDelay.Std(),
			EnableSettle:     t.EnableSettle.Std(),
			APPollInterval:   t.APPollInterval.Std(),
			APPollAttempts:   t.APPollAttempts,
			LinkReleaseDelay: t.LinkReleaseDelay.Std(),
			JoinTimeout:      t.JoinTimeout.Std(),
			JoinPollInterval: t.JoinPollInterval.Std(),
			JoinSettleDelay:  t.JoinSettleDelay.Std(),
		},
		MonitorInterval:    t.MonitorInterval.Std(),
		ReconnectCooldown:  t.ReconnectCooldown.Std(),
		TeardownDelay:      t.TeardownDelay.Std(),
		ResyncPeriod:       t.ResyncPeriod.Std(),
		ApplyRetryInterval: t.ApplyRetryInterval.Std(),
		RestartDelay:       t.RestartDelay.Std(),
	}
}
