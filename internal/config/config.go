package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeSourceKind identifies which clock provides the time pushed to the camera.
type TimeSourceKind string

// FeedbackKind identifies how the confirm pulse is emitted.
type FeedbackKind string

const (
	TimeSourceSystem TimeSourceKind = "system"
	TimeSourceRTC    TimeSourceKind = "rtc"

	FeedbackNone   FeedbackKind = "none"
	FeedbackBeep   FeedbackKind = "beep"
	FeedbackSerial FeedbackKind = "serial"

	DefaultNamePrefix    = "GoPro"
	DefaultInterface     = "wlan0"
	DefaultCameraBaseURL = "http://10.5.5.9"
	DefaultDateTimePath  = "/gp/gpControl/command/setup/date_time"
	DefaultRTCDevice     = "rtc0"
	DefaultAPPollLimit   = 25
	DefaultBeepFrequency = 880
	DefaultSerialBaud    = 9600
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level" yaml:"level"`
	LogToFile bool   `json:"log_to_file" yaml:"log_to_file"`
}

// DeviceConfig selects the camera on the short-range medium.
type DeviceConfig struct {
	NamePrefix string `json:"name_prefix" yaml:"name_prefix"`
	AdapterID  string `json:"adapter_id" yaml:"adapter_id"`
}

// NetworkConfig selects the local wireless interface used for the camera AP.
type NetworkConfig struct {
	Interface string `json:"interface" yaml:"interface"`
}

// CameraConfig points at the camera's HTTP time-set endpoint.
type CameraConfig struct {
	BaseURL      string `json:"base_url" yaml:"base_url"`
	DateTimePath string `json:"date_time_path" yaml:"date_time_path"`
}

// TimingConfig holds every bounded wait used by the stages and the supervisor.
type TimingConfig struct {
	ScanWindow         Duration `json:"scan_window" yaml:"scan_window"`
	ConnectTimeout     Duration `json:"connect_timeout" yaml:"connect_timeout"`
	StabilizeDelay     Duration `json:"stabilize_delay" yaml:"stabilize_delay"`
	EnableSettle       Duration `json:"enable_settle" yaml:"enable_settle"`
	APPollInterval     Duration `json:"ap_poll_interval" yaml:"ap_poll_interval"`
	APPollAttempts     int      `json:"ap_poll_attempts" yaml:"ap_poll_attempts"`
	LinkReleaseDelay   Duration `json:"link_release_delay" yaml:"link_release_delay"`
	JoinTimeout        Duration `json:"join_timeout" yaml:"join_timeout"`
	JoinPollInterval   Duration `json:"join_poll_interval" yaml:"join_poll_interval"`
	JoinSettleDelay    Duration `json:"join_settle_delay" yaml:"join_settle_delay"`
	HTTPTimeout        Duration `json:"http_timeout" yaml:"http_timeout"`
	MonitorInterval    Duration `json:"monitor_interval" yaml:"monitor_interval"`
	ReconnectCooldown  Duration `json:"reconnect_cooldown" yaml:"reconnect_cooldown"`
	TeardownDelay      Duration `json:"teardown_delay" yaml:"teardown_delay"`
	ResyncPeriod       Duration `json:"resync_period" yaml:"resync_period"`
	ApplyRetryInterval Duration `json:"apply_retry_interval" yaml:"apply_retry_interval"`
	RestartDelay       Duration `json:"restart_delay" yaml:"restart_delay"`
}

// TimeSourceConfig selects the clock read before each apply.
type TimeSourceConfig struct {
	Kind      TimeSourceKind `json:"kind" yaml:"kind"`
	RTCDevice string         `json:"rtc_device" yaml:"rtc_device"`
	// Location is the IANA zone the camera should display. Empty means local.
	Location string `json:"location" yaml:"location"`
}

// FeedbackConfig configures the confirm pulse emitted after a successful apply.
type FeedbackConfig struct {
	Kind          FeedbackKind `json:"kind" yaml:"kind"`
	PulseDuration Duration     `json:"pulse_duration" yaml:"pulse_duration"`
	BeepFrequency float64      `json:"beep_frequency" yaml:"beep_frequency"`
	SerialPort    string       `json:"serial_port" yaml:"serial_port"`
	SerialBaud    int          `json:"serial_baud" yaml:"serial_baud"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Device     DeviceConfig     `json:"device" yaml:"device"`
	Network    NetworkConfig    `json:"network" yaml:"network"`
	Camera     CameraConfig     `json:"camera" yaml:"camera"`
	Timing     TimingConfig     `json:"timing" yaml:"timing"`
	TimeSource TimeSourceConfig `json:"time_source" yaml:"time_source"`
	Feedback   FeedbackConfig   `json:"feedback" yaml:"feedback"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

func DefaultTiming() TimingConfig {
	return TimingConfig{
		ScanWindow:         Duration(10 * time.Second),
		ConnectTimeout:     Duration(15 * time.Second),
		StabilizeDelay:     Duration(500 * time.Millisecond),
		EnableSettle:       Duration(time.Second),
		APPollInterval:     Duration(200 * time.Millisecond),
		APPollAttempts:     DefaultAPPollLimit,
		LinkReleaseDelay:   Duration(time.Second),
		JoinTimeout:        Duration(20 * time.Second),
		JoinPollInterval:   Duration(500 * time.Millisecond),
		JoinSettleDelay:    Duration(time.Second),
		HTTPTimeout:        Duration(10 * time.Second),
		MonitorInterval:    Duration(time.Second),
		ReconnectCooldown:  Duration(30 * time.Second),
		TeardownDelay:      Duration(2 * time.Second),
		ResyncPeriod:       Duration(time.Hour),
		ApplyRetryInterval: Duration(30 * time.Second),
		RestartDelay:       Duration(30 * time.Second),
	}
}

func Default() AppConfig {
	return AppConfig{
		Device: DeviceConfig{
			NamePrefix: DefaultNamePrefix,
			AdapterID:  "",
		},
		Network: NetworkConfig{
			Interface: DefaultInterface,
		},
		Camera: CameraConfig{
			BaseURL:      DefaultCameraBaseURL,
			DateTimePath: DefaultDateTimePath,
		},
		Timing: DefaultTiming(),
		TimeSource: TimeSourceConfig{
			Kind:      TimeSourceSystem,
			RTCDevice: DefaultRTCDevice,
		},
		Feedback: FeedbackConfig{
			Kind:          FeedbackNone,
			PulseDuration: Duration(200 * time.Millisecond),
			BeepFrequency: DefaultBeepFrequency,
			SerialBaud:    DefaultSerialBaud,
		},
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path comes from the CLI flag or the resolved user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if isYAMLPath(cleanPath) {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("decode config yaml: %w", err)
		}
	} else if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if strings.TrimSpace(c.Device.NamePrefix) == "" {
		c.Device.NamePrefix = DefaultNamePrefix
	}
	if strings.TrimSpace(c.Network.Interface) == "" {
		c.Network.Interface = DefaultInterface
	}
	if strings.TrimSpace(c.Camera.BaseURL) == "" {
		c.Camera.BaseURL = DefaultCameraBaseURL
	}
	if strings.TrimSpace(c.Camera.DateTimePath) == "" {
		c.Camera.DateTimePath = DefaultDateTimePath
	}
	c.Timing = fillTimingDefaults(c.Timing)
	if c.TimeSource.Kind == "" {
		c.TimeSource.Kind = TimeSourceSystem
	}
	if strings.TrimSpace(c.TimeSource.RTCDevice) == "" {
		c.TimeSource.RTCDevice = DefaultRTCDevice
	}
	if c.Feedback.Kind == "" {
		c.Feedback.Kind = FeedbackNone
	}
	if c.Feedback.PulseDuration <= 0 {
		c.Feedback.PulseDuration = Duration(200 * time.Millisecond)
	}
	if c.Feedback.BeepFrequency <= 0 {
		c.Feedback.BeepFrequency = DefaultBeepFrequency
	}
	if c.Feedback.SerialBaud <= 0 {
		c.Feedback.SerialBaud = DefaultSerialBaud
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func fillTimingDefaults(t TimingConfig) TimingConfig {
	def := DefaultTiming()
	fill := func(v *Duration, fallback Duration) {
		if *v <= 0 {
			*v = fallback
		}
	}

	fill(&t.ScanWindow, def.ScanWindow)
	fill(&t.ConnectTimeout, def.ConnectTimeout)
	fill(&t.EnableSettle, def.EnableSettle)
	fill(&t.APPollInterval, def.APPollInterval)
	fill(&t.JoinTimeout, def.JoinTimeout)
	fill(&t.JoinPollInterval, def.JoinPollInterval)
	fill(&t.HTTPTimeout, def.HTTPTimeout)
	fill(&t.MonitorInterval, def.MonitorInterval)
	fill(&t.ReconnectCooldown, def.ReconnectCooldown)
	fill(&t.ResyncPeriod, def.ResyncPeriod)
	fill(&t.ApplyRetryInterval, def.ApplyRetryInterval)
	fill(&t.RestartDelay, def.RestartDelay)
	if t.APPollAttempts <= 0 {
		t.APPollAttempts = def.APPollAttempts
	}
	// StabilizeDelay, LinkReleaseDelay, JoinSettleDelay and TeardownDelay
	// may legitimately be zero.

	return t
}

func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.Device.NamePrefix) == "" {
		return errors.New("device name prefix is required")
	}
	if strings.TrimSpace(c.Network.Interface) == "" {
		return errors.New("network interface is required")
	}

	base, err := url.Parse(strings.TrimSpace(c.Camera.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid camera base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return fmt.Errorf("camera base url must use http or https: %q", c.Camera.BaseURL)
	}
	if base.Host == "" {
		return fmt.Errorf("camera base url has no host: %q", c.Camera.BaseURL)
	}
	if !strings.HasPrefix(c.Camera.DateTimePath, "/") {
		return fmt.Errorf("camera date/time path must start with '/': %q", c.Camera.DateTimePath)
	}

	if c.Timing.APPollAttempts <= 0 {
		return errors.New("ap poll attempts must be positive")
	}
	if c.Timing.ScanWindow <= 0 || c.Timing.ConnectTimeout <= 0 || c.Timing.JoinTimeout <= 0 {
		return errors.New("scan window, connect timeout and join timeout must be positive")
	}
	if c.Timing.MonitorInterval <= 0 || c.Timing.ReconnectCooldown <= 0 || c.Timing.ResyncPeriod <= 0 {
		return errors.New("monitor interval, reconnect cooldown and resync period must be positive")
	}

	switch c.TimeSource.Kind {
	case TimeSourceSystem:
	case TimeSourceRTC:
		if strings.TrimSpace(c.TimeSource.RTCDevice) == "" {
			return errors.New("rtc device is required")
		}
	default:
		return fmt.Errorf("unknown time source: %s", c.TimeSource.Kind)
	}
	if loc := strings.TrimSpace(c.TimeSource.Location); loc != "" {
		if _, err := time.LoadLocation(loc); err != nil {
			return fmt.Errorf("invalid time source location %q: %w", loc, err)
		}
	}

	switch c.Feedback.Kind {
	case FeedbackNone, FeedbackBeep:
	case FeedbackSerial:
		if strings.TrimSpace(c.Feedback.SerialPort) == "" {
			return errors.New("feedback serial port is required")
		}
		if c.Feedback.SerialBaud <= 0 {
			return errors.New("feedback serial baud must be positive")
		}
	default:
		return fmt.Errorf("unknown feedback kind: %s", c.Feedback.Kind)
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var (
		raw []byte
		err error
	)
	if isYAMLPath(path) {
		raw, err = yaml.Marshal(cfg)
	} else {
		raw, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
