package camera

import "log/slog"

func stageLogger(logger *slog.Logger, stage string) *slog.Logger {
	if logger == nil {
		logger = slog.Default().With("component", "camera")
	}

	return logger.With("stage", stage)
}
