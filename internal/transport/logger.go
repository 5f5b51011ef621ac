package transport

import "log/slog"

// channelLogger tags records with the channel they came from, e.g.
// component=transport.bluetooth.
func channelLogger(channel string, attrs ...any) *slog.Logger {
	return slog.Default().With(append([]any{"component", "transport." + channel}, attrs...)...)
}
