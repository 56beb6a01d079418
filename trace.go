package xmlinput

import "log/slog"

// the null logger is a logger that does nothing
var nullLogger = slog.New(slog.DiscardHandler)

func loggerOrNull(l *slog.Logger) *slog.Logger {
	if l == nil {
		return nullLogger
	}
	return l
}
