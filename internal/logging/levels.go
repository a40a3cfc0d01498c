package logging

import "log/slog"

// LevelTrace is below Debug and enables wire-level protocol logging.
const LevelTrace = slog.Level(-8)

// LevelFromVerbosity maps the count of -v flags to a log level.
// 0 keeps the terminal quiet apart from warnings; -v adds progress,
// -vv adds server log notifications, -vvv adds protocol traffic.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}
