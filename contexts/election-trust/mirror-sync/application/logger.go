package application

import "log/slog"

// ResolveLogger returns a usable logger even when the caller wired none.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
