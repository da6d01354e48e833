package capture

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the logger used by the capture graph.
func UseLogger(logger slog.Logger) {
	log = logger
}
