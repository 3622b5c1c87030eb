package notifier

import (
	"log/slog"

	"github.com/amishk599/cadre/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes run summaries to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each report via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the report counters and one line per recorded error.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(r model.RunReport) error {
	n.logger.Info("run complete",
		"run", r.Name,
		"processed", r.Processed,
		"updated", r.Updated,
		"skipped", r.Skipped,
		"errors", len(r.Errors),
		"has_more", r.HasMore,
		"runtime", r.Runtime,
	)
	for _, e := range r.Errors {
		n.logger.Warn("run error", "run", r.Name, "error", e)
	}
	return nil
}
