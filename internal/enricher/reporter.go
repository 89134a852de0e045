// =============================================================================
// Settlement Report Enricher - Progress Reporters
// =============================================================================

package enricher

import (
	"log/slog"

	"github.com/settleops/settlement-enricher/internal/types"
)

// LogReporter relays staged progress updates to a structured logger. It is
// the reporter the CLI wires in; callers embedding the pipeline elsewhere
// can substitute any transport behind the types.Reporter interface.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter that logs updates at Info level.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report implements types.Reporter.
func (r *LogReporter) Report(update types.ProgressUpdate) {
	if update.Percent >= 0 {
		r.logger.Info(update.Message, "status", string(update.Stage), "progress", update.Percent)
		return
	}
	r.logger.Info(update.Message, "status", string(update.Stage))
}
