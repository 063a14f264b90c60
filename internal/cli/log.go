// Package cli implements the topfloor command-line interface.
//
// # Commands
//
//   - solve: Floorplan a design and print or save the pin assignment
//   - graph: Export the vertical constraint graph as DOT or SVG
//   - view: Browse a saved result interactively
//   - serve: Run the HTTP solve service
//   - cache: Inspect or clear the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which shows
// pin classification counts, graph and model sizes, and solver timings.
//
// # Exit Status
//
// 0 on a feasible floorplan, 1 on any error, 2 when the design is
// infeasible ([ErrInfeasible]), 130 when interrupted.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Solved opamp (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
