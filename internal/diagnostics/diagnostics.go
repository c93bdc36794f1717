// Package diagnostics provides the decoder's trace logging, matching the
// teacher's plain stdlib log package rather than a structured logging
// dependency none of the example repos pulled in for this kind of terse,
// development-time tracing.
package diagnostics

import "log"

// Level mirrors Moses' VERBOSE(level, ...) macro: higher levels are more
// detailed and are suppressed unless the configured level is at least as
// high.
type Level int

const (
	Off    Level = 0
	Normal Level = 1
	Trace  Level = 2
	Debug  Level = 3
)

// Logger gates log.Printf calls behind a verbosity level.
type Logger struct {
	Level Level
}

// Logf logs format/args at level if the logger's configured level permits.
func (l Logger) Logf(level Level, format string, args ...interface{}) {
	if l.Level < level {
		return
	}
	log.Printf(format, args...)
}
