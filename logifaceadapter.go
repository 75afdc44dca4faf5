package lincheck

import "github.com/joeycumines/logiface"

// LogifaceSink adapts a [logiface.Logger] into the [Logger] interface, so a
// caller can route builder/checker diagnostics through any logiface-backed
// pipeline (e.g. one writing via stumpy) instead of [DefaultLogger].
type LogifaceSink[E logiface.Event] struct {
	logger *logiface.Logger[E]
}

// NewLogifaceSink wraps logger. A nil logger produces a sink that discards
// everything, matching [NewNoOpLogger]'s behavior.
func NewLogifaceSink[E logiface.Event](logger *logiface.Logger[E]) *LogifaceSink[E] {
	return &LogifaceSink[E]{logger: logger}
}

// IsEnabled reports whether the wrapped logger would emit at level.
func (s *LogifaceSink[E]) IsEnabled(level Level) bool {
	if s == nil || s.logger == nil {
		return false
	}
	b := s.logger.Build(levelToLogiface(level))
	if !b.Enabled() {
		return false
	}
	// Build hands out a pooled builder; return it rather than logging.
	b.Release()
	return true
}

// Log forwards entry through the wrapped logiface pipeline, mapping Category
// to a "category" field and Err to logiface's dedicated error field.
func (s *LogifaceSink[E]) Log(entry LogEntry) {
	if s == nil || s.logger == nil {
		return
	}
	b := s.logger.Build(levelToLogiface(entry.Level))
	if !b.Enabled() {
		return
	}
	b = b.Str("category", entry.Category)
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	if !entry.Timestamp.IsZero() {
		b = b.Time("timestamp", entry.Timestamp)
	}
	for k, v := range entry.Context {
		b = b.Any(k, v)
	}
	b.Log(entry.Message)
}

// levelToLogiface maps lincheck's four-level scheme onto the syslog-derived
// levels logiface.Logger expects: Warning/Informational/Debug plus Error in
// place of lincheck's terminal LevelError.
func levelToLogiface(level Level) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
