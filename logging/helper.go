package logging

import (
	"github.com/rs/zerolog"
)

// parseLevel parses a string log level into a zerolog.Level.
// Returns zerolog.NoLevel and an error if parsing fails.
func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}

// eventAt creates a zerolog event for level, or nil for unknown levels.
func eventAt(logger *zerolog.Logger, level zerolog.Level) *zerolog.Event {
	switch level {
	case zerolog.TraceLevel:
		return logger.Trace()
	case zerolog.DebugLevel:
		return logger.Debug()
	case zerolog.InfoLevel:
		return logger.Info()
	case zerolog.WarnLevel:
		return logger.Warn()
	case zerolog.ErrorLevel:
		return logger.Error()
	case zerolog.FatalLevel:
		return logger.Fatal()
	case zerolog.PanicLevel:
		return logger.Panic()
	default:
		return nil
	}
}

// logEventBuilder creates a log event for the given level on the service
// logger. The event is tracked so Close waits for it to be sent. Disabled
// levels and closed services yield a no-op LogEvent.
func logEventBuilder(s *Service, level zerolog.Level) LogEvent {
	return trackedEvent(s, nil, level)
}

// trackedEvent is logEventBuilder for an explicit logger; a nil child means
// the service logger.
func trackedEvent(s *Service, child *zerolog.Logger, level zerolog.Level) LogEvent {
	if s == nil || !s.isInitialized.Load() || level == zerolog.NoLevel {
		return newLogEvent(nil)
	}

	// Acquire read lock to prevent Close() from running during log creation
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Double-check after acquiring lock
	if !s.isInitialized.Load() {
		return newLogEvent(nil)
	}

	logger := child
	if logger == nil {
		logger = s.logger.Load()
	}
	if logger == nil || logger.GetLevel() > level {
		return newLogEvent(nil)
	}

	event := eventAt(logger, level)
	if event == nil {
		return newLogEvent(nil)
	}

	s.activeOps.Inc()
	s.wg.Add(1)
	return newTrackedLogEvent(event, s)
}
