package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	smerrors "github.com/Station-Manager/errors"
	"github.com/Station-Manager/utils"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// defaultShutdownWait applies when Config.ShutdownTimeoutMS is zero.
const defaultShutdownWait = time.Second

// Service is a structured zerolog logger whose file channel is a FileSink.
// Logging calls never wait on disk I/O.
type Service struct {
	WorkingDir string
	Config     *Config

	logger        atomic.Pointer[zerolog.Logger]
	isInitialized atomic.Bool
	initOnce      sync.Once
	initErr       error

	// mu orders event creation against Close; wg and activeOps count events
	// created but not yet sent.
	mu        sync.RWMutex
	wg        sync.WaitGroup
	activeOps atomic.Int32

	sink      *FileSink
	closeOnce sync.Once
}

var _ Logger = (*Service)(nil)

// NewLogger returns a Service for cfg. Initialize must be called before use.
func NewLogger(workingDir string, cfg Config) *Service {
	return &Service{WorkingDir: workingDir, Config: &cfg}
}

// Initialize validates the configuration and builds the writers. Only the
// first call does any work; later calls return its result.
func (s *Service) Initialize() error {
	const op smerrors.Op = "logging.Service.Initialize"
	if s == nil {
		return smerrors.New(op).Msg(errMsgNilService)
	}
	s.initOnce.Do(func() {
		s.initErr = s.initialize()
	})
	return s.initErr
}

func (s *Service) initialize() error {
	const op smerrors.Op = "logging.Service.initialize"
	if s.Config == nil {
		return smerrors.New(op).Msg(errMsgConfigNotSet)
	}
	if err := ValidateConfig(s.Config); err != nil {
		return err
	}

	level, err := parseLevel(s.Config.Level)
	if err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgBadLevel)
	}

	writers, err := s.initializeWriters()
	if err != nil {
		return err
	}

	var out io.Writer
	if len(writers) == 1 {
		out = writers[0]
	} else {
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).Level(level)
	if s.Config.WithTimestamp {
		logger = logger.With().Timestamp().Logger()
	}
	if s.Config.SkipFrameCount > 0 {
		logger = logger.With().CallerWithSkipFrameCount(s.Config.SkipFrameCount).Logger()
	}

	s.logger.Store(&logger)
	s.isInitialized.Store(true)
	return nil
}

func (s *Service) initializeWriters() ([]io.Writer, error) {
	const op smerrors.Op = "logging.Service.initializeWriters"
	cfg := s.Config

	var writers []io.Writer
	var console io.Writer
	if cfg.ConsoleLogging {
		console = s.consoleWriter(os.Stderr)
		writers = append(writers, console)
	}

	if cfg.FileLogging {
		if s.WorkingDir == emptyString {
			return nil, smerrors.New(op).Msg(errMsgWorkingDirEmpty)
		}
		path, err := s.logFilePath()
		if err != nil {
			return nil, err
		}

		// sink failures are reported on the console, never on the sink itself
		diag := zerolog.Nop()
		if console != nil {
			diag = zerolog.New(console).With().Timestamp().Str("component", "log-sink").Logger()
		}
		sink, err := NewFileSink(path,
			WithBackoff(time.Duration(cfg.BackoffMS)*time.Millisecond),
			WithShutdownTimeout(s.shutdownWait()),
			WithLogger(diag),
		)
		if err != nil {
			return nil, smerrors.New(op).Err(err).Msg(errMsgOpenSink)
		}
		s.sink = sink
		writers = append(writers, sink)
	}

	if len(writers) == 0 {
		return nil, smerrors.New(op).Msg(errMsgNoChannels)
	}
	return writers, nil
}

func (s *Service) consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{Out: out, NoColor: s.Config.ConsoleNoColor}
	if s.Config.ConsoleTimeFormat != emptyString {
		cw.TimeFormat = s.Config.ConsoleTimeFormat
	}
	return cw
}

func (s *Service) logFilePath() (string, error) {
	const op smerrors.Op = "logging.Service.logFilePath"

	dir := filepath.Join(s.WorkingDir, s.Config.RelLogFileDir)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return emptyString, smerrors.New(op).Err(err).Msg(errMsgLogDir)
	}

	name := s.Config.FileName
	if name == emptyString {
		exeName, err := utils.ExecName(true)
		if err != nil {
			return emptyString, smerrors.New(op).Err(err).Msg(errMsgExeName)
		}
		if exeName == emptyString {
			exeName = defaultExeName
		}
		name = exeName + defaultLogFileExt
	}
	return filepath.Join(dir, name), nil
}

func (s *Service) shutdownWait() time.Duration {
	if s.Config == nil || s.Config.ShutdownTimeoutMS <= 0 {
		return defaultShutdownWait
	}
	return time.Duration(s.Config.ShutdownTimeoutMS) * time.Millisecond
}

// LastError returns the most recent failure of the file sink, or nil.
func (s *Service) LastError() error {
	if s == nil || s.sink == nil {
		return nil
	}
	return s.sink.LastError()
}

// Close stops new log events, waits (bounded by ShutdownTimeoutMS) for
// events already created to be sent, then shuts the file sink down. It is
// safe to call Close multiple times and on a nil or uninitialized Service.
func (s *Service) Close() error {
	if s == nil || !s.isInitialized.Load() {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		err = s.close()
	})
	return err
}

func (s *Service) close() error {
	s.mu.Lock()
	s.isInitialized.Store(false)
	s.mu.Unlock()

	// no new events can be tracked past this point
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timeout := s.shutdownWait()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		if s.Config != nil && s.Config.ShutdownTimeoutWarning {
			if logger := s.logger.Load(); logger != nil {
				logger.Warn().
					Int32("active_operations", s.activeOps.Load()).
					Dur("timeout", timeout).
					Msg("Logger shutdown timeout exceeded")
			}
		}
	}

	s.logger.Store(nil)

	if s.sink != nil {
		return s.sink.Close()
	}
	return nil
}

// TraceWith returns a LogEvent for structured Trace-level logging.
func (s *Service) TraceWith() LogEvent { return logEventBuilder(s, zerolog.TraceLevel) }

// DebugWith returns a LogEvent for structured Debug-level logging.
func (s *Service) DebugWith() LogEvent { return logEventBuilder(s, zerolog.DebugLevel) }

// InfoWith returns a LogEvent for structured Info-level logging.
// Example: logger.InfoWith().Str("user_id", id).Int("count", 5).Msg("User processed")
func (s *Service) InfoWith() LogEvent { return logEventBuilder(s, zerolog.InfoLevel) }

// WarnWith returns a LogEvent for structured Warn-level logging.
func (s *Service) WarnWith() LogEvent { return logEventBuilder(s, zerolog.WarnLevel) }

// ErrorWith returns a LogEvent for structured Error-level logging.
// Example: logger.ErrorWith().Err(err).Str("operation", "database").Msg("Query failed")
func (s *Service) ErrorWith() LogEvent { return logEventBuilder(s, zerolog.ErrorLevel) }

// FatalWith returns a LogEvent for structured Fatal-level logging.
// The program will exit after the log is written.
func (s *Service) FatalWith() LogEvent { return logEventBuilder(s, zerolog.FatalLevel) }

// PanicWith returns a LogEvent for structured Panic-level logging.
// Sending the event panics.
func (s *Service) PanicWith() LogEvent { return logEventBuilder(s, zerolog.PanicLevel) }

// With returns a LogContext for creating a child logger with pre-populated fields.
// Example: reqLogger := logger.With().Str("request_id", id).Logger()
func (s *Service) With() LogContext {
	if s == nil || !s.isInitialized.Load() {
		return &noopLogContext{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isInitialized.Load() {
		return &noopLogContext{}
	}
	logger := s.logger.Load()
	if logger == nil {
		return &noopLogContext{}
	}
	return &logContext{
		context: logger.With(),
		service: s,
	}
}
