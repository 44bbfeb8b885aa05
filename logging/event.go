package logging

import (
	"net"
	"time"

	"github.com/Station-Manager/toolkit/errchain"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// LogContext provides a fluent interface for building a context logger with pre-populated fields.
// Fields added through LogContext will be included in all subsequent log messages.
type LogContext interface {
	Str(key, val string) LogContext
	Strs(key string, vals []string) LogContext
	Int(key string, val int) LogContext
	Int64(key string, val int64) LogContext
	Uint64(key string, val uint64) LogContext
	Float64(key string, val float64) LogContext
	Bool(key string, val bool) LogContext
	Time(key string, val time.Time) LogContext
	Err(err error) LogContext
	Interface(key string, val interface{}) LogContext
	// Logger creates and returns the new context logger
	Logger() Logger
}

// LogEvent provides a fluent interface for structured logging with type-safe field methods.
// It wraps zerolog.Event to provide a clean API for adding typed fields to log entries.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Stringer(key string, val interface{ String() string }) LogEvent
	Int(key string, val int) LogEvent
	Int32(key string, val int32) LogEvent
	Int64(key string, val int64) LogEvent
	Uint(key string, val uint) LogEvent
	Uint64(key string, val uint64) LogEvent
	Float64(key string, val float64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Bytes(key string, val []byte) LogEvent
	Hex(key string, val []byte) LogEvent
	IPAddr(key string, val net.IP) LogEvent
	Interface(key string, val interface{}) LogEvent
	Dict(key string, dict func(LogEvent)) LogEvent
	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

// logEvent implements LogEvent by wrapping zerolog.Event. A tracked event
// (service != nil) releases its slot in the service once sent.
type logEvent struct {
	event    *zerolog.Event
	service  *Service
	finished atomic.Bool
}

func newLogEvent(e *zerolog.Event) LogEvent {
	return &logEvent{event: e}
}

// newTrackedLogEvent wraps e so that sending it decrements the service's
// in-flight counters. The caller must already have incremented them.
func newTrackedLogEvent(e *zerolog.Event, s *Service) LogEvent {
	t := &logEvent{event: e, service: s}
	if e == nil {
		t.release()
	}
	return t
}

func (e *logEvent) release() {
	if e.service != nil && e.finished.CompareAndSwap(false, true) {
		e.service.activeOps.Dec()
		e.service.wg.Done()
	}
}

func (e *logEvent) Str(key, val string) LogEvent {
	if e.event != nil {
		e.event.Str(key, val)
	}
	return e
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	if e.event != nil {
		e.event.Strs(key, vals)
	}
	return e
}

func (e *logEvent) Stringer(key string, val interface{ String() string }) LogEvent {
	if e.event != nil {
		e.event.Stringer(key, val)
	}
	return e
}

func (e *logEvent) Int(key string, val int) LogEvent {
	if e.event != nil {
		e.event.Int(key, val)
	}
	return e
}

func (e *logEvent) Int32(key string, val int32) LogEvent {
	if e.event != nil {
		e.event.Int32(key, val)
	}
	return e
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	if e.event != nil {
		e.event.Int64(key, val)
	}
	return e
}

func (e *logEvent) Uint(key string, val uint) LogEvent {
	if e.event != nil {
		e.event.Uint(key, val)
	}
	return e
}

func (e *logEvent) Uint64(key string, val uint64) LogEvent {
	if e.event != nil {
		e.event.Uint64(key, val)
	}
	return e
}

func (e *logEvent) Float64(key string, val float64) LogEvent {
	if e.event != nil {
		e.event.Float64(key, val)
	}
	return e
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	if e.event != nil {
		e.event.Bool(key, val)
	}
	return e
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	if e.event != nil {
		e.event.Time(key, val)
	}
	return e
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	if e.event != nil {
		e.event.Dur(key, val)
	}
	return e
}

// Err adds err under the standard error key plus its chain:
// <key>_chain, <key>_root, <key>_history, <key>_ops and <key>_root_op.
func (e *logEvent) Err(err error) LogEvent {
	if e.event != nil {
		e.event.Err(err)
		e.addChain(zerolog.ErrorFieldName, err)
	}
	return e
}

func (e *logEvent) AnErr(key string, err error) LogEvent {
	if e.event != nil {
		e.event.AnErr(key, err)
		e.addChain(key, err)
	}
	return e
}

func (e *logEvent) addChain(key string, err error) {
	if err == nil {
		return
	}
	chain, ops, root, rootOp := errchain.Chain(err)
	if len(chain) == 0 {
		return
	}
	e.event.Strs(key+"_chain", chain)
	e.event.Str(key+"_root", root)
	e.event.Str(key+"_history", errchain.JoinChain(chain))
	e.event.Strs(key+"_ops", ops)
	if rootOp != emptyString {
		e.event.Str(key+"_root_op", rootOp)
	}
}

func (e *logEvent) Bytes(key string, val []byte) LogEvent {
	if e.event != nil {
		e.event.Bytes(key, val)
	}
	return e
}

func (e *logEvent) Hex(key string, val []byte) LogEvent {
	if e.event != nil {
		e.event.Hex(key, val)
	}
	return e
}

func (e *logEvent) IPAddr(key string, val net.IP) LogEvent {
	if e.event != nil {
		e.event.IPAddr(key, val)
	}
	return e
}

func (e *logEvent) Interface(key string, val interface{}) LogEvent {
	if e.event != nil {
		e.event.Interface(key, val)
	}
	return e
}

// Dict for nested objects
func (e *logEvent) Dict(key string, dict func(LogEvent)) LogEvent {
	if e.event != nil {
		dictEvent := zerolog.Dict()
		dict(newLogEvent(dictEvent))
		e.event.Dict(key, dictEvent)
	}
	return e
}

func (e *logEvent) Msg(msg string) {
	defer e.release()
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	defer e.release()
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	defer e.release()
	if e.event != nil {
		e.event.Send()
	}
}

// logContext implements LogContext by wrapping zerolog.Context
type logContext struct {
	context zerolog.Context
	service *Service
}

// contextLogger is a child logger that shares the parent Service lifecycle.
type contextLogger struct {
	logger *zerolog.Logger
	parent *Service
}

func (cl *contextLogger) event(level zerolog.Level) LogEvent {
	if cl.logger == nil || cl.parent == nil {
		return newLogEvent(nil)
	}
	return trackedEvent(cl.parent, cl.logger, level)
}

func (cl *contextLogger) TraceWith() LogEvent { return cl.event(zerolog.TraceLevel) }
func (cl *contextLogger) DebugWith() LogEvent { return cl.event(zerolog.DebugLevel) }
func (cl *contextLogger) InfoWith() LogEvent  { return cl.event(zerolog.InfoLevel) }
func (cl *contextLogger) WarnWith() LogEvent  { return cl.event(zerolog.WarnLevel) }
func (cl *contextLogger) ErrorWith() LogEvent { return cl.event(zerolog.ErrorLevel) }
func (cl *contextLogger) FatalWith() LogEvent { return cl.event(zerolog.FatalLevel) }
func (cl *contextLogger) PanicWith() LogEvent { return cl.event(zerolog.PanicLevel) }

func (cl *contextLogger) With() LogContext {
	if cl.logger == nil || cl.parent == nil || !cl.parent.isInitialized.Load() {
		return &noopLogContext{}
	}
	return &logContext{
		context: cl.logger.With(),
		service: cl.parent,
	}
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Strs(key string, vals []string) LogContext {
	c.context = c.context.Strs(key, vals)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Int64(key string, val int64) LogContext {
	c.context = c.context.Int64(key, val)
	return c
}

func (c *logContext) Uint64(key string, val uint64) LogContext {
	c.context = c.context.Uint64(key, val)
	return c
}

func (c *logContext) Float64(key string, val float64) LogContext {
	c.context = c.context.Float64(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Time(key string, val time.Time) LogContext {
	c.context = c.context.Time(key, val)
	return c
}

func (c *logContext) Err(err error) LogContext {
	c.context = c.context.Err(err)
	return c
}

func (c *logContext) Interface(key string, val interface{}) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	logger := c.context.Logger()
	return &contextLogger{
		logger: &logger,
		parent: c.service,
	}
}

// noopLogContext is a no-op implementation of LogContext
type noopLogContext struct{}

func (n *noopLogContext) Str(key, val string) LogContext             { return n }
func (n *noopLogContext) Strs(key string, vals []string) LogContext  { return n }
func (n *noopLogContext) Int(key string, val int) LogContext         { return n }
func (n *noopLogContext) Int64(key string, val int64) LogContext     { return n }
func (n *noopLogContext) Uint64(key string, val uint64) LogContext   { return n }
func (n *noopLogContext) Float64(key string, val float64) LogContext { return n }
func (n *noopLogContext) Bool(key string, val bool) LogContext       { return n }
func (n *noopLogContext) Time(key string, val time.Time) LogContext  { return n }
func (n *noopLogContext) Err(err error) LogContext                   { return n }
func (n *noopLogContext) Interface(key string, val interface{}) LogContext {
	return n
}
func (n *noopLogContext) Logger() Logger { return &noopLogger{} }

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) TraceWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) DebugWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) InfoWith() LogEvent  { return newLogEvent(nil) }
func (n *noopLogger) WarnWith() LogEvent  { return newLogEvent(nil) }
func (n *noopLogger) ErrorWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) FatalWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) PanicWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) With() LogContext    { return &noopLogContext{} }
