package logging

import (
	"fmt"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Entry categories used by TextLogger.
const (
	CategoryDebug = "DEBUG"
	CategoryInfo  = "INFO"
	CategoryWarn  = "WARN"
	CategoryError = "ERROR"
)

// EntryTimeFormat is the timestamp layout of text entries.
const EntryTimeFormat = "2006-01-02 15:04:05.000 -07"

const develVersion = "(devel)"

// CategoryLogger records plain messages in one of four categories.
type CategoryLogger interface {
	Debug(message string)
	Info(message string)
	Warn(message string)
	Error(message string)
}

// TextLogger formats messages into single-line entries stamped with time,
// program version and caller, and hands them to an EntrySink:
//
//	INFO  TIME:2024-05-01 10:00:00.000 +02, VERSION:v1.2.0, CALLER:main.run, FILE:main.go, LINE:42, MSG:started
//
// Line breaks inside a message are escaped so every entry stays one line.
type TextLogger struct {
	sink    EntrySink
	version string
	now     func() time.Time
}

var _ CategoryLogger = (*TextLogger)(nil)

// TextOption configures a TextLogger.
type TextOption func(*TextLogger)

// WithVersion overrides the version stamped on entries.
func WithVersion(v string) TextOption {
	return func(l *TextLogger) { l.version = v }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TextOption {
	return func(l *TextLogger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewTextLogger returns a TextLogger feeding sink. A nil sink discards
// everything.
func NewTextLogger(sink EntrySink, opts ...TextOption) *TextLogger {
	l := &TextLogger{
		sink:    sink,
		version: programVersion(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *TextLogger) Debug(message string) { l.logCaller(CategoryDebug, message) }
func (l *TextLogger) Info(message string)  { l.logCaller(CategoryInfo, message) }
func (l *TextLogger) Warn(message string)  { l.logCaller(CategoryWarn, message) }
func (l *TextLogger) Error(message string) { l.logCaller(CategoryError, message) }

// logCaller must be called directly from the exported category methods.
func (l *TextLogger) logCaller(category, message string) {
	if l == nil || l.sink == nil {
		return
	}
	var name, file string
	var line int
	// skip logCaller and the category method
	if pc, f, ln, ok := runtime.Caller(2); ok {
		file, line = f, ln
		if fn := runtime.FuncForPC(pc); fn != nil {
			name = shortFuncName(fn.Name())
		}
	}
	l.Submit(category, message, name, file, line)
}

// Submit formats one entry from explicit caller metadata and enqueues it.
func (l *TextLogger) Submit(category, message, callerName, callerFile string, callerLine int) {
	if l == nil || l.sink == nil {
		return
	}
	l.sink.Enqueue(l.format(category, message, callerName, callerFile, callerLine))
}

func (l *TextLogger) format(category, message, callerName, callerFile string, callerLine int) string {
	var fileName string
	if strings.TrimSpace(callerFile) != emptyString {
		fileName = filepath.Base(callerFile)
	}

	var sb strings.Builder
	sb.Grow(96 + len(message))
	fmt.Fprintf(&sb, "%-5s TIME:%s, VERSION:%s, CALLER:%s, FILE:%s, LINE:%d, MSG:",
		category,
		l.now().Format(EntryTimeFormat),
		l.version,
		callerName,
		fileName,
		callerLine)
	sb.WriteString(escapeLineBreaks(message))
	return sb.String()
}

var lineBreakEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

func escapeLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return lineBreakEscaper.Replace(s)
}

// shortFuncName trims the import path: "github.com/x/pkg.(*T).M" -> "pkg.(*T).M".
func shortFuncName(fn string) string {
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		return fn[i+1:]
	}
	return fn
}

var programVersion = sync.OnceValue(func() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == emptyString {
		return develVersion
	}
	return bi.Main.Version
})
