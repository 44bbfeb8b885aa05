package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapCore returns a zapcore.Core that encodes entries as console lines
// and writes them to w. With a FileSink as w, each zap entry becomes one
// queued entry and zap callers never wait on the file.
func NewZapCore(w io.Writer, level zapcore.LevelEnabler) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(EntryTimeFormat),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	})
	return zapcore.NewCore(enc, zapcore.AddSync(w), level)
}

// NewZapLogger wraps NewZapCore in a *zap.Logger that records callers.
func NewZapLogger(w io.Writer, level zapcore.LevelEnabler) *zap.Logger {
	return zap.New(NewZapCore(w, level), zap.AddCaller())
}
