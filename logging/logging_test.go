package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLogFile = "test.log"

// validLoggingConfig returns a file-only debug configuration with short
// shutdown waits.
func validLoggingConfig() Config {
	return Config{
		Level:             "debug",
		WithTimestamp:     true,
		FileLogging:       true,
		RelLogFileDir:     "logs",
		FileName:          testLogFile,
		BackoffMS:         10,
		ShutdownTimeoutMS: 200,
	}
}

// newFileLogger initializes a file-backed Service in a temp dir and returns
// it with the path of its log file.
func newFileLogger(tb testing.TB, level string) (*Service, string) {
	tb.Helper()
	cfg := validLoggingConfig()
	cfg.Level = level
	dir := tb.TempDir()
	svc := NewLogger(dir, cfg)
	require.NoError(tb, svc.Initialize())
	return svc, filepath.Join(dir, cfg.RelLogFileDir, cfg.FileName)
}

// newWriterService bypasses Initialize and logs straight to out.
func newWriterService(out io.Writer, cfg Config) *Service {
	svc := &Service{Config: &cfg}
	svc.initOnce.Do(func() {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
		svc.logger.Store(&logger)
		svc.isInitialized.Store(true)
	})
	return svc
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestService_Initialize(t *testing.T) {
	t.Run("successful initialization", func(t *testing.T) {
		svc := NewLogger(t.TempDir(), validLoggingConfig())
		require.NoError(t, svc.Initialize())
		defer svc.Close()

		assert.True(t, svc.isInitialized.Load())
		assert.NotNil(t, svc.logger.Load())
		assert.NotNil(t, svc.sink)
	})

	t.Run("nil service", func(t *testing.T) {
		var svc *Service
		err := svc.Initialize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgNilService)
	})

	t.Run("config not set", func(t *testing.T) {
		svc := &Service{}
		err := svc.Initialize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgConfigNotSet)
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := validLoggingConfig()
		cfg.Level = "invalid_level"
		err := NewLogger(t.TempDir(), cfg).Initialize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Level")
	})

	t.Run("absolute log dir rejected", func(t *testing.T) {
		cfg := validLoggingConfig()
		cfg.RelLogFileDir = "/not/relative"
		err := NewLogger(t.TempDir(), cfg).Initialize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RelLogFileDir")
	})

	t.Run("no channels", func(t *testing.T) {
		cfg := validLoggingConfig()
		cfg.FileLogging = false
		err := NewLogger(t.TempDir(), cfg).Initialize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgNoChannels)
	})

	t.Run("file logging without working dir", func(t *testing.T) {
		err := NewLogger("", validLoggingConfig()).Initialize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgWorkingDirEmpty)
	})

	t.Run("multiple initialize calls", func(t *testing.T) {
		svc := NewLogger(t.TempDir(), validLoggingConfig())
		require.NoError(t, svc.Initialize())
		defer svc.Close()

		first := svc.logger.Load()
		require.NoError(t, svc.Initialize())
		assert.Same(t, first, svc.logger.Load())
	})

	t.Run("creates log directory", func(t *testing.T) {
		dir := t.TempDir()
		cfg := validLoggingConfig()
		cfg.RelLogFileDir = filepath.Join("var", "logs")
		svc := NewLogger(dir, cfg)
		require.NoError(t, svc.Initialize())
		defer svc.Close()

		info, err := os.Stat(filepath.Join(dir, "var", "logs"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("file name defaults to executable name", func(t *testing.T) {
		dir := t.TempDir()
		cfg := validLoggingConfig()
		cfg.FileName = ""
		svc := NewLogger(dir, cfg)
		require.NoError(t, svc.Initialize())
		require.NoError(t, svc.Close())

		matches, err := filepath.Glob(filepath.Join(dir, cfg.RelLogFileDir, "*"+defaultLogFileExt))
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})
}

func TestService_FileLogging(t *testing.T) {
	svc, path := newFileLogger(t, "info")

	svc.InfoWith().Str("user_id", "u-1").Int("count", 5).Msg("user processed")
	svc.DebugWith().Msg("below level")
	svc.WarnWith().Bool("retry", true).Msg("slow")
	require.NoError(t, svc.Close())

	content := readFile(t, path)
	rows := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], `"user_id":"u-1"`)
	assert.Contains(t, rows[0], `"message":"user processed"`)
	assert.Contains(t, rows[1], `"level":"warn"`)
	assert.NotContains(t, content, "below level")
	assert.NoError(t, svc.LastError())
}

func TestService_Close(t *testing.T) {
	t.Run("successful close", func(t *testing.T) {
		svc, _ := newFileLogger(t, "debug")
		require.NoError(t, svc.Close())
		assert.False(t, svc.isInitialized.Load())
		assert.Nil(t, svc.logger.Load())
	})

	t.Run("close nil service", func(t *testing.T) {
		var svc *Service
		assert.NoError(t, svc.Close())
		assert.NoError(t, svc.LastError())
	})

	t.Run("close uninitialized service", func(t *testing.T) {
		assert.NoError(t, (&Service{}).Close())
	})

	t.Run("multiple close calls", func(t *testing.T) {
		svc, _ := newFileLogger(t, "debug")
		assert.NoError(t, svc.Close())
		assert.NoError(t, svc.Close())
	})

	t.Run("events after close are dropped", func(t *testing.T) {
		svc, path := newFileLogger(t, "debug")
		require.NoError(t, svc.Close())

		svc.InfoWith().Msg("after close")
		assert.NotContains(t, readFile(t, path), "after close")
	})
}

func TestService_CloseWithTimeout(t *testing.T) {
	var buf threadSafeBuffer
	cfg := validLoggingConfig()
	cfg.ShutdownTimeoutMS = 10
	cfg.ShutdownTimeoutWarning = true
	svc := newWriterService(&buf, cfg)

	// an event that is never sent keeps Close waiting
	_ = svc.InfoWith()

	require.NoError(t, svc.Close())
	output := buf.String()
	assert.Contains(t, output, "Logger shutdown timeout exceeded")
	assert.Contains(t, output, "active_operations=1")
}

func TestService_CloseWaitsForLogs(t *testing.T) {
	var buf threadSafeBuffer
	cfg := validLoggingConfig()
	cfg.ShutdownTimeoutMS = 1000
	svc := newWriterService(&buf, cfg)

	event := svc.InfoWith()
	closed := make(chan error, 1)
	go func() { closed <- svc.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while an event was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	event.Msg("final log message")
	require.NoError(t, <-closed)
	assert.Contains(t, buf.String(), "final log message")
}

func TestService_LoggingMethods(t *testing.T) {
	var buf threadSafeBuffer
	svc := newWriterService(&buf, validLoggingConfig())
	defer svc.Close()

	svc.DebugWith().Msg("test debug")
	svc.InfoWith().Msg("test info")
	svc.WarnWith().Msg("test warn")
	svc.ErrorWith().Msgf("test %s", "error")

	out := buf.String()
	for _, want := range []string{"DBG test debug", "INF test info", "WRN test warn", "ERR test error"} {
		assert.Contains(t, out, want)
	}

	assert.NotNil(t, svc.FatalWith())
	assert.NotNil(t, svc.PanicWith())
}

func TestService_PanicWith(t *testing.T) {
	var buf threadSafeBuffer
	svc := newWriterService(&buf, validLoggingConfig())

	assert.Panics(t, func() { svc.PanicWith().Msg("fatal condition") })
	assert.Equal(t, int32(0), svc.activeOps.Load(), "a panicking event must still release its slot")
	require.NoError(t, svc.Close())
}

func TestService_LoggingMethodsUninitialized(t *testing.T) {
	svc := &Service{}
	assert.NotPanics(t, func() {
		svc.InfoWith().Str("k", "v").Msg("should not panic")
		svc.ErrorWith().Err(errBoom).Send()
		svc.Dump(struct{ A int }{1})
	})
}

func TestService_With(t *testing.T) {
	t.Run("child logger carries fields", func(t *testing.T) {
		var buf threadSafeBuffer
		svc := newWriterService(&buf, validLoggingConfig())
		defer svc.Close()

		child := svc.With().Str("request_id", "r-7").Int("attempt", 2).Logger()
		child.InfoWith().Msg("from child")

		nested := child.With().Bool("nested", true).Logger()
		nested.WarnWith().Msg("from nested")

		out := buf.String()
		assert.Contains(t, out, "request_id=r-7")
		assert.Contains(t, out, "attempt=2")
		assert.Contains(t, out, "nested=true")
	})

	t.Run("uninitialized returns noop", func(t *testing.T) {
		logger := (&Service{}).With().Str("key", "value").Logger()
		require.NotNil(t, logger)
		assert.NotPanics(t, func() {
			logger.InfoWith().Msg("should not panic or log")
			logger.With().Str("a", "b").Logger().ErrorWith().Send()
		})
	})

	t.Run("child events are tracked by the parent", func(t *testing.T) {
		var buf threadSafeBuffer
		cfg := validLoggingConfig()
		cfg.ShutdownTimeoutMS = 10
		cfg.ShutdownTimeoutWarning = true
		svc := newWriterService(&buf, cfg)

		_ = svc.With().Str("k", "v").Logger().InfoWith()
		assert.Equal(t, int32(1), svc.activeOps.Load())

		require.NoError(t, svc.Close())
		assert.Contains(t, buf.String(), "active_operations=1")
	})
}

func TestService_Dump(t *testing.T) {
	svc, path := newFileLogger(t, "debug")

	type inner struct{ Value int }
	type sample struct {
		Name   string
		Tags   []string
		Inner  inner
		hidden string
	}
	svc.Dump(sample{Name: "alpha", Tags: []string{"a"}, Inner: inner{Value: 3}, hidden: "x"})
	require.NoError(t, svc.Close())

	content := readFile(t, path)
	assert.Contains(t, content, "Struct: sample")
	assert.Contains(t, content, "Name: alpha")
	assert.Contains(t, content, "Inner.Value: 3")
	assert.NotContains(t, content, "hidden")
}

func TestDumpLines(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, []string{"Dump: <nil>"}, dumpLines(nil))
	})

	t.Run("map", func(t *testing.T) {
		got := dumpLines(map[string]int{"a": 1})
		assert.Equal(t, []string{": map[string]int (len: 1) {", "[a]: 1", ": }"}, got)
	})

	t.Run("large slice is truncated", func(t *testing.T) {
		got := dumpLines(make([]int, maxDumpElements+5))
		assert.Contains(t, got, ": ... (5 more elements)")
	})

	t.Run("circular reference", func(t *testing.T) {
		type node struct {
			Name string
			Next *node
		}
		n := &node{Name: "loop"}
		n.Next = n
		got := dumpLines(n)
		assert.Contains(t, got, "Next: <circular reference>")
	})

	t.Run("nil pointer field", func(t *testing.T) {
		type holder struct{ P *int }
		assert.Contains(t, dumpLines(holder{}), "P: <nil>")
	})
}

func TestConcurrentLoggingAndClose(t *testing.T) {
	svc, path := newFileLogger(t, "info")

	var wg sync.WaitGroup
	start := make(chan struct{})
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			<-start
			for i := 0; i < 200; i++ {
				svc.InfoWith().Int("g", g).Int("i", i).Msg("concurrent")
				svc.With().Int("g", g).Logger().WarnWith().Msg("child")
			}
		}(g)
	}

	close(start)
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.Close())
	wg.Wait()

	assert.Equal(t, int32(0), svc.activeOps.Load())
	for _, row := range strings.Split(strings.TrimSuffix(readFile(t, path), "\n"), "\n") {
		if row == "" {
			continue
		}
		assert.True(t, strings.HasPrefix(row, "{") && strings.HasSuffix(row, "}"), "torn line: %q", row)
	}
}
