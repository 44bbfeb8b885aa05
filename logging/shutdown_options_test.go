package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Close waits up to the timeout and returns when an event is never sent.
func TestCloseTimeoutWaitGroup(t *testing.T) {
	cfg := validLoggingConfig()
	cfg.ShutdownTimeoutMS = 20
	svc := NewLogger(t.TempDir(), cfg)
	require.NoError(t, svc.Initialize())

	_ = svc.InfoWith()

	start := time.Now()
	require.NoError(t, svc.Close())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

// Sink options are plumbed from the Config.
func TestWriterOptions(t *testing.T) {
	cfg := validLoggingConfig()
	cfg.ConsoleLogging = true
	cfg.ConsoleNoColor = true
	cfg.ConsoleTimeFormat = time.RFC3339
	cfg.BackoffMS = 250
	cfg.ShutdownTimeoutMS = 300

	svc := NewLogger(t.TempDir(), cfg)
	require.NoError(t, svc.Initialize())
	defer svc.Close()

	require.NotNil(t, svc.sink, "file sink must be initialized")
	assert.Equal(t, 250*time.Millisecond, svc.sink.backoff)
	assert.Equal(t, 300*time.Millisecond, svc.sink.shutdownTimeout)

	cw := svc.consoleWriter(&threadSafeBuffer{})
	assert.True(t, cw.NoColor)
	assert.Equal(t, time.RFC3339, cw.TimeFormat)

	svc.InfoWith().Msg("hello world")
}

func TestShutdownWaitDefault(t *testing.T) {
	cfg := validLoggingConfig()
	cfg.ShutdownTimeoutMS = 0
	assert.Equal(t, defaultShutdownWait, NewLogger("", cfg).shutdownWait())
	assert.Equal(t, defaultShutdownWait, (&Service{}).shutdownWait())
}

// Concurrently build scoped loggers while closing.
func TestConcurrentWithDuringClose(t *testing.T) {
	cfg := validLoggingConfig()
	cfg.ShutdownTimeoutMS = 50
	svc := NewLogger(t.TempDir(), cfg)
	require.NoError(t, svc.Initialize())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			svc.With().Str("i", "x").Logger().InfoWith().Msg("scoped")
		}
		close(done)
	}()

	_ = svc.Close()
	<-done
}
