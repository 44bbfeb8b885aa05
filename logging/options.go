package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBackoff is how long a drain waits after a failed write before
	// another drain may start.
	DefaultBackoff = time.Second
	// DefaultShutdownTimeout bounds Close.
	DefaultShutdownTimeout = 5 * time.Second

	defaultFileMode os.FileMode = 0o644
	defaultDirMode  os.FileMode = 0o755
)

type sinkOptions struct {
	backoff         time.Duration
	shutdownTimeout time.Duration
	logger          zerolog.Logger
	fileMode        os.FileMode
}

func defaultSinkOptions() sinkOptions {
	return sinkOptions{
		backoff:         DefaultBackoff,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          zerolog.Nop(),
		fileMode:        defaultFileMode,
	}
}

// Option configures a FileSink.
type Option func(*sinkOptions)

// WithBackoff sets the pause after a failed write. Negative values are
// treated as zero.
func WithBackoff(d time.Duration) Option {
	return func(o *sinkOptions) {
		if d < 0 {
			d = 0
		}
		o.backoff = d
	}
}

// WithShutdownTimeout bounds how long Close waits for an active drain and
// the final flush.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *sinkOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithLogger sets where the sink reports its own write failures. The sink
// never reports to itself.
func WithLogger(l zerolog.Logger) Option {
	return func(o *sinkOptions) { o.logger = l }
}

// WithFileMode sets the permissions used when NewFileSink creates the file.
func WithFileMode(mode os.FileMode) Option {
	return func(o *sinkOptions) {
		if mode != 0 {
			o.fileMode = mode
		}
	}
}
