package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// acquirePollInterval is how often Shutdown retries the drain flag.
	acquirePollInterval = 2 * time.Millisecond
	// maxRetainedBuffer caps the encode buffer kept between writes.
	maxRetainedBuffer = 64 << 10
)

// EntrySink accepts pre-formatted log entries.
type EntrySink interface {
	Enqueue(entry string)
}

// FileSink writes log entries to a stream from a background goroutine.
//
// Enqueue never blocks on I/O and never fails. Entries are written in the
// global order of Enqueue calls, one line each. At most one drain goroutine
// exists at a time; it is started lazily by Enqueue through a single-flight
// flag and exits as soon as the queue is empty.
//
// A failed write is recorded in LastError, the entry being written is lost,
// and the drain pauses for the backoff interval before releasing the flag.
// Entries that were still queued stay queued: once the backoff elapses the
// drain checks the queue again and retries on its own, so a quiet program
// still gets its remaining entries written once the stream recovers.
//
// Shutdown waits for the active drain, makes one best-effort pass over the
// remaining entries and closes the stream. Entries that cannot be written by
// then are abandoned.
type FileSink struct {
	queue   entryQueue
	running atomic.Bool
	closing atomic.Bool
	// sealed is set once the final flush is over; entries pushed after it
	// are abandoned by the producer that pushed them.
	sealed  atomic.Bool
	lastErr atomic.Error

	// settled counts entries whose fate is known: written, skipped, failed
	// or abandoned. It trails queue.total() and is what Sync waits on.
	settled atomic.Uint64

	// stream and buf are only touched by the holder of the running flag.
	stream io.Writer
	buf    []byte

	backoff         time.Duration
	shutdownTimeout time.Duration
	logger          zerolog.Logger

	stats     SinkStats
	stop      chan struct{}
	closeOnce sync.Once
}

var _ io.Writer = (*FileSink)(nil)
var _ EntrySink = (*FileSink)(nil)
var _ interface{ Sync() error } = (*FileSink)(nil)

// NewFileSink opens path for appending, creating it and its directory when
// missing, and returns a sink that owns the file.
func NewFileSink(path string, opts ...Option) (*FileSink, error) {
	const op smerrors.Op = "logging.NewFileSink"
	if strings.TrimSpace(path) == emptyString {
		return nil, smerrors.New(op).Msg(errMsgEmptySinkPath)
	}

	o := defaultSinkOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgOpenSink)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, o.fileMode)
	if err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgOpenSink)
	}
	return newSink(file, o), nil
}

// NewSink returns a sink writing to w. The sink takes ownership of w and
// closes it on shutdown when it implements io.Closer.
func NewSink(w io.Writer, opts ...Option) *FileSink {
	o := defaultSinkOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newSink(w, o)
}

func newSink(w io.Writer, o sinkOptions) *FileSink {
	return &FileSink{
		stream:          w,
		backoff:         o.backoff,
		shutdownTimeout: o.shutdownTimeout,
		logger:          o.logger,
		stop:            make(chan struct{}),
	}
}

// Enqueue appends entry to the queue and starts a drain if none is running.
// It is a no-op once shutdown has begun.
func (s *FileSink) Enqueue(entry string) {
	if s == nil || s.closing.Load() {
		return
	}
	s.queue.push(entry)
	if s.sealed.Load() {
		// lost the race against Shutdown
		s.abandonQueue()
		return
	}
	s.tryStartDrain()
}

// Write implements io.Writer so that zerolog, zap or the log package can
// produce entries. p is copied, trailing line breaks are removed and
// interior ones escaped, so one Write is always one line. Write always
// reports success.
func (s *FileSink) Write(p []byte) (int, error) {
	s.Enqueue(escapeLineBreaks(strings.TrimRight(string(p), "\r\n")))
	return len(p), nil
}

// Sync blocks until every entry enqueued before the call has been written
// (or skipped, failed or abandoned), bounded by the shutdown timeout. When
// no drain is running Sync writes the entries itself. It lets zap flush the
// sink before Fatal exits the process.
func (s *FileSink) Sync() error {
	if s == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.flush(ctx)
}

func (s *FileSink) flush(ctx context.Context) error {
	const op smerrors.Op = "logging.FileSink.Sync"

	target := s.queue.total()
	reached := func() bool { return s.settled.Load() >= target }

	ticker := time.NewTicker(acquirePollInterval)
	defer ticker.Stop()
	for !reached() {
		if !s.closing.Load() && s.running.CompareAndSwap(false, true) {
			err := s.drainQueue(func() bool { return s.closing.Load() || reached() })
			if err != nil {
				// backoff and retry belong to a background drain
				go s.settle(err)
				return smerrors.New(op).Err(err).Msg(errMsgSyncFailed)
			}
			s.running.Store(false)
			if s.queue.len() > 0 {
				s.tryStartDrain()
			}
			continue
		}
		select {
		case <-ctx.Done():
			return smerrors.New(op).Err(ctx.Err()).Msg(errMsgSyncTimeout)
		case <-ticker.C:
		}
	}
	return nil
}

// LastError returns the most recent write failure, or nil.
func (s *FileSink) LastError() error {
	if s == nil {
		return nil
	}
	return s.lastErr.Load()
}

// Pending returns the number of entries waiting to be written.
func (s *FileSink) Pending() int {
	if s == nil {
		return 0
	}
	return s.queue.len()
}

// Stats returns a snapshot of the sink counters.
func (s *FileSink) Stats() SinkSnapshot {
	if s == nil {
		return SinkSnapshot{}
	}
	return s.stats.Snapshot()
}

// tryStartDrain launches a drain goroutine if it wins the running flag.
func (s *FileSink) tryStartDrain() bool {
	if s.closing.Load() {
		return false
	}
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	go s.drain()
	return true
}

// drain runs while holding the running flag.
func (s *FileSink) drain() {
	s.settle(s.drainQueue(s.closing.Load))
}

// settle ends a drain pass that returned err while holding the running
// flag: it backs off after a failure, releases the flag and runs another
// pass when entries remain.
func (s *FileSink) settle(err error) {
	for {
		if err != nil {
			s.waitBackoff()
		}
		s.running.Store(false)

		// An entry enqueued after the queue was seen empty, or left behind a
		// failed write, has no other drain coming for it.
		if s.closing.Load() || s.queue.len() == 0 {
			return
		}
		if !s.running.CompareAndSwap(false, true) {
			return
		}
		err = s.drainQueue(s.closing.Load)
	}
}

// drainQueue writes queued entries until the queue is empty, halt reports
// true, or a write fails. The failed write's error is returned.
func (s *FileSink) drainQueue(halt func() bool) error {
	for !halt() {
		entry, ok := s.queue.pop()
		if !ok {
			return nil
		}
		if strings.TrimSpace(entry) == emptyString {
			s.stats.skipped.Inc()
			s.settled.Inc()
			continue
		}
		if err := s.writeEntry(entry); err != nil {
			s.lastErr.Store(err)
			s.stats.failed.Inc()
			s.settled.Inc()
			s.logger.Warn().Err(err).Int("pending", s.queue.len()).Msg("log sink write failed")
			return err
		}
		s.stats.written.Inc()
		s.settled.Inc()
	}
	return nil
}

func (s *FileSink) writeEntry(entry string) error {
	s.buf = append(s.buf[:0], entry...)
	s.buf = append(s.buf, '\n')

	n, err := s.stream.Write(s.buf)
	if err == nil && n < len(s.buf) {
		err = io.ErrShortWrite
	}
	if cap(s.buf) > maxRetainedBuffer {
		s.buf = nil
	}
	return err
}

// waitBackoff sleeps for the backoff interval or until shutdown begins.
func (s *FileSink) waitBackoff() {
	if s.backoff <= 0 {
		return
	}
	timer := time.NewTimer(s.backoff)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-s.stop:
	}
}

// Close shuts the sink down, bounded by the configured shutdown timeout.
func (s *FileSink) Close() error {
	if s == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting entries, waits for the active drain to finish,
// writes what it can of the remaining queue and closes the stream. Only the
// first call does any work; later calls return nil.
//
// If ctx expires before the drain finishes, Shutdown returns an error and the
// stream is closed in the background once the drain lets go of it.
func (s *FileSink) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		err = s.shutdown(ctx)
	})
	return err
}

func (s *FileSink) shutdown(ctx context.Context) error {
	const op smerrors.Op = "logging.FileSink.Shutdown"

	s.closing.Store(true)
	close(s.stop)

	if err := s.acquire(ctx); err != nil {
		go func() {
			_ = s.acquire(context.Background())
			s.sealed.Store(true)
			s.abandonQueue()
			_ = s.closeStream()
		}()
		return smerrors.New(op).Err(err).Msg(errMsgShutdownTimeout)
	}

	// The flag is never released again, so no drain can start after this.
	_ = s.drainQueue(func() bool { return ctx.Err() != nil })
	// sealed before the last reset so that a concurrent Enqueue either sees
	// it or has its entry removed here
	s.sealed.Store(true)
	s.abandonQueue()

	if err := s.closeStream(); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgCloseSink)
	}
	return nil
}

// acquire takes the running flag, polling until ctx is done.
func (s *FileSink) acquire(ctx context.Context) error {
	if s.running.CompareAndSwap(false, true) {
		return nil
	}
	ticker := time.NewTicker(acquirePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.running.CompareAndSwap(false, true) {
				return nil
			}
		}
	}
}

func (s *FileSink) abandonQueue() {
	if n := s.queue.reset(); n > 0 {
		s.stats.abandoned.Add(uint64(n))
		s.settled.Add(uint64(n))
		s.logger.Warn().Int("abandoned", n).Msg("log sink closed with undelivered entries")
	}
}

func (s *FileSink) closeStream() error {
	if c, ok := s.stream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
