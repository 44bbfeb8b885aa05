package logging

import "go.uber.org/atomic"

// SinkStats tracks what happened to entries handed to a FileSink.
type SinkStats struct {
	written   atomic.Uint64
	skipped   atomic.Uint64
	failed    atomic.Uint64
	abandoned atomic.Uint64
}

// SinkSnapshot is a point-in-time copy of SinkStats.
type SinkSnapshot struct {
	// Written counts entries written to the stream.
	Written uint64
	// Skipped counts empty or whitespace-only entries.
	Skipped uint64
	// Failed counts entries consumed by a failed write. Each is lost.
	Failed uint64
	// Abandoned counts entries still queued when the sink shut down.
	Abandoned uint64
}

// Snapshot returns the current counters.
func (s *SinkStats) Snapshot() SinkSnapshot {
	return SinkSnapshot{
		Written:   s.written.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
		Abandoned: s.abandoned.Load(),
	}
}
