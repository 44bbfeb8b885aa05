// Package logging provides a file-backed log sink that never makes callers
// wait on disk I/O, plus two producers that feed it.
//
// FileSink is the core: an unbounded FIFO drained by at most one background
// goroutine at a time. Entries are written in enqueue order, one per line.
// Write failures never reach callers; they are kept in LastError and the
// drain backs off before retrying.
//
// Producers
//   - TextLogger formats categorized messages with time, version and caller
//     into single-line text entries.
//   - Service is a structured zerolog logger (InfoWith, ErrorWith, With, ...)
//     whose file channel is a FileSink. Err/AnErr attach the full error
//     chain (outermost -> root) computed by the errchain package.
//   - NewZapCore lets zap write through a FileSink as well.
//
// Typical usage
//
//	sink, err := logging.NewFileSink("logs/app.log")
//	if err != nil { return err }
//	defer sink.Close()
//
//	log := logging.NewTextLogger(sink)
//	log.Info("started")
//
//	svc := logging.NewLogger(wd, logging.DefaultConfig())
//	if err := svc.Initialize(); err != nil { return err }
//	defer svc.Close()
//	svc.InfoWith().Str("user_id", id).Msg("processed")
package logging
