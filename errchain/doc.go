// Package errchain renders and walks error chains.
//
// Describe prints an error and everything it wraps as an indented tree, one
// node per line, followed by the frames recorded for that node:
//
//	DetailedError:startup failed
//		DetailedError:failed to connect to database
//		db.Open
//	server.Start
//
// Frames come from two places: the operation of a Station-Manager
// DetailedError, and the call stack captured by Trace.
//
// Chain flattens the same structure into parallel message/operation slices,
// which is what the logging package attaches to error events.
package errchain
