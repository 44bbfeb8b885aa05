package errchain

import (
	"runtime"
	"strings"
)

const maxTraceFrames = 32

type tracedError struct {
	err error
	pcs []uintptr
}

func (e *tracedError) Error() string { return e.err.Error() }

func (e *tracedError) Unwrap() error { return e.err }

// frameNames returns the captured frames as short "pkg.Func" names,
// innermost first.
func (e *tracedError) frameNames() []string {
	if len(e.pcs) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.pcs))
	frames := runtime.CallersFrames(e.pcs)
	for {
		f, more := frames.Next()
		if f.Function != "" {
			names = append(names, shortFuncName(f.Function))
		}
		if !more {
			break
		}
	}
	return names
}

// Trace wraps err with the call stack of its caller. Describe prints the
// captured frames under the wrapped error; Chain and errors.Is/As see
// through the wrapper. Trace(nil) returns nil.
func Trace(err error) error {
	if err == nil {
		return nil
	}
	pcs := make([]uintptr, maxTraceFrames)
	// skip runtime.Callers and Trace itself
	n := runtime.Callers(2, pcs)
	return &tracedError{err: err, pcs: pcs[:n]}
}

// shortFuncName trims the import path from a fully-qualified function name:
// "github.com/x/y/pkg.(*T).Method" becomes "pkg.(*T).Method".
func shortFuncName(fn string) string {
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}
