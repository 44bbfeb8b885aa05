package errchain

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

// MaxDepth bounds every walk over an error chain.
const MaxDepth = 50

const chainSeparator = " -> "

// detailed returns err as a Station-Manager DetailedError when err itself
// (not something it wraps) is one.
func detailed(err error) (*smerrors.DetailedError, bool) {
	d, ok := smerrors.AsDetailedError(err)
	if !ok || d == nil {
		return nil, false
	}
	if error(d) != err {
		return nil, false
	}
	return d, true
}

// Chain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
//
// DetailedError.Cause is preferred, then errors.Unwrap. Traced wrappers are
// transparent. For multi-errors only the first branch is followed.
func Chain(err error) (chain []string, ops []string, root string, rootOp string) {
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < MaxDepth {
		visited++

		if t, ok := err.(*tracedError); ok {
			err = t.err
			continue
		}

		if d, ok := detailed(err); ok {
			chain = append(chain, d.Error())
			ops = append(ops, string(d.Op()))
			err = d.Cause()
			continue
		}

		msg := err.Error()
		// repeated messages mean a cycle or a transparent wrapper
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, "")
		err = unwrapFirst(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	if len(ops) > 0 {
		rootOp = ops[len(ops)-1]
	}
	return
}

// JoinChain returns a single string for the error chain separated by " -> ".
func JoinChain(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return strings.Join(chain, chainSeparator)
}

// Root returns the innermost message of err's chain.
func Root(err error) string {
	_, _, root, _ := Chain(err)
	return root
}

func unwrapFirst(err error) error {
	if next := stderrs.Unwrap(err); next != nil {
		return next
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range multi.Unwrap() {
			if e != nil {
				return e
			}
		}
	}
	return nil
}

// causes returns the direct causes of err, in order.
func causes(err error) []error {
	if d, ok := detailed(err); ok {
		if c := d.Cause(); c != nil {
			return []error{c}
		}
		return nil
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		var out []error
		for _, e := range x.Unwrap() {
			if e != nil {
				out = append(out, e)
			}
		}
		return out
	case interface{ Unwrap() error }:
		if next := x.Unwrap(); next != nil {
			return []error{next}
		}
	}
	return nil
}
