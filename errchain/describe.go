package errchain

import (
	"bufio"
	"io"
	"reflect"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

const indentChar = '\t'

// Describe renders err and its causes as an indented tree. A nil error
// yields an empty string.
func Describe(err error) string {
	var sb strings.Builder
	_ = Fprint(&sb, err)
	return sb.String()
}

// Fprint writes the description of err to w.
func Fprint(w io.Writer, err error) error {
	const op smerrors.Op = "errchain.Fprint"
	if err == nil {
		return nil
	}
	bw := bufio.NewWriter(w)
	describe(bw, err, 0)
	if ferr := bw.Flush(); ferr != nil {
		return smerrors.New(op).Err(ferr).Msg("writing error description")
	}
	return nil
}

func describe(w *bufio.Writer, err error, depth int) {
	if depth >= MaxDepth {
		writeLine(w, depth, "...")
		return
	}

	var frames []string
	// traced wrappers contribute frames but not a line of their own
	for {
		t, ok := err.(*tracedError)
		if !ok {
			break
		}
		frames = append(frames, t.frameNames()...)
		err = t.err
	}
	if d, ok := detailed(err); ok && d.Op() != "" {
		frames = append(frames, string(d.Op()))
	}

	writeLine(w, depth, typeName(err)+":"+ownMessage(err))
	for _, cause := range causes(err) {
		describe(w, cause, depth+1)
	}
	for _, f := range frames {
		writeLine(w, depth, f)
	}
}

func writeLine(w *bufio.Writer, depth int, text string) {
	for i := 0; i < depth; i++ {
		_ = w.WriteByte(indentChar)
	}
	_, _ = w.WriteString(text)
	_ = w.WriteByte('\n')
}

// ownMessage returns the error's message on a single line.
func ownMessage(err error) string {
	msg := err.Error()
	if strings.ContainsAny(msg, "\r\n") {
		msg = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(msg)
	}
	return msg
}

// typeName mirrors the short type name of an exception: the named type with
// any pointer indirection removed.
func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
