package logging

import (
	"fmt"
	"reflect"
)

const (
	// maxDumpDepth bounds recursion into nested values.
	maxDumpDepth = 10
	// maxDumpElements bounds how many slice or array elements are listed.
	maxDumpElements = 10
)

// Dump logs the contents of v at Debug level, one event per line: exported
// struct fields, map entries, and the first elements of slices and arrays.
// Pointer cycles are reported instead of followed.
func (s *Service) Dump(v interface{}) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	for _, line := range dumpLines(v) {
		s.DebugWith().Msg(line)
	}
}

// dumpLines renders v as the lines Dump emits.
func dumpLines(v interface{}) []string {
	d := &dumper{visited: make(map[uintptr]bool)}
	if v == nil {
		d.printf("Dump: <nil>")
		return d.lines
	}
	d.value(reflect.ValueOf(v), "", 0)
	return d.lines
}

type dumper struct {
	lines   []string
	visited map[uintptr]bool
}

func (d *dumper) printf(format string, args ...interface{}) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

func (d *dumper) value(val reflect.Value, prefix string, depth int) {
	if depth > maxDumpDepth {
		d.printf("%s: <max depth reached>", prefix)
		return
	}

	for val.Kind() == reflect.Interface || val.Kind() == reflect.Ptr {
		if val.IsNil() {
			d.printf("%s: <nil>", prefix)
			return
		}
		if val.Kind() == reflect.Ptr {
			ptr := val.Pointer()
			if d.visited[ptr] {
				d.printf("%s: <circular reference>", prefix)
				return
			}
			d.visited[ptr] = true
		}
		val = val.Elem()
	}
	if !val.IsValid() {
		d.printf("%s: <nil>", prefix)
		return
	}

	typ := val.Type()
	switch val.Kind() {
	case reflect.Struct:
		if prefix == emptyString {
			d.printf("Struct: %s", typ.Name())
		} else {
			d.printf("%s: %s {", prefix, typ.Name())
		}
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			d.value(val.Field(i), join(prefix, field.Name), depth+1)
		}
		if prefix != emptyString {
			d.printf("%s: }", prefix)
		}

	case reflect.Map:
		d.printf("%s: map[%s]%s (len: %d) {", prefix, typ.Key(), typ.Elem(), val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%s[%v]", prefix, iter.Key().Interface())
			d.value(iter.Value(), key, depth+1)
		}
		d.printf("%s: }", prefix)

	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			d.printf("%s: <nil>", prefix)
			return
		}
		d.printf("%s: %s (len: %d, cap: %d) {", prefix, typ, val.Len(), val.Cap())
		for i := 0; i < val.Len() && i < maxDumpElements; i++ {
			d.value(val.Index(i), fmt.Sprintf("%s[%d]", prefix, i), depth+1)
		}
		if val.Len() > maxDumpElements {
			d.printf("%s: ... (%d more elements)", prefix, val.Len()-maxDumpElements)
		}
		d.printf("%s: }", prefix)

	default:
		if val.CanInterface() {
			d.printf("%s: %v", prefix, val.Interface())
		} else {
			d.printf("%s: %v", prefix, val)
		}
	}
}

func join(prefix, name string) string {
	if prefix == emptyString {
		return name
	}
	return prefix + "." + name
}
