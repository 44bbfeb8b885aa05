package config

import (
	"reflect"
	"strings"
	"sync"

	smerrors "github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func validateValue(v any) error {
	const op smerrors.Op = "config.validateValue"

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if err := validate.Struct(rv.Interface()); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgInvalid)
	}
	return nil
}

// Document is a Serializer holding a value of type T encoded with a Codec.
// Decoding starts from the defaults, so keys missing from the file keep
// their default values. Struct values are validated after every decode
// and on Set.
//
// Defaults are copied by assignment: maps and slices inside them are
// shared with every decoded value.
type Document[T any] struct {
	codec    Codec
	defaults T
	validate func(T) error

	mu    sync.RWMutex
	value T
}

// DocumentOption configures a Document.
type DocumentOption[T any] func(*Document[T])

// WithValidator replaces struct-tag validation with fn. Use it for types
// whose tags need custom validation functions.
func WithValidator[T any](fn func(T) error) DocumentOption[T] {
	return func(d *Document[T]) {
		if fn != nil {
			d.validate = fn
		}
	}
}

// NewDocument returns a Document holding defaults.
func NewDocument[T any](codec Codec, defaults T, opts ...DocumentOption[T]) *Document[T] {
	d := &Document[T]{
		codec:    codec,
		defaults: defaults,
		value:    defaults,
		validate: func(v T) error { return validateValue(v) },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Codec returns the document codec.
func (d *Document[T]) Codec() Codec { return d.codec }

// Value returns a copy of the current value.
func (d *Document[T]) Value() T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.value
}

// Set validates and replaces the current value.
func (d *Document[T]) Set(v T) error {
	if err := d.validate(v); err != nil {
		return err
	}
	d.mu.Lock()
	d.value = v
	d.mu.Unlock()
	return nil
}

// Serialize implements Serializer.
func (d *Document[T]) Serialize() (string, error) {
	const op smerrors.Op = "config.Document.Serialize"
	d.mu.RLock()
	v := d.value
	d.mu.RUnlock()

	b, err := d.codec.Marshal(v)
	if err != nil {
		return emptyString, smerrors.New(op).Err(err).Msg(errMsgSerialize)
	}
	return string(b), nil
}

// Unserialize implements Serializer. Blank content resets to the defaults.
func (d *Document[T]) Unserialize(content string) error {
	const op smerrors.Op = "config.Document.Unserialize"

	v := d.defaults
	if strings.TrimSpace(content) != emptyString {
		if err := d.codec.Unmarshal([]byte(content), &v); err != nil {
			return smerrors.New(op).Err(err).Msg(errMsgUnserialize)
		}
	}
	if err := d.validate(v); err != nil {
		return err
	}

	d.mu.Lock()
	d.value = v
	d.mu.Unlock()
	return nil
}
