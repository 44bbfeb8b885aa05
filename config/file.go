package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	smerrors "github.com/Station-Manager/errors"
	"go.uber.org/atomic"
)

// Serializer converts configuration data to and from text.
type Serializer interface {
	// Serialize returns the text form of the configuration.
	Serialize() (string, error)
	// Unserialize replaces the configuration with the one described by content.
	Unserialize(content string) error
}

// File is a configuration file on disk bound to a Serializer.
// It is safe for concurrent use; Load and Save are serialized.
type File struct {
	path     string
	target   Serializer
	mu       sync.Mutex
	isLoaded atomic.Bool
}

// NewFile binds path to target. Nothing is read until Load is called.
func NewFile(path string, target Serializer) *File {
	return &File{path: path, target: target}
}

// Path returns the configuration file path.
func (f *File) Path() string {
	if f == nil {
		return emptyString
	}
	return f.path
}

// IsLoaded reports whether a Load has completed successfully.
func (f *File) IsLoaded() bool {
	return f != nil && f.isLoaded.Load()
}

// Load reads the whole file and passes it to the Serializer. A missing file
// is created empty, so a first run loads the Serializer's defaults.
func (f *File) Load(ctx context.Context) error {
	const op smerrors.Op = "config.File.Load"
	if err := f.check(op); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgOpen)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), dirPerm); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgOpen)
	}
	file, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, filePerm)
	if err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgOpen)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgRead)
	}
	if err = f.target.Unserialize(string(content)); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgUnserialize)
	}

	f.isLoaded.Store(true)
	return nil
}

// Save serializes the configuration and replaces the file contents. The new
// content is written to a temporary file in the same directory and renamed
// over the target, so readers never observe a partial file.
func (f *File) Save(ctx context.Context) error {
	const op smerrors.Op = "config.File.Save"
	if err := f.check(op); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgWrite)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	content, err := f.target.Serialize()
	if err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgSerialize)
	}

	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, dirPerm); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgWrite)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgWrite)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err = io.WriteString(tmp, content); err != nil {
		_ = tmp.Close()
		cleanup()
		return smerrors.New(op).Err(err).Msg(errMsgWrite)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return smerrors.New(op).Err(err).Msg(errMsgWrite)
	}
	if err = tmp.Close(); err != nil {
		cleanup()
		return smerrors.New(op).Err(err).Msg(errMsgWrite)
	}
	if err = os.Chmod(tmpName, f.mode()); err != nil {
		cleanup()
		return smerrors.New(op).Err(err).Msg(errMsgWrite)
	}
	if err = os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return smerrors.New(op).Err(err).Msg(errMsgWrite)
	}
	return nil
}

// mode returns the permissions of the existing file, or filePerm when
// there is none yet.
func (f *File) mode() os.FileMode {
	if info, err := os.Stat(f.path); err == nil {
		return info.Mode().Perm()
	}
	return filePerm
}

func (f *File) check(op smerrors.Op) error {
	if f == nil {
		return smerrors.New(op).Msg(errMsgNilFile)
	}
	if f.path == emptyString {
		return smerrors.New(op).Msg(errMsgEmptyPath)
	}
	if f.target == nil {
		return smerrors.New(op).Msg(errMsgNilSerializer)
	}
	return nil
}
