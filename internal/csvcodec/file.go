package csvcodec

import (
	"os"
	"path/filepath"

	"github.com/agentstation/dedupe/pkg/constants"
	"github.com/agentstation/dedupe/pkg/errors"
)

// Open opens the input file at path.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapIO("open", path, errors.NewNotFoundError("file", path))
		}
		return nil, errors.WrapIO("open", path, err)
	}
	return f, nil
}

// AtomicFile is an output file that only appears at its final path when
// committed. Until then rows go to a temporary file in the same directory.
type AtomicFile struct {
	*os.File
	path string
	done bool
}

// Create starts an atomic write of path.
func Create(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.WrapIO("create", path, err)
	}
	if err := tmp.Chmod(constants.SecureFilePermissions); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, errors.WrapIO("create", path, err)
	}
	return &AtomicFile{File: tmp, path: path}, nil
}

// Path returns the final path.
func (f *AtomicFile) Path() string {
	return f.path
}

// Commit closes the temporary file and moves it to the final path.
func (f *AtomicFile) Commit() error {
	if f.done {
		return nil
	}
	f.done = true
	tmp := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapIO("close", f.path, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapIO("rename", f.path, err)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (f *AtomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	_ = f.Close()
	_ = os.Remove(f.Name())
}
