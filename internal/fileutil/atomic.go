// Package fileutil provides whole-file writes that never leave a partial
// file under the final name.
package fileutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chech0x/parsedBible/core/errors"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// tempFileWrite is a function variable for writing to temp files (for testing).
var tempFileWrite = func(f *os.File, data []byte) (int, error) {
	return f.Write(data)
}

// tempFileClose is a function variable for closing temp files (for testing).
var tempFileClose = func(f io.Closer) error {
	return f.Close()
}

// WriteResult reports what WriteIfChanged did.
type WriteResult struct {
	Path      string
	Digest    string
	Unchanged bool // destination already held identical bytes
}

// WriteAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.NewIO("create temp file", dir, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFileWrite(tempFile, data); err != nil {
		tempFileClose(tempFile)
		os.Remove(tempPath)
		return errors.NewIO("write", tempPath, err)
	}
	if err := tempFileClose(tempFile); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("chmod", tempPath, err)
	}

	// Rename to final path (atomic on POSIX)
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("rename", path, err)
	}
	return nil
}

// WriteIfChanged writes data atomically unless path already holds the same
// bytes. The digest is computed either way.
func WriteIfChanged(path string, data []byte, perm os.FileMode) (*WriteResult, error) {
	res := &WriteResult{Path: path, Digest: Digest(data)}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(existing, data) {
			res.Unchanged = true
			return res, nil
		}
	case !os.IsNotExist(err):
		return nil, errors.NewIO("read", path, err)
	}

	if err := WriteAtomic(path, data, perm); err != nil {
		return nil, err
	}
	return res, nil
}

// EnsureDir creates dir and its parents.
// Failures are reported as SetupError.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewSetup(dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errors.NewSetup(dir, err)
	}
	if !info.IsDir() {
		return errors.NewSetup(dir, fmt.Errorf("not a directory"))
	}
	return nil
}
