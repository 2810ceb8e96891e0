package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manav03panchal/indexlog/internal/errors"
)

// WriteFileAtomic writes data to path through a temporary file in the same
// directory and renames it into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".indexlog-*.tmp")
	if err != nil {
		return writeError("create temp file", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return writeError("write", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return writeError("sync", err)
	}
	if err := tmpFile.Close(); err != nil {
		return writeError("close", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return writeError("chmod", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return writeError("rename", err)
	}

	success = true
	return nil
}

// EnsureDirectory creates a directory with safe permissions if it doesn't exist.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0700); err != nil {
		return writeError("mkdir", err)
	}
	return nil
}

func writeError(op string, err error) error {
	if isDiskFullError(err) {
		return errors.NewSystemErrorWithOp(op, "disk full", errors.ErrDiskFull)
	}
	return errors.NewSystemErrorWithOp(op, fmt.Sprintf("failed to %s", op), err)
}
