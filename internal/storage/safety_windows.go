//go:build windows

package storage

import (
	"errors"
	"syscall"
)

// errDiskFull is ERROR_DISK_FULL.
const errDiskFull = syscall.Errno(112)

// isDiskFullError checks if an error indicates disk full condition.
func isDiskFullError(err error) bool {
	return errors.Is(err, errDiskFull)
}
