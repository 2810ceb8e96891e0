//go:build !windows

package storage

import (
	"errors"
	"syscall"
)

// isDiskFullError checks if an error indicates disk full condition.
func isDiskFullError(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
