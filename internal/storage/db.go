// Package storage provides the export archive for indexlog.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/indexlog/internal/errors"
)

const (
	// AppName is the application name used for data directories.
	AppName = "indexlog"

	// EnvDatabase overrides the archive location.
	EnvDatabase = "INDEXLOG_DATABASE"

	// MemoryPath selects an in-memory archive.
	MemoryPath = ":memory:"
)

// DB wraps a Badger database connection.
type DB struct {
	db   *badger.DB
	path string
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// DefaultPath returns the default database path following XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// ResolveOptions picks the archive location: INDEXLOG_DATABASE when set,
// otherwise the XDG default. ":memory:" selects an in-memory archive.
func ResolveOptions() Options {
	path := strings.TrimSpace(os.Getenv(EnvDatabase))
	if path == "" {
		path = DefaultPath()
	}
	if path == MemoryPath {
		return Options{InMemory: true}
	}
	return Options{Path: path}
}

// Open opens or creates a database at the given path.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options
	path := ""

	if opts.InMemory || opts.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		path = opts.Path
		if err := EnsureDirectory(path); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(path)
	}

	// Reduce logging noise
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		if isLockError(err) {
			return nil, errors.NewSystemErrorWithOp("open archive", "archive is in use at "+path, errors.ErrDatabaseLocked)
		}
		return nil, errors.NewSystemErrorWithOp("open archive", "failed to open export archive", err)
	}

	return &DB{db: db, path: path}, nil
}

// isLockError reports whether badger refused to open because another
// process holds the directory lock.
func isLockError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot acquire directory lock") ||
		strings.Contains(msg, "resource temporarily unavailable")
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database directory, or "" for an in-memory archive.
func (d *DB) Path() string {
	return d.path
}

// InMemory reports whether the archive lives only in memory.
func (d *DB) InMemory() bool {
	return d.path == ""
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}
