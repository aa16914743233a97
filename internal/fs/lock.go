package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrLockHeld is returned when the daemon lock is already held by another
// process.
var ErrLockHeld = errors.New("lock already held")

const (
	lockPerms = 0o644
	dirPerms  = 0o755
)

// Lock holds an exclusive flock(2) on a lock file. It is used to keep two
// daemon instances from reconciling the same vault concurrently.
//
// flock is advisory and applies to an inode, not a pathname. All
// cooperating processes must take the lock for it to have effect. The lock
// file must not be unlinked while locks may be held.
//
// This implementation is Unix-only.
type Lock struct {
	path string
	file File
}

// TakeLock acquires an exclusive, non-blocking lock on path, creating the
// file (and parent directories) if needed. Returns [ErrLockHeld] if another
// process holds the lock.
func TakeLock(fsys FS, path string) (*Lock, error) {
	err := fsys.MkdirAll(filepath.Dir(path), dirPerms)
	if err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	file, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE, lockPerms)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = file.Close()

		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, path)
		}

		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &Lock{path: path, file: file}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Close releases the lock and closes the underlying file descriptor.
//
// Close is idempotent - calling it multiple times is safe and subsequent
// calls return nil.
func (l *Lock) Close() error {
	if l.file == nil {
		return nil
	}

	file := l.file
	l.file = nil

	// Closing the descriptor releases the flock.
	err := file.Close()
	if err != nil {
		return fmt.Errorf("close lock file: %w", err)
	}

	return nil
}
