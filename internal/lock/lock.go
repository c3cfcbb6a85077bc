// Package lock serializes mutating operations on a case tree.
//
// The lock is an advisory file lock at <root>/.tcsync.lock. Acquisition
// never blocks: a second pull or edit against the same root fails with
// ErrLocked instead of interleaving deletions with the first.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName is the lock file created in the root directory.
const FileName = ".tcsync.lock"

// ErrLocked is returned when another process holds the root lock.
var ErrLocked = errors.New("case tree is locked by another operation")

// Lock is a held root lock.
type Lock struct {
	flock *flock.Flock
}

// Path returns the lock file path for root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Acquire takes the exclusive lock for root, creating root if needed.
func Acquire(root string) (*Lock, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", root, err)
	}

	fl := flock.New(Path(root))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", fl.Path(), err)
	}
	if !locked {
		_ = fl.Close()
		return nil, fmt.Errorf("%w: %s", ErrLocked, fl.Path())
	}
	return &Lock{flock: fl}, nil
}

// Release releases the lock. Safe to call multiple times.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}

// With runs fn while holding the lock for root.
func With(root string, fn func() error) error {
	l, err := Acquire(root)
	if err != nil {
		return err
	}
	defer func() { _ = l.Release() }()

	return fn()
}
