// Package oplock serializes organize operations per source directory and
// provides atomic file writes for exports.
//
// Two processes organizing the same directory at once would race over
// the same source files, so each operation takes an advisory lock keyed
// by the root path before touching anything. Different roots use
// different lock files and do not contend.
package oplock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock wraps a flock advisory lock on a file.
type Lock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock backed by the file at path. The file is created on
// first acquisition.
func New(path string) *Lock {
	return &Lock{
		flock: flock.New(path),
		path:  path,
	}
}

// ForRoot returns the lock guarding operations on the given source
// directory. Lock files live in the system temp directory, named by a
// digest of the cleaned absolute path, so every process organizing the
// same root contends on the same file.
func ForRoot(root string) (*Lock, error) {
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, fmt.Errorf("resolve root path %s: %w", root, err)
	}
	sum := sha256.Sum256([]byte(abs))
	name := fmt.Sprintf("tidydir-%s.lock", hex.EncodeToString(sum[:8]))
	return New(filepath.Join(os.TempDir(), name)), nil
}

// Path returns the lock file's location.
func (l *Lock) Path() string {
	return l.path
}

// Lock acquires the lock, blocking until it is available.
func (l *Lock) Lock() error {
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking. It returns
// true if the lock was acquired and false if another process holds it.
func (l *Lock) TryLock() (bool, error) {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// AtomicWrite writes data to a file using a temp file and rename, so
// readers never observe a partial write. The temp file is created in
// the target's directory to keep the rename on one filesystem.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}

// LockAndWrite takes the file's lock, writes atomically, then releases.
// The lock file sits next to the target with a ".lock" suffix.
func LockAndWrite(path string, data []byte) error {
	lock := New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	return AtomicWrite(path, data)
}
