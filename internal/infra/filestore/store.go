// Package filestore provides a file-based implementation of SnapshotStore.
package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/runoshun/opus/internal/domain"
)

// Store implements domain.SnapshotStore with one file per key under a
// session directory. Writes are atomic (temp file + rename) and guarded
// by an flock so two processes sharing a session never interleave.
type Store struct {
	dir      string
	lockPath string
}

// New creates a Store rooted at dir.
// The directory does not need to exist; it is created on first write.
func New(dir string) *Store {
	return &Store{
		dir:      dir,
		lockPath: filepath.Join(dir, ".lock"),
	}
}

// Dir returns the session directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the bytes stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}

	var content []byte
	err = s.withLock(syscall.LOCK_SH, func() error {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			if errors.Is(readErr, os.ErrNotExist) {
				return domain.ErrSnapshotNotFound
			}
			return fmt.Errorf("read snapshot: %w", readErr)
		}
		content = data
		return nil
	})
	return content, err
}

// Put replaces the bytes stored under key.
func (s *Store) Put(key string, data []byte) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	return s.withLock(syscall.LOCK_EX, func() error {
		// Write to temp file first, then rename for atomicity
		tmpPath := path + ".tmp"
		if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
			return fmt.Errorf("%w: write temp file: %w", domain.ErrStorageUnavailable, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			_ = os.Remove(tmpPath) // Clean up
			return fmt.Errorf("%w: rename temp file: %w", domain.ErrStorageUnavailable, err)
		}
		return nil
	})
}

func (s *Store) keyPath(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid snapshot key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *Store) withLock(lockType int, fn func() error) error {
	lock, err := s.acquireLock(lockType)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)
	return fn()
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create session directory: %w", domain.ErrStorageUnavailable, err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: open lock file: %w", domain.ErrStorageUnavailable, err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

// Ensure Store implements SnapshotStore.
var _ domain.SnapshotStore = (*Store)(nil)
