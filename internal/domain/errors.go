package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrParentNotFound     = errors.New("parent task not found")
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrInvalidState       = errors.New("invalid task state")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrStorageUnavailable = errors.New("session storage unavailable")
	ErrSnapshotCorrupted  = errors.New("snapshot corrupted")
	ErrSyncFailed         = errors.New("task sync failed")
	ErrConfigExists       = errors.New("config file already exists")
	ErrUnknownBackend     = errors.New("unknown persistence backend")
	ErrUnknownFormat      = errors.New("unknown snapshot format")
	ErrUnknownCompression = errors.New("unknown snapshot compression")
	ErrInvalidImport      = errors.New("invalid import file")
)
