// Package gitstore provides a Git plumbing-based implementation of SnapshotStore.
package gitstore

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/runoshun/opus/internal/domain"
)

// Store implements domain.SnapshotStore using Git plumbing (refs and blobs).
//
// Data structure:
//
//	refs/opus/<session>/
//	  <key>  → blob (encoded snapshot)
//
// Snapshots never touch the worktree or the index, so the session state
// travels with the repository (git push origin 'refs/opus/*') without
// showing up in history.
type Store struct {
	repo    *git.Repository
	session string
	mu      sync.RWMutex
}

// New opens the repository at repoPath (searching parent directories)
// and returns a Store for session.
func New(repoPath, session string) (*Store, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: open git repository: %w", domain.ErrStorageUnavailable, err)
	}
	return NewWithRepo(repo, session), nil
}

// NewWithRepo creates a Store with an existing repository instance.
func NewWithRepo(repo *git.Repository, session string) *Store {
	if session == "" {
		session = domain.DefaultSession
	}
	return &Store{repo: repo, session: session}
}

// refPrefix returns the ref prefix for this session.
func (s *Store) refPrefix() string {
	return "refs/" + domain.AppDirName + "/" + s.session + "/"
}

// keyRef returns the ref name for a key.
func (s *Store) keyRef(key string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + key)
}

// Get returns the bytes stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, err := s.repo.Reference(s.keyRef(key), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("get snapshot ref: %w", err)
	}

	return s.readBlob(ref.Hash())
}

// Put replaces the bytes stored under key.
func (s *Store) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash, err := s.writeBlob(data)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	ref := plumbing.NewHashReference(s.keyRef(key), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("%w: set snapshot ref: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Sessions lists the sessions that have at least one stored key.
func (s *Store) Sessions() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	defer refs.Close()

	prefix := "refs/" + domain.AppDirName + "/"
	seen := make(map[string]bool)
	var sessions []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		session, _, ok := strings.Cut(strings.TrimPrefix(name, prefix), "/")
		if ok && !seen[session] {
			seen[session] = true
			sessions = append(sessions, session)
		}
		return nil
	})
	return sessions, err
}

// writeBlob stores data as a blob object.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}

	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	if err := writer.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("close blob writer: %w", err)
	}

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}

	return hash, nil
}

// readBlob reads the content of a blob.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, "/\\ ") || strings.HasPrefix(key, ".") {
		return fmt.Errorf("invalid snapshot key %q", key)
	}
	return nil
}

// Ensure Store implements SnapshotStore.
var _ domain.SnapshotStore = (*Store)(nil)
