// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/runoshun/opus/internal/domain"
)

// MockSnapshotStore is an in-memory domain.SnapshotStore.
// Fields are ordered to minimize memory padding.
type MockSnapshotStore struct {
	Data   map[string][]byte
	GetErr error
	PutErr error
	Gets   int
	Puts   int
	mu     sync.Mutex
}

// NewMockSnapshotStore creates an empty MockSnapshotStore.
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{Data: make(map[string][]byte)}
}

// Get returns the stored bytes or domain.ErrSnapshotNotFound.
func (m *MockSnapshotStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.Data[key]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return data, nil
}

// Put stores a copy of data.
func (m *MockSnapshotStore) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Data[key] = append([]byte(nil), data...)
	return nil
}

// PutCount returns the number of Put calls.
func (m *MockSnapshotStore) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Puts
}

// MockSyncer is a test double for domain.Syncer.
type MockSyncer struct {
	Err    error
	Synced []domain.TaskID
	mu     sync.Mutex
}

// Sync records the task and returns Err.
func (m *MockSyncer) Sync(_ context.Context, task domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Synced = append(m.Synced, task.ID)
	return m.Err
}

// SequenceIDGenerator returns 1, 2, 3, ...
type SequenceIDGenerator struct {
	next domain.TaskID
	mu   sync.Mutex
}

// NextID returns the next id in the sequence.
func (g *SequenceIDGenerator) NextID() domain.TaskID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}

// MockLogger records log lines as "LEVEL [category] msg".
type MockLogger struct {
	Lines []string
	mu    sync.Mutex
}

func (m *MockLogger) record(level string, taskID domain.TaskID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lines = append(m.Lines, fmt.Sprintf("%s [task-%d] [%s] %s", level, taskID, category, msg))
}

// Info records an info line.
func (m *MockLogger) Info(taskID domain.TaskID, category, msg string) {
	m.record("INFO", taskID, category, msg)
}

// Debug records a debug line.
func (m *MockLogger) Debug(taskID domain.TaskID, category, msg string) {
	m.record("DEBUG", taskID, category, msg)
}

// Warn records a warning line.
func (m *MockLogger) Warn(taskID domain.TaskID, category, msg string) {
	m.record("WARN", taskID, category, msg)
}

// Error records an error line.
func (m *MockLogger) Error(taskID domain.TaskID, category, msg string) {
	m.record("ERROR", taskID, category, msg)
}

// Snapshot returns a copy of the recorded lines.
func (m *MockLogger) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Lines...)
}

var (
	_ domain.SnapshotStore = (*MockSnapshotStore)(nil)
	_ domain.Syncer        = (*MockSyncer)(nil)
	_ domain.IDGenerator   = (*SequenceIDGenerator)(nil)
	_ domain.Logger        = (*MockLogger)(nil)
)
