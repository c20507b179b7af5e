package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/crunchclean/internal/core"
)

type memoryEntry struct {
	result    *core.Result
	expiresAt time.Time
}

// Memory is an in-process result store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a Memory store whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores res, replacing any result with the same id.
func (m *Memory) Put(_ context.Context, res *core.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[res.ID] = memoryEntry{result: res, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Get returns a live result.
func (m *Memory) Get(_ context.Context, id string) (*core.Result, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok || !m.now().Before(e.expiresAt) {
		return nil, fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
	}
	return e.result, nil
}

// Delete removes a result. Deleting an unknown id is not an error.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// PurgeExpired drops expired entries and returns how many were removed.
func (m *Memory) PurgeExpired(_ context.Context) (int64, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var purged int64
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close releases nothing; it exists to satisfy core.ResultStore.
func (m *Memory) Close() error { return nil }
