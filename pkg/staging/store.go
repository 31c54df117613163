// Package staging holds uploaded datasets between the upload request and the analysis
// requests that refer to them by id.
package staging

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/healthlab/pkg/dataset"
)

var ErrNotFound = errors.New("staged dataset not found")

type Entry struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Dataset  *dataset.Dataset `json:"dataset"`
	StagedAt time.Time        `json:"staged_at"`
}

type Store interface {
	Put(ctx context.Context, name string, d *dataset.Dataset) (Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// MemoryStore keeps entries in process memory, expiring them lazily after ttl.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]Entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]Entry)}
}

func (s *MemoryStore) Put(_ context.Context, name string, d *dataset.Dataset) (Entry, error) {
	entry := Entry{ID: uuid.New().String(), Name: name, Dataset: d, StagedAt: s.now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || s.expired(entry) {
		delete(s.entries, id)
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.entries), nil
}

func (s *MemoryStore) expired(e Entry) bool {
	return s.ttl > 0 && s.now().Sub(e.StagedAt) >= s.ttl
}

func (s *MemoryStore) sweepLocked() {
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}
