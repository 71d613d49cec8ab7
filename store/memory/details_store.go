package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/store"
)

// DetailsStore is an in-memory store.DetailsStore. Payloads are kept
// serialized so callers never share memory with stored records.
type DetailsStore struct {
	mu       sync.RWMutex
	payloads map[string][]byte
}

var _ store.DetailsStore = (*DetailsStore)(nil)

// NewDetailsStore creates an empty details store.
func NewDetailsStore() *DetailsStore {
	return &DetailsStore{payloads: make(map[string][]byte)}
}

// Put stores details under id.
func (s *DetailsStore) Put(ctx context.Context, id string, details course.CourseDetails) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}
	s.mu.Lock()
	s.payloads[id] = data
	s.mu.Unlock()
	return nil
}

// Get loads details by id.
func (s *DetailsStore) Get(ctx context.Context, id string) (*course.CourseDetails, error) {
	s.mu.RLock()
	data, ok := s.payloads[id]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}

	var details course.CourseDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal details %s: %w", id, err)
	}
	return &details, nil
}

// Delete removes details by id.
func (s *DetailsStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.payloads, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored payloads.
func (s *DetailsStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payloads)
}
