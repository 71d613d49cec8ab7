package memory

import (
	"context"
	"sync"

	"github.com/smallnest/coursectx/store"
)

// CodeIndex is an in-memory store.CodeIndex.
type CodeIndex struct {
	mu  sync.RWMutex
	ids map[string]string
}

var _ store.CodeIndex = (*CodeIndex)(nil)

// NewCodeIndex creates an empty code index.
func NewCodeIndex() *CodeIndex {
	return &CodeIndex{ids: make(map[string]string)}
}

func (c *CodeIndex) Set(ctx context.Context, courseCode, id string) error {
	c.mu.Lock()
	c.ids[courseCode] = id
	c.mu.Unlock()
	return nil
}

func (c *CodeIndex) Lookup(ctx context.Context, courseCode string) (string, bool, error) {
	c.mu.RLock()
	id, ok := c.ids[courseCode]
	c.mu.RUnlock()
	return id, ok, nil
}

func (c *CodeIndex) Remove(ctx context.Context, courseCode string) error {
	c.mu.Lock()
	delete(c.ids, courseCode)
	c.mu.Unlock()
	return nil
}

// Len returns the number of mapped codes.
func (c *CodeIndex) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}
