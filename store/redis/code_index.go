package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/coursectx/store"
)

// CodeIndex stores the course_code -> id mapping in a single Redis hash, so
// a lookup is one HGET regardless of catalog size.
type CodeIndex struct {
	client redis.UniversalClient
	key    string
}

var _ store.CodeIndex = (*CodeIndex)(nil)

// NewCodeIndex creates a code index. An empty prefix uses DefaultPrefix.
func NewCodeIndex(client redis.UniversalClient, prefix string) *CodeIndex {
	return &CodeIndex{
		client: client,
		key:    prefixOrDefault(prefix) + "code_index",
	}
}

func (c *CodeIndex) Set(ctx context.Context, courseCode, id string) error {
	if err := c.client.HSet(ctx, c.key, courseCode, id).Err(); err != nil {
		return fmt.Errorf("failed to index course code %s: %w", courseCode, err)
	}
	return nil
}

func (c *CodeIndex) Lookup(ctx context.Context, courseCode string) (string, bool, error) {
	id, err := c.client.HGet(ctx, c.key, courseCode).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up course code %s: %w", courseCode, err)
	}
	return id, true, nil
}

func (c *CodeIndex) Remove(ctx context.Context, courseCode string) error {
	if err := c.client.HDel(ctx, c.key, courseCode).Err(); err != nil {
		return fmt.Errorf("failed to remove course code %s: %w", courseCode, err)
	}
	return nil
}

// All returns the full mapping.
func (c *CodeIndex) All(ctx context.Context) (map[string]string, error) {
	m, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list course codes: %w", err)
	}
	return m, nil
}
