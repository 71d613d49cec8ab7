package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/store"
)

// DetailsStore keeps JSON encoded course details in plain Redis strings.
type DetailsStore struct {
	client redis.UniversalClient
	prefix string
}

var _ store.DetailsStore = (*DetailsStore)(nil)

// NewDetailsStore creates a details store. An empty prefix uses DefaultPrefix.
func NewDetailsStore(client redis.UniversalClient, prefix string) *DetailsStore {
	return &DetailsStore{
		client: client,
		prefix: prefixOrDefault(prefix),
	}
}

func (s *DetailsStore) key(id string) string {
	return fmt.Sprintf("%sdetails:%s", s.prefix, id)
}

// Put stores details under id.
func (s *DetailsStore) Put(ctx context.Context, id string, details course.CourseDetails) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save details to redis: %w", err)
	}
	return nil
}

// Get loads details by id.
func (s *DetailsStore) Get(ctx context.Context, id string) (*course.CourseDetails, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load details from redis: %w", err)
	}

	var details course.CourseDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal details %s: %w", id, err)
	}
	return &details, nil
}

// Delete removes details by id.
func (s *DetailsStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete details: %w", err)
	}
	return nil
}
