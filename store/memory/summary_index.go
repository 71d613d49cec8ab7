package memory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/smallnest/coursectx/store"
)

// SummaryIndex is an in-memory store.SummaryIndex.
type SummaryIndex struct {
	mu        sync.RWMutex
	order     []string
	records   map[string]store.SummaryRecord
	dimension int
}

var _ store.SummaryIndex = (*SummaryIndex)(nil)

// NewSummaryIndex creates an empty index.
func NewSummaryIndex() *SummaryIndex {
	return &SummaryIndex{records: make(map[string]store.SummaryRecord)}
}

// EnsureIndex records the expected vector dimension.
func (s *SummaryIndex) EnsureIndex(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("dimension must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("index already has dimension %d, got %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

// Upsert adds or replaces a record.
func (s *SummaryIndex) Upsert(ctx context.Context, record store.SummaryRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && len(record.Vector) != s.dimension {
		return fmt.Errorf("vector has dimension %d, index expects %d", len(record.Vector), s.dimension)
	}
	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	record.Vector = slices.Clone(record.Vector)
	s.records[record.ID] = record
	return nil
}

// Search performs a filtered cosine similarity scan.
func (s *SummaryIndex) Search(ctx context.Context, vector []float32, k int, filter store.Filter) ([]store.ScoredSummary, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	s.mu.RLock()
	results := make([]store.ScoredSummary, 0, len(s.records))
	for _, id := range s.order {
		record := s.records[id]
		if !filter.Matches(record.Summary) {
			continue
		}
		results = append(results, store.ScoredSummary{
			ID:      id,
			Summary: record.Summary,
			Score:   cosineSimilarity32(vector, record.Vector),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Delete removes a record by id.
func (s *SummaryIndex) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return nil
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// Len returns the number of records.
func (s *SummaryIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Has reports whether a record with id exists.
func (s *SummaryIndex) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

// cosineSimilarity32 calculates cosine similarity between two float32 vectors
func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
