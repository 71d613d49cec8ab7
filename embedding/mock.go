package embedding

import (
	"context"
	"math"
)

// MockEmbedder produces deterministic, normalized embeddings derived from
// the text's characters. Useful for demos and tests without network access.
type MockEmbedder struct {
	dimension int
}

var _ Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a new MockEmbedder
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// Embed generates the mock embedding for text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, e.dimension)

	for i := 0; i < e.dimension; i++ {
		var sum float64
		for j, char := range text {
			sum += float64(char) * float64(i+j+1)
		}
		embedding[i] = float32(math.Sin(sum / 1000.0))
	}

	var norm float64
	for _, v := range embedding {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)

	if norm > 0 {
		for i := range embedding {
			embedding[i] = float32(float64(embedding[i]) / norm)
		}
	}

	return embedding, nil
}

// Dimension returns the embedding dimension
func (e *MockEmbedder) Dimension() int {
	return e.dimension
}
