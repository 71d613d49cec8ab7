package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
)

// LangChainEmbedder adapts langchaingo's embeddings.Embedder to our Embedder interface
type LangChainEmbedder struct {
	embedder  embeddings.Embedder
	dimension int
}

var _ Embedder = (*LangChainEmbedder)(nil)

// NewLangChainEmbedder wraps a langchaingo embedder. langchaingo does not
// expose the model dimension, so the caller supplies it.
func NewLangChainEmbedder(embedder embeddings.Embedder, dimension int) *LangChainEmbedder {
	return &LangChainEmbedder{
		embedder:  embedder,
		dimension: dimension,
	}
}

// Embed embeds text as a query.
func (l *LangChainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := l.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("langchain embedding failed: %w", err)
	}
	if err := checkDimension(vec, l.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}

// Dimension returns the configured dimension.
func (l *LangChainEmbedder) Dimension() int {
	return l.dimension
}
