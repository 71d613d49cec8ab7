// Package embedding turns text into fixed-dimension vectors for the summary
// index. Every implementation reports its dimensionality so the same D is
// used for writes and queries.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when a provider yields a vector of the
// wrong length.
var ErrDimensionMismatch = errors.New("embedding: dimension mismatch")

// Embedder generates an embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

func checkDimension(vec []float32, want int) error {
	if want > 0 && len(vec) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), want)
	}
	return nil
}
