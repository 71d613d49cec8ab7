package assembler

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// TokenEstimator approximates how many tokens a text occupies.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// HeuristicEstimator assumes one token per four bytes of text.
type HeuristicEstimator struct{}

// EstimateTokens returns len(text)/4.
func (HeuristicEstimator) EstimateTokens(text string) int {
	return len(text) / 4
}

// TiktokenEstimator counts tokens with a BPE encoding.
type TiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEstimator loads the named encoding. The encoding file may be
// downloaded on first use.
func NewTiktokenEstimator(encoding string) (*TiktokenEstimator, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}
	return &TiktokenEstimator{encoding: enc}, nil
}

// EstimateTokens returns the exact token count under the encoding.
func (t *TiktokenEstimator) EstimateTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}
