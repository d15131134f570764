// Package tiktoken provides exact token counting using the tokenizer the
// OpenAI embedding and chat models share.
package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/oceanum-labs/oceanrag/internal/core/ports/driven"
)

// Ensure both counters implement the interface.
var (
	_ driven.TokenCounter = (*Counter)(nil)
	_ driven.TokenCounter = HeuristicCounter{}
)

// EncodingName is the tokenizer used by text-embedding-3-* and gpt-4o
// model families.
const EncodingName = "cl100k_base"

// Counter counts tokens with the cl100k_base encoding.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter loads the cl100k_base encoding. The first call may fetch
// tokenizer data unless an offline loader or cache is configured.
func NewCounter() (*Counter, error) {
	encoding, err := tiktoken.GetEncoding(EncodingName)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", EncodingName, err)
	}
	return &Counter{encoding: encoding}, nil
}

// Count returns the exact number of tokens in text.
func (c *Counter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// HeuristicCounter approximates tokens as one per four characters. It is
// the fallback when tokenizer data cannot be loaded; stored token counts
// become estimates but ingestion still works.
type HeuristicCounter struct{}

// Count approximates the token count of text.
func (HeuristicCounter) Count(text string) int {
	return len(text) / 4
}
