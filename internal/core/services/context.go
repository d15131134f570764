package services

import (
	"fmt"
	"strings"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
)

// DefaultContextTokenBudget is the approximate token budget for an
// assembled context.
const DefaultContextTokenBudget = 3000

// charsPerToken is the coarse character-to-token conversion used only for
// budget fitting. Stored token counts use the exact counter instead.
const charsPerToken = 4

// contextDelimiter separates source blocks in the assembled context.
const contextDelimiter = "\n---\n"

// noContextSentinel is returned when there are no results to assemble.
const noContextSentinel = "No relevant information found."

// ContextAssembler packs ranked search results into a token-budgeted
// context string for answer generation.
type ContextAssembler struct {
	maxTokens int
}

// NewContextAssembler creates an assembler with the given approximate
// token budget. A non-positive budget falls back to the default.
func NewContextAssembler(maxTokens int) *ContextAssembler {
	if maxTokens <= 0 {
		maxTokens = DefaultContextTokenBudget
	}
	return &ContextAssembler{maxTokens: maxTokens}
}

// Assemble concatenates result blocks in rank order while the running
// approximate token total stays within budget. Assembly stops entirely at
// the first block that would exceed the budget; blocks are never truncated
// or reordered. Empty input yields a fixed sentinel string.
func (a *ContextAssembler) Assemble(results []domain.SearchResult) string {
	if len(results) == 0 {
		return noContextSentinel
	}

	var parts []string
	total := 0

	for _, result := range results {
		block := fmt.Sprintf("[Source: %s - %s]\n%s\n", result.Filename, result.Organization, result.Content)
		estimated := len(block) / charsPerToken

		if total+estimated > a.maxTokens {
			break
		}
		parts = append(parts, block)
		total += estimated
	}

	return strings.Join(parts, contextDelimiter)
}
