package domain

// SearchFilters restricts similarity search to matching documents.
// Empty fields are ignored. Filters are applied as predicates inside the
// ranking query, not by discarding ranked results afterwards.
type SearchFilters struct {
	// DocType matches documents.doc_type exactly.
	DocType string `json:"doc_type,omitempty"`

	// Geographic matches the geographic_focus metadata tag exactly.
	Geographic string `json:"geographic,omitempty"`

	// Topic matches documents whose topics metadata list contains it.
	Topic string `json:"topic,omitempty"`
}

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results to return.
	Limit int

	// Threshold is the minimum similarity score (0-1) for a result.
	Threshold float64

	// Filters optionally restricts the candidate set before ranking.
	Filters SearchFilters
}

// SearchResult is a ranked chunk returned by similarity search.
// Results are transient; they are built fresh per query and discarded
// after the response is assembled.
type SearchResult struct {
	// Content is the chunk text.
	Content string

	// ChunkID and DocumentID identify the owning chunk and document.
	ChunkID    string
	DocumentID int64

	// Filename, Organization and DocType come from the owning document.
	Filename     string
	Organization string
	DocType      string

	// Similarity is 1 minus the cosine distance between the query vector
	// and the chunk embedding. Higher means more similar.
	Similarity float64

	// Metadata is the chunk metadata overlaid with the document metadata.
	Metadata map[string]any
}

// Usage reports token consumption of a generation call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Source identifies where part of an answer came from.
type Source struct {
	Filename        string   `json:"filename"`
	Organization    string   `json:"organization"`
	DocType         string   `json:"doc_type"`
	SimilarityScore float64  `json:"similarity_score"`
	GeographicFocus string   `json:"geographic_focus,omitempty"`
	Topics          []string `json:"topics"`
}

// QueryMetadata describes how a query response was produced.
type QueryMetadata struct {
	Question       string        `json:"question"`
	ResultsCount   int           `json:"results_count"`
	ModelUsage     Usage         `json:"model_usage"`
	FiltersApplied SearchFilters `json:"filters_applied"`
}

// QueryResponse is the packaged result of the query pipeline. Every query
// produces a well-formed response; failures degrade into the Answer field
// rather than escaping as errors.
type QueryResponse struct {
	Answer   string        `json:"answer"`
	Sources  []Source      `json:"sources"`
	Context  string        `json:"context"`
	Metadata QueryMetadata `json:"metadata"`
}

// MetadataString reads a string value from a metadata map. Values decoded
// from the store arrive as any, so a missing or non-string entry yields "".
func MetadataString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// MetadataStrings reads a list of strings from a metadata map. JSON decoding
// produces []any, so both []string and []any values are accepted.
func MetadataStrings(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
