package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
)

// buildSearchQuery renders the similarity search SQL. Filters and the
// similarity threshold are pushed into the query as predicates so ranking
// and limiting happen over the filtered candidate set, never by trimming
// an unfiltered result afterwards. Ties on similarity break by chunk ID
// to keep result order deterministic.
func buildSearchQuery(opts domain.SearchOptions) (string, []any) {
	args := []any{nil, opts.Limit} // args[0] is the query vector, bound by the caller

	var predicates []string
	next := 3

	if opts.Filters.DocType != "" {
		predicates = append(predicates, fmt.Sprintf("d.doc_type = $%d", next))
		args = append(args, opts.Filters.DocType)
		next++
	}
	if opts.Filters.Geographic != "" {
		predicates = append(predicates, fmt.Sprintf("d.metadata->>'geographic_focus' = $%d", next))
		args = append(args, opts.Filters.Geographic)
		next++
	}
	if opts.Filters.Topic != "" {
		predicates = append(predicates, fmt.Sprintf("d.metadata->'topics' ? $%d", next))
		args = append(args, opts.Filters.Topic)
		next++
	}
	if opts.Threshold > 0 {
		predicates = append(predicates, fmt.Sprintf("1 - (c.embedding <=> $1) >= $%d", next))
		args = append(args, opts.Threshold)
	}

	where := ""
	if len(predicates) > 0 {
		where = "WHERE " + strings.Join(predicates, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			c.content,
			c.id AS chunk_id,
			c.doc_id,
			c.metadata AS chunk_metadata,
			d.filename,
			COALESCE(d.organization, ''),
			COALESCE(d.doc_type, ''),
			d.metadata AS doc_metadata,
			1 - (c.embedding <=> $1) AS similarity
		FROM chunks c
		JOIN documents d ON c.doc_id = d.id
		%s
		ORDER BY similarity DESC, c.id ASC
		LIMIT $2`, where)

	return query, args
}

// SearchChunks returns chunks ranked by descending cosine similarity to
// the query embedding.
func (s *Store) SearchChunks(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query, args := buildSearchQuery(opts)
	args[0] = pgvector.NewVector(embedding)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var result domain.SearchResult
		var chunkMeta, docMeta map[string]any
		if err := rows.Scan(
			&result.Content, &result.ChunkID, &result.DocumentID, &chunkMeta,
			&result.Filename, &result.Organization, &result.DocType, &docMeta,
			&result.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}

		// Document metadata overlays chunk metadata on key collisions.
		merged := make(map[string]any, len(chunkMeta)+len(docMeta))
		for k, v := range chunkMeta {
			merged[k] = v
		}
		for k, v := range docMeta {
			merged[k] = v
		}
		result.Metadata = merged

		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return results, nil
}
