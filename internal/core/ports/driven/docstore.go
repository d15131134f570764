package driven

import (
	"context"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
)

// DocumentStore persists documents and chunks and ranks chunks by vector
// similarity. Backed by PostgreSQL with the pgvector extension.
//
// Each call acquires and releases its own connection; no handle is held
// across pipeline stages. Concurrent readers and writers may proceed
// against the store, though the vector index may lag fresh inserts.
type DocumentStore interface {
	// DocumentExists reports whether a document with the same filename
	// and file size has already been ingested.
	DocumentExists(ctx context.Context, filename string, fileSize int64) (bool, error)

	// CreateDocumentWithChunks stores a document and its chunk batch in a
	// single transaction and assigns doc.ID. Either both the document row
	// and every chunk are committed, or nothing is. Returns
	// domain.ErrAlreadyExists if a concurrent ingestion of the same
	// (filename, file_size) won the race.
	CreateDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// SearchChunks returns chunks ranked by descending similarity to the
	// query embedding, truncated to opts.Limit. Filters and the similarity
	// threshold are applied as predicates inside the ranking query. Ties
	// are broken by ascending chunk ID.
	SearchChunks(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// GetChunks retrieves the stored chunks of a document ordered by
	// chunk index.
	GetChunks(ctx context.Context, documentID int64) ([]domain.Chunk, error)

	// Ping validates store connectivity.
	Ping(ctx context.Context) error
}
